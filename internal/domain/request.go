package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus values are wire-stable.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAssigned  RequestStatus = "assigned"
	StatusActive    RequestStatus = "active"
	StatusCompleted RequestStatus = "completed"
	StatusCancelled RequestStatus = "cancelled"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(s); st {
	case StatusPending, StatusAssigned, StatusActive, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", Invalid("status", "unknown status "+s)
}

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HasAssignee reports whether a request in this status must carry an assigned hero.
func (s RequestStatus) HasAssignee() bool {
	return s == StatusAssigned || s == StatusActive || s == StatusCompleted
}

type Category string

const (
	CategoryCleaning Category = "cleaning"
	CategoryRepairs  Category = "repairs"
	CategoryDelivery Category = "delivery"
	CategoryTutoring Category = "tutoring"
	CategoryOther    Category = "other"
)

var Categories = []Category{CategoryCleaning, CategoryRepairs, CategoryDelivery, CategoryTutoring, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// PaymentMethod decides how a completed job settles into the hero's wallet.
type PaymentMethod string

const (
	PaymentInApp PaymentMethod = "in_app"
	PaymentCash  PaymentMethod = "cash"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentInApp || p == PaymentCash
}

const (
	MinDurationHours = 1
	MaxDurationHours = 24

	MaxTitleLen       = 100
	MaxDescriptionLen = 2000
	MaxLocationLen    = 255
)

type Budget struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Midpoint is the default settlement amount for a job.
func (b Budget) Midpoint() decimal.Decimal {
	return b.Min.Add(b.Max).Div(decimal.NewFromInt(2))
}

// ServiceRequest is a requester's ask for help. AssignedHeroID always holds a
// public identity, never a hero record id.
type ServiceRequest struct {
	ID             uuid.UUID     `json:"id"`
	RequesterID    string        `json:"requester_id"`
	AssignedHeroID *string       `json:"assigned_hero_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Category       Category      `json:"category"`
	Location       string        `json:"location"`
	ScheduledDate  time.Time     `json:"scheduled_date"`
	DurationHours  int           `json:"duration_hours"`
	Budget         Budget        `json:"budget"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	Status         RequestStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IsAssignedTo reports whether heroID is the request's assigned hero.
func (r *ServiceRequest) IsAssignedTo(heroID string) bool {
	return r.AssignedHeroID != nil && *r.AssignedHeroID == heroID
}

// NewRequest carries the requester-supplied fields of a request.
type NewRequest struct {
	Title         string        `json:"title" validate:"required,max=100"`
	Description   string        `json:"description" validate:"max=2000"`
	Category      Category      `json:"category" validate:"required"`
	Location      string        `json:"location" validate:"required,max=255"`
	ScheduledDate time.Time     `json:"scheduled_date" validate:"required"`
	DurationHours int           `json:"duration_hours"`
	Budget        Budget        `json:"budget"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// RequestUpdate lists every field a requester may change while the request is
// still pending. Nil means unchanged.
type RequestUpdate struct {
	Title         *string          `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location      *string          `json:"location,omitempty" validate:"omitempty,min=1,max=255"`
	ScheduledDate *time.Time       `json:"scheduled_date,omitempty"`
	DurationHours *int             `json:"duration_hours,omitempty"`
	BudgetMin     *decimal.Decimal `json:"budget_min,omitempty"`
	BudgetMax     *decimal.Decimal `json:"budget_max,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u RequestUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Location == nil &&
		u.ScheduledDate == nil && u.DurationHours == nil && u.BudgetMin == nil && u.BudgetMax == nil
}

// Apply copies the set fields onto r.
func (u RequestUpdate) Apply(r *ServiceRequest) {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Location != nil {
		r.Location = *u.Location
	}
	if u.ScheduledDate != nil {
		r.ScheduledDate = *u.ScheduledDate
	}
	if u.DurationHours != nil {
		r.DurationHours = ClampDuration(*u.DurationHours)
	}
	if u.BudgetMin != nil {
		r.Budget.Min = *u.BudgetMin
	}
	if u.BudgetMax != nil {
		r.Budget.Max = *u.BudgetMax
	}
}

func ClampDuration(h int) int {
	if h < MinDurationHours {
		return MinDurationHours
	}
	if h > MaxDurationHours {
		return MaxDurationHours
	}
	return h
}

// StatusEvent is published after a request changed status.
type StatusEvent struct {
	RequestID      uuid.UUID     `json:"request_id"`
	RequesterID    string        `json:"requester_id"`
	AssignedHeroID *string       `json:"assigned_hero_id,omitempty"`
	From           RequestStatus `json:"from"`
	To             RequestStatus `json:"to"`
	ChangedBy      string        `json:"changed_by"`
	At             time.Time     `json:"at"`
}

// AcceptanceEvent is published after a hero expressed interest. It carries the
// hero's public identity only.
type AcceptanceEvent struct {
	RequestID   uuid.UUID `json:"request_id"`
	RequesterID string    `json:"requester_id"`
	HeroID      string    `json:"hero_id"`
	At          time.Time `json:"at"`
}
