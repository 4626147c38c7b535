package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HeroRecordID is the primary key of a hero row. It is only ever used for
// backend joins and must not leave the backend.
type HeroRecordID uuid.UUID

func (id HeroRecordID) String() string { return uuid.UUID(id).String() }

func NewHeroRecordID() HeroRecordID { return HeroRecordID(uuid.New()) }

// Hero is the internal provider record.
type Hero struct {
	RecordID      HeroRecordID
	UserID        string
	DisplayName   string
	Bio           string
	AvatarURL     string
	Skills        []string
	Rating        decimal.Decimal
	JobsCompleted int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile projects the hero onto its public-safe shape.
func (h *Hero) Profile() HeroProfile {
	return HeroProfile{
		HeroID:        h.UserID,
		DisplayName:   h.DisplayName,
		Bio:           h.Bio,
		AvatarURL:     h.AvatarURL,
		Skills:        slices.Clone(h.Skills),
		Rating:        h.Rating,
		JobsCompleted: h.JobsCompleted,
	}
}

// HeroProfile is what other parties may see of a hero.
type HeroProfile struct {
	HeroID        string          `json:"hero_id"`
	DisplayName   string          `json:"display_name"`
	Bio           string          `json:"bio,omitempty"`
	AvatarURL     string          `json:"avatar_url,omitempty"`
	Skills        []string        `json:"skills"`
	Rating        decimal.Decimal `json:"rating"`
	JobsCompleted int             `json:"jobs_completed"`
}

type HeroProfileInput struct {
	DisplayName string   `json:"display_name" validate:"required,max=80"`
	Bio         string   `json:"bio" validate:"max=1000"`
	AvatarURL   string   `json:"avatar_url" validate:"omitempty,url,max=512"`
	Skills      []string `json:"skills" validate:"max=20,dive,oneof=cleaning repairs delivery tutoring other"`
}

// HeroProfileUpdate lists the fields a hero may edit on their own record.
type HeroProfileUpdate struct {
	DisplayName *string   `json:"display_name,omitempty" validate:"omitempty,min=1,max=80"`
	Bio         *string   `json:"bio,omitempty" validate:"omitempty,max=1000"`
	AvatarURL   *string   `json:"avatar_url,omitempty" validate:"omitempty,url,max=512"`
	Skills      *[]string `json:"skills,omitempty" validate:"omitempty,max=20,dive,oneof=cleaning repairs delivery tutoring other"`
}

func (u HeroProfileUpdate) Apply(h *Hero) {
	if u.DisplayName != nil {
		h.DisplayName = *u.DisplayName
	}
	if u.Bio != nil {
		h.Bio = *u.Bio
	}
	if u.AvatarURL != nil {
		h.AvatarURL = *u.AvatarURL
	}
	if u.Skills != nil {
		h.Skills = slices.Clone(*u.Skills)
	}
}
