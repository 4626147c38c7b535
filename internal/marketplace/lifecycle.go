package marketplace

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/identity"
	"github.com/nullityv3/home-hero-sub002/internal/metrics"
	"github.com/nullityv3/home-hero-sub002/internal/port"
)

// Lifecycle owns the ServiceRequest state machine:
//
//	pending -> assigned -> active -> completed
//	pending | assigned | active -> cancelled
//
// An assigned request may also be completed directly by its hero.
type Lifecycle struct {
	store       port.Store
	ids         *identity.Mapper
	acceptances *AcceptanceLedger
	wallets     port.WalletGate
	validate    *domain.Validator
	opts        options
}

func NewLifecycle(store port.Store, ids *identity.Mapper, acceptances *AcceptanceLedger, wallets port.WalletGate, opts ...Option) *Lifecycle {
	o := buildOptions(opts)
	return &Lifecycle{
		store:       store,
		ids:         ids,
		acceptances: acceptances,
		wallets:     wallets,
		validate:    domain.NewValidator(o.now),
		opts:        o,
	}
}

// Create validates the input and stores a new pending request. Creating the
// same input twice yields two requests.
func (l *Lifecycle) Create(ctx context.Context, requesterID string, in domain.NewRequest) (*domain.ServiceRequest, error) {
	if requesterID == "" {
		return nil, domain.Forbidden("caller identity required")
	}
	if err := l.validate.NewRequest(&in); err != nil {
		return nil, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = domain.PaymentInApp
	}
	now := l.opts.now().UTC()
	r := &domain.ServiceRequest{
		ID:            uuid.New(),
		RequesterID:   requesterID,
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Location:      in.Location,
		ScheduledDate: in.ScheduledDate.UTC(),
		DurationHours: domain.ClampDuration(in.DurationHours),
		Budget:        in.Budget,
		PaymentMethod: method,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := l.store.Requests().Create(ctx, r); err != nil {
		return nil, err
	}
	metrics.RequestsCreated.Inc()
	log.Printf("[marketplace] request %s created by %s", r.ID, requesterID)
	return r, nil
}

// Get returns a request to its requester, its assigned hero, or, while it is
// still open, to any registered hero.
func (l *Lifecycle) Get(ctx context.Context, id uuid.UUID, caller string) (*domain.ServiceRequest, error) {
	r, err := l.store.Requests().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.RequesterID == caller || r.IsAssignedTo(caller) {
		return r, nil
	}
	if r.Status == domain.StatusPending && r.AssignedHeroID == nil {
		if _, err := l.ids.PublicToInternal(ctx, caller); err == nil {
			return r, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, domain.Forbidden("you may not view this request")
}

// MyRequests splits the caller's requests by role.
type MyRequests struct {
	Requested []domain.ServiceRequest `json:"requested"`
	Assigned  []domain.ServiceRequest `json:"assigned"`
}

func (l *Lifecycle) ListMine(ctx context.Context, caller string) (*MyRequests, error) {
	requested, err := l.store.Requests().ListByRequester(ctx, caller)
	if err != nil {
		return nil, err
	}
	assigned, err := l.store.Requests().ListByAssignedHero(ctx, caller)
	if err != nil {
		return nil, err
	}
	return &MyRequests{Requested: requested, Assigned: assigned}, nil
}

// ListAvailable lists open requests: pending and with no hero assigned.
func (l *Lifecycle) ListAvailable(ctx context.Context, limit, offset int) ([]domain.ServiceRequest, error) {
	list, err := l.store.Requests().ListAvailable(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := list[:0]
	for _, r := range list {
		if r.Status == domain.StatusPending && r.AssignedHeroID == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListAll is the admin view over every request, optionally by status.
func (l *Lifecycle) ListAll(ctx context.Context, status string, limit, offset int) ([]domain.ServiceRequest, error) {
	var st domain.RequestStatus
	if status != "" {
		var err error
		if st, err = domain.ParseRequestStatus(status); err != nil {
			return nil, err
		}
	}
	return l.store.Requests().ListAll(ctx, st, limit, offset)
}

// Update applies a requester's edit while the request is still pending.
func (l *Lifecycle) Update(ctx context.Context, id uuid.UUID, caller string, upd domain.RequestUpdate) (*domain.ServiceRequest, error) {
	if upd.Empty() {
		return nil, domain.Invalid("", "nothing to update")
	}
	if err := l.validate.Struct(&upd); err != nil {
		return nil, err
	}
	r, err := l.store.Requests().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.RequesterID != caller {
		return nil, domain.Forbidden("only the requester may edit the request")
	}
	if r.Status != domain.StatusPending {
		return nil, domain.Conflict("only pending requests can be edited")
	}
	upd.Apply(r)
	if err := l.validate.Request(r); err != nil {
		return nil, err
	}
	r.UpdatedAt = l.opts.now().UTC()
	if err := l.store.Requests().UpdateDetails(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ChooseProvider assigns the request to a hero who expressed interest. It
// runs as two ordered writes: the hero's acceptance is marked chosen, then
// the request is assigned. When the second write fails the first is undone;
// if undoing fails too a *domain.RollbackFailureError is returned and the
// pair needs manual reconciliation.
func (l *Lifecycle) ChooseProvider(ctx context.Context, requestID uuid.UUID, heroID, caller string) (*domain.ServiceRequest, error) {
	r, err := l.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.RequesterID != caller {
		return nil, domain.Forbidden("only the requester may choose a provider")
	}
	if r.Status != domain.StatusPending {
		metrics.ProviderChoices.WithLabelValues("conflict").Inc()
		return nil, domain.Conflict("request no longer available")
	}
	rec, err := l.ids.PublicToInternal(ctx, heroID)
	if err != nil {
		return nil, err
	}

	acc, err := l.acceptances.MarkChosen(ctx, requestID, rec)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.ProviderChoices.WithLabelValues("conflict").Inc()
		}
		return nil, err
	}

	now := l.opts.now().UTC()
	if err := l.store.Requests().Assign(ctx, requestID, heroID, now); err != nil {
		if rbErr := l.acceptances.resetChosen(ctx, acc.ID); rbErr != nil {
			rf := &domain.RollbackFailureError{
				RequestID:    requestID,
				AcceptanceID: acc.ID,
				Primary:      err,
				Rollback:     rbErr,
			}
			metrics.RollbackFailures.Inc()
			log.Printf("[reconcile][FATAL] request=%s acceptance=%s: %v", requestID, acc.ID, rf)
			return nil, rf
		}
		metrics.ProviderChoices.WithLabelValues("compensated").Inc()
		log.Printf("[marketplace] request %s: assign failed, acceptance %s reset: %v", requestID, acc.ID, err)
		return nil, err
	}
	metrics.ProviderChoices.WithLabelValues("assigned").Inc()
	metrics.RequestTransitions.WithLabelValues(string(domain.StatusAssigned)).Inc()
	log.Printf("[marketplace] request %s assigned to %s", requestID, heroID)

	assigned := heroID
	l.opts.statusChanged(ctx, domain.StatusEvent{
		RequestID:      requestID,
		RequesterID:    r.RequesterID,
		AssignedHeroID: &assigned,
		From:           domain.StatusPending,
		To:             domain.StatusAssigned,
		ChangedBy:      caller,
		At:             now,
	})
	return l.store.Requests().GetByID(ctx, requestID)
}

// Transition moves a request along the state machine. Completion settles the
// job into the hero's wallet in the same store transaction as the status write.
func (l *Lifecycle) Transition(ctx context.Context, id uuid.UUID, status string, caller string) (*domain.ServiceRequest, error) {
	to, err := domain.ParseRequestStatus(status)
	if err != nil {
		return nil, err
	}
	r, err := l.store.Requests().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if err := checkTransition(r, to, caller); err != nil {
		return nil, err
	}

	now := l.opts.now().UTC()
	err = l.store.WithinTx(ctx, func(ctx context.Context) error {
		if err := l.store.Requests().UpdateStatus(ctx, id, from, to, now); err != nil {
			return err
		}
		if to != domain.StatusCompleted {
			return nil
		}
		if err := l.wallets.SettleJob(ctx, jobSettlement(r, l.opts.policy.Settle(r))); err != nil {
			return err
		}
		return l.store.Heroes().IncrementJobsCompleted(ctx, *r.AssignedHeroID)
	})
	if err != nil {
		return nil, err
	}
	metrics.RequestTransitions.WithLabelValues(string(to)).Inc()
	log.Printf("[marketplace] request %s %s -> %s by %s", id, from, to, caller)

	l.opts.statusChanged(ctx, domain.StatusEvent{
		RequestID:      id,
		RequesterID:    r.RequesterID,
		AssignedHeroID: r.AssignedHeroID,
		From:           from,
		To:             to,
		ChangedBy:      caller,
		At:             now,
	})
	return l.store.Requests().GetByID(ctx, id)
}

// checkTransition applies the state machine and its role guards to a
// requested move of r to to.
func checkTransition(r *domain.ServiceRequest, to domain.RequestStatus, caller string) error {
	from := r.Status
	if from.Terminal() {
		return domain.Conflict("request is already " + string(from))
	}
	switch to {
	case domain.StatusCancelled:
		if r.RequesterID != caller {
			return domain.Forbidden("only the requester may cancel the request")
		}
		return nil
	case domain.StatusAssigned:
		if from == domain.StatusPending {
			return domain.Invalid("status", "a request is assigned by choosing a provider")
		}
	case domain.StatusActive:
		if from == domain.StatusAssigned {
			if !r.IsAssignedTo(caller) {
				return domain.Forbidden("only the assigned hero may start the job")
			}
			return nil
		}
	case domain.StatusCompleted:
		if from == domain.StatusAssigned || from == domain.StatusActive {
			if !r.IsAssignedTo(caller) {
				return domain.Forbidden("only the assigned hero may complete the job")
			}
			return nil
		}
	}
	return domain.Invalid("status", "cannot move from "+string(from)+" to "+string(to))
}
