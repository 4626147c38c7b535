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

// AcceptanceLedger records heroes' interest in pending requests. Acceptances
// reference heroes by record id; every value returned to callers carries the
// public identity instead.
type AcceptanceLedger struct {
	store   port.Store
	ids     *identity.Mapper
	wallets port.WalletGate
	opts    options
}

func NewAcceptanceLedger(store port.Store, ids *identity.Mapper, wallets port.WalletGate, opts ...Option) *AcceptanceLedger {
	return &AcceptanceLedger{store: store, ids: ids, wallets: wallets, opts: buildOptions(opts)}
}

// ExpressInterest records that heroID wants to do the request. The (request,
// hero) pair is unique in the store, so a concurrent duplicate fails with a
// conflict instead of inserting twice.
func (a *AcceptanceLedger) ExpressInterest(ctx context.Context, requestID uuid.UUID, heroID string) (*domain.AcceptanceView, error) {
	rec, err := a.ids.PublicToInternal(ctx, heroID)
	if err != nil {
		return nil, err
	}
	r, err := a.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.RequesterID == heroID {
		return nil, domain.Forbidden("you cannot accept your own request")
	}
	if r.Status != domain.StatusPending || r.AssignedHeroID != nil {
		return nil, domain.Conflict("request no longer available")
	}
	if err := a.wallets.EnsureCanAcceptJobs(ctx, heroID); err != nil {
		return nil, err
	}

	acc := &domain.Acceptance{
		ID:           uuid.New(),
		RequestID:    requestID,
		HeroRecordID: rec,
		AcceptedAt:   a.opts.now().UTC(),
	}
	if err := a.store.Acceptances().Create(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.AcceptanceConflicts.Inc()
		}
		return nil, err
	}
	metrics.AcceptancesCreated.Inc()
	log.Printf("[marketplace] hero %s accepted request %s", heroID, requestID)

	a.opts.acceptanceCreated(ctx, domain.AcceptanceEvent{
		RequestID:   requestID,
		RequesterID: r.RequesterID,
		HeroID:      heroID,
		At:          acc.AcceptedAt,
	})
	profile, err := a.ids.Profile(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &domain.AcceptanceView{
		ID:         acc.ID,
		RequestID:  requestID,
		Hero:       profile,
		AcceptedAt: acc.AcceptedAt,
	}, nil
}

// ListAcceptances returns the request's acceptances in the order they came in,
// each joined to the hero's public profile. Only the requester may look.
func (a *AcceptanceLedger) ListAcceptances(ctx context.Context, requestID uuid.UUID, caller string) ([]domain.AcceptanceView, error) {
	r, err := a.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.RequesterID != caller {
		return nil, domain.Forbidden("only the requester may view acceptances")
	}
	rows, err := a.store.Acceptances().ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AcceptanceView, 0, len(rows))
	for _, row := range rows {
		profile, err := a.ids.Profile(ctx, row.HeroRecordID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.AcceptanceView{
			ID:         row.ID,
			RequestID:  row.RequestID,
			Hero:       profile,
			AcceptedAt: row.AcceptedAt,
			Chosen:     row.Chosen,
		})
	}
	return out, nil
}

// MarkChosen flips chosen on the hero's acceptance. The store refuses when
// another acceptance of the request is already chosen or the request left
// pending. Only the lifecycle's provider choice calls it.
func (a *AcceptanceLedger) MarkChosen(ctx context.Context, requestID uuid.UUID, hero domain.HeroRecordID) (*domain.Acceptance, error) {
	return a.store.Acceptances().MarkChosen(ctx, requestID, hero)
}

func (a *AcceptanceLedger) resetChosen(ctx context.Context, acceptanceID uuid.UUID) error {
	return a.store.Acceptances().UnmarkChosen(ctx, acceptanceID)
}

// WithdrawInterest removes the hero's acceptance while the request is still
// pending. A chosen acceptance stays.
func (a *AcceptanceLedger) WithdrawInterest(ctx context.Context, requestID uuid.UUID, heroID string) error {
	rec, err := a.ids.PublicToInternal(ctx, heroID)
	if err != nil {
		return err
	}
	r, err := a.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if r.Status != domain.StatusPending {
		return domain.Conflict("request no longer available")
	}
	if err := a.store.Acceptances().Delete(ctx, requestID, rec); err != nil {
		return err
	}
	log.Printf("[marketplace] hero %s withdrew from request %s", heroID, requestID)
	return nil
}
