package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

type requestRepo struct{ s *Store }

func (r requestRepo) Create(ctx context.Context, req *domain.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[req.ID]; ok {
		return domain.Conflict("request already exists")
	}
	if req.Status.HasAssignee() != (req.AssignedHeroID != nil) {
		return domain.Conflict("assigned hero does not match status")
	}
	put(ctx, r.s, r.s.requests, req.ID, row[domain.ServiceRequest]{v: *req})
	return nil
}

func (r requestRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.requests[id]
	if !ok {
		return nil, domain.NotFound("request", id.String())
	}
	v := got.v
	return &v, nil
}

func bySchedule(a, b domain.ServiceRequest) int { return a.ScheduledDate.Compare(b.ScheduledDate) }

func newestFirst(a, b domain.ServiceRequest) int { return b.CreatedAt.Compare(a.CreatedAt) }

func (r requestRepo) ListAvailable(_ context.Context, limit, offset int) ([]domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sorted(r.s.requests, func(v domain.ServiceRequest) bool {
		return v.Status == domain.StatusPending && v.AssignedHeroID == nil
	}, bySchedule)
	return page(out, limit, offset), nil
}

func (r requestRepo) ListByRequester(_ context.Context, requesterID string) ([]domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sorted(r.s.requests, func(v domain.ServiceRequest) bool {
		return v.RequesterID == requesterID
	}, newestFirst), nil
}

func (r requestRepo) ListByAssignedHero(_ context.Context, heroID string) ([]domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sorted(r.s.requests, func(v domain.ServiceRequest) bool {
		return v.IsAssignedTo(heroID)
	}, newestFirst), nil
}

func (r requestRepo) ListAll(_ context.Context, status domain.RequestStatus, limit, offset int) ([]domain.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sorted(r.s.requests, func(v domain.ServiceRequest) bool {
		return status == "" || v.Status == status
	}, newestFirst)
	return page(out, limit, offset), nil
}

func (r requestRepo) Assign(ctx context.Context, id uuid.UUID, heroID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.requests[id]
	if !ok {
		return domain.NotFound("request", id.String())
	}
	if got.v.Status != domain.StatusPending || got.v.AssignedHeroID != nil {
		return domain.Conflict("request no longer available")
	}
	hero := heroID
	got.v.AssignedHeroID = &hero
	got.v.Status = domain.StatusAssigned
	got.v.UpdatedAt = at
	put(ctx, r.s, r.s.requests, id, got)
	return nil
}

func (r requestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.requests[id]
	if !ok {
		return domain.NotFound("request", id.String())
	}
	if got.v.Status != from {
		return domain.Conflict("request status changed concurrently")
	}
	if to == domain.StatusCancelled {
		got.v.AssignedHeroID = nil
	}
	if to.HasAssignee() && got.v.AssignedHeroID == nil {
		return domain.Conflict("request has no assigned hero")
	}
	got.v.Status = to
	got.v.UpdatedAt = at
	put(ctx, r.s, r.s.requests, id, got)
	return nil
}

func (r requestRepo) UpdateDetails(ctx context.Context, req *domain.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.requests[req.ID]
	if !ok {
		return domain.NotFound("request", req.ID.String())
	}
	if got.v.Status != domain.StatusPending {
		return domain.Conflict("request can only be edited while pending")
	}
	v := got.v
	v.Title = req.Title
	v.Description = req.Description
	v.Location = req.Location
	v.ScheduledDate = req.ScheduledDate
	v.DurationHours = req.DurationHours
	v.Budget = req.Budget
	v.UpdatedAt = req.UpdatedAt
	got.v = v
	put(ctx, r.s, r.s.requests, req.ID, got)
	return nil
}

func (r requestRepo) CountByStatus(_ context.Context) (map[domain.RequestStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[domain.RequestStatus]int)
	for _, v := range r.s.requests {
		out[v.v.Status]++
	}
	return out, nil
}

type acceptanceRepo struct{ s *Store }

func (a acceptanceRepo) Create(ctx context.Context, acc *domain.Acceptance) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.requests[acc.RequestID]; !ok {
		return domain.NotFound("request", acc.RequestID.String())
	}
	if _, ok := a.s.heroes[acc.HeroRecordID]; !ok {
		return domain.NotFound("hero", "")
	}
	for _, r := range a.s.acceptances {
		if r.v.RequestID == acc.RequestID && r.v.HeroRecordID == acc.HeroRecordID {
			return domain.Conflict("hero already accepted this request")
		}
	}
	put(ctx, a.s, a.s.acceptances, acc.ID, row[domain.Acceptance]{v: *acc})
	return nil
}

func (a acceptanceRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]domain.Acceptance, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return sorted(a.s.acceptances, func(v domain.Acceptance) bool {
		return v.RequestID == requestID
	}, func(x, y domain.Acceptance) int { return x.AcceptedAt.Compare(y.AcceptedAt) }), nil
}

func (a acceptanceRepo) MarkChosen(ctx context.Context, requestID uuid.UUID, hero domain.HeroRecordID) (*domain.Acceptance, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	req, ok := a.s.requests[requestID]
	if !ok {
		return nil, domain.NotFound("request", requestID.String())
	}
	var target *row[domain.Acceptance]
	for _, r := range a.s.acceptances {
		if r.v.RequestID != requestID {
			continue
		}
		if r.v.Chosen {
			return nil, domain.Conflict("a provider was already chosen for this request")
		}
		if r.v.HeroRecordID == hero {
			r := r
			target = &r
		}
	}
	if target == nil {
		return nil, domain.NotFound("acceptance", "")
	}
	if req.v.Status != domain.StatusPending {
		return nil, domain.Conflict("request no longer available")
	}
	target.v.Chosen = true
	put(ctx, a.s, a.s.acceptances, target.v.ID, *target)
	v := target.v
	return &v, nil
}

func (a acceptanceRepo) UnmarkChosen(ctx context.Context, acceptanceID uuid.UUID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	r, ok := a.s.acceptances[acceptanceID]
	if !ok {
		return domain.NotFound("acceptance", acceptanceID.String())
	}
	r.v.Chosen = false
	put(ctx, a.s, a.s.acceptances, acceptanceID, r)
	return nil
}

func (a acceptanceRepo) Delete(ctx context.Context, requestID uuid.UUID, hero domain.HeroRecordID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for id, r := range a.s.acceptances {
		if r.v.RequestID == requestID && r.v.HeroRecordID == hero {
			if r.v.Chosen {
				return domain.Conflict("chosen acceptance cannot be withdrawn")
			}
			remove(ctx, a.s.acceptances, id)
			return nil
		}
	}
	return domain.NotFound("acceptance", "")
}

func (a acceptanceRepo) Count(_ context.Context) (int, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return len(a.s.acceptances), nil
}
