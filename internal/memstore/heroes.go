package memstore

import (
	"context"
	"slices"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

type heroRepo struct{ s *Store }

func cloneHero(h domain.Hero) domain.Hero {
	h.Skills = slices.Clone(h.Skills)
	return h
}

func (r heroRepo) Create(ctx context.Context, h *domain.Hero) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, got := range r.s.heroes {
		if got.v.UserID == h.UserID {
			return domain.Conflict("hero record already exists")
		}
	}
	put(ctx, r.s, r.s.heroes, h.RecordID, row[domain.Hero]{v: cloneHero(*h)})
	return nil
}

func (r heroRepo) GetByUserID(_ context.Context, userID string) (*domain.Hero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, got := range r.s.heroes {
		if got.v.UserID == userID {
			h := cloneHero(got.v)
			return &h, nil
		}
	}
	return nil, domain.NotFound("hero", userID)
}

func (r heroRepo) GetByRecordID(_ context.Context, id domain.HeroRecordID) (*domain.Hero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.heroes[id]
	if !ok {
		return nil, domain.NotFound("hero", "")
	}
	h := cloneHero(got.v)
	return &h, nil
}

func (r heroRepo) Update(ctx context.Context, h *domain.Hero) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.heroes[h.RecordID]
	if !ok {
		return domain.NotFound("hero", h.UserID)
	}
	got.v.DisplayName = h.DisplayName
	got.v.Bio = h.Bio
	got.v.AvatarURL = h.AvatarURL
	got.v.Skills = slices.Clone(h.Skills)
	got.v.UpdatedAt = h.UpdatedAt
	put(ctx, r.s, r.s.heroes, h.RecordID, got)
	return nil
}

func (r heroRepo) IncrementJobsCompleted(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, got := range r.s.heroes {
		if got.v.UserID == userID {
			got.v.JobsCompleted++
			put(ctx, r.s, r.s.heroes, id, got)
			return nil
		}
	}
	return domain.NotFound("hero", userID)
}
