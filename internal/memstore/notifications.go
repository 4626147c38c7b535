package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notifications[n.ID]; ok {
		return domain.Conflict("notification already exists")
	}
	put(ctx, r.s, r.s.notifications, n.ID, row[domain.Notification]{v: *n})
	return nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sorted(r.s.notifications, func(v domain.Notification) bool {
		return v.UserID == userID
	}, func(a, b domain.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(out, limit, 0), nil
}

func (r notificationRepo) MarkRead(ctx context.Context, id uuid.UUID, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.notifications[id]
	if !ok || got.v.UserID != userID {
		return domain.NotFound("notification", id.String())
	}
	t := at
	got.v.ReadAt = &t
	put(ctx, r.s, r.s.notifications, id, got)
	return nil
}
