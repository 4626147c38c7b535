package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	var metadata any
	if len(n.Metadata) > 0 {
		metadata = []byte(n.Metadata)
	}
	_, err := r.s.q(ctx).Exec(ctx, `
        INSERT INTO notifications (id, user_id, type, title, body, reference, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.Reference, metadata, n.CreatedAt)
	return mapErr(err, "create notification")
}

func (r notificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	rows, err := r.s.q(ctx).Query(ctx, `
        SELECT id, user_id, type, title, COALESCE(body, ''), reference, metadata, created_at, read_at
        FROM notifications WHERE user_id = $1
        ORDER BY created_at DESC LIMIT $2`, userID, limitOrAll(limit))
	if err != nil {
		return nil, mapErr(err, "list notifications")
	}
	defer rows.Close()
	out := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		var metadata []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Reference, &metadata, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		n.Metadata = metadata
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r notificationRepo) MarkRead(ctx context.Context, id uuid.UUID, userID string, at time.Time) error {
	tag, err := r.s.q(ctx).Exec(ctx, `
        UPDATE notifications SET read_at = COALESCE(read_at, $3)
        WHERE id = $1 AND user_id = $2`, id, userID, at)
	if err != nil {
		return mapErr(err, "mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("notification", id.String())
	}
	return nil
}
