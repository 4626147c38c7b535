package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

const heroColumns = `id, user_id, display_name, bio, avatar_url, skills, rating, jobs_completed, created_at, updated_at`

type heroRepo struct{ s *Store }

func scanHero(row pgx.Row) (*domain.Hero, error) {
	var h domain.Hero
	var id uuid.UUID
	err := row.Scan(&id, &h.UserID, &h.DisplayName, &h.Bio, &h.AvatarURL, &h.Skills, &h.Rating,
		&h.JobsCompleted, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	h.RecordID = domain.HeroRecordID(id)
	return &h, nil
}

func (r heroRepo) Create(ctx context.Context, h *domain.Hero) error {
	skills := h.Skills
	if skills == nil {
		skills = []string{}
	}
	_, err := r.s.q(ctx).Exec(ctx, `
        INSERT INTO heroes (`+heroColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		uuid.UUID(h.RecordID), h.UserID, h.DisplayName, h.Bio, h.AvatarURL, skills, h.Rating,
		h.JobsCompleted, h.CreatedAt, h.UpdatedAt)
	return mapErr(err, "create hero")
}

func (r heroRepo) GetByUserID(ctx context.Context, userID string) (*domain.Hero, error) {
	h, err := scanHero(r.s.q(ctx).QueryRow(ctx, `SELECT `+heroColumns+` FROM heroes WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("hero", userID)
	}
	if err != nil {
		return nil, mapErr(err, "get hero")
	}
	return h, nil
}

func (r heroRepo) GetByRecordID(ctx context.Context, id domain.HeroRecordID) (*domain.Hero, error) {
	h, err := scanHero(r.s.q(ctx).QueryRow(ctx, `SELECT `+heroColumns+` FROM heroes WHERE id = $1`, uuid.UUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("hero", "")
	}
	if err != nil {
		return nil, mapErr(err, "get hero")
	}
	return h, nil
}

func (r heroRepo) Update(ctx context.Context, h *domain.Hero) error {
	tag, err := r.s.q(ctx).Exec(ctx, `
        UPDATE heroes SET display_name = $2, bio = $3, avatar_url = $4, skills = $5, updated_at = $6
        WHERE id = $1`,
		uuid.UUID(h.RecordID), h.DisplayName, h.Bio, h.AvatarURL, h.Skills, h.UpdatedAt)
	if err != nil {
		return mapErr(err, "update hero")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("hero", h.UserID)
	}
	return nil
}

func (r heroRepo) IncrementJobsCompleted(ctx context.Context, userID string) error {
	tag, err := r.s.q(ctx).Exec(ctx, `UPDATE heroes SET jobs_completed = jobs_completed + 1 WHERE user_id = $1`, userID)
	if err != nil {
		return mapErr(err, "increment jobs")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("hero", userID)
	}
	return nil
}
