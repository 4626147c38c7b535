package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

const requestColumns = `id, requester_id, assigned_hero_id, title, description, category, location,
    scheduled_date, duration_hours, budget_min, budget_max, payment_method, status, created_at, updated_at`

type requestRepo struct{ s *Store }

func scanRequest(row pgx.Row) (*domain.ServiceRequest, error) {
	var r domain.ServiceRequest
	err := row.Scan(&r.ID, &r.RequesterID, &r.AssignedHeroID, &r.Title, &r.Description, &r.Category, &r.Location,
		&r.ScheduledDate, &r.DurationHours, &r.Budget.Min, &r.Budget.Max, &r.PaymentMethod, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func collectRequests(rows pgx.Rows) ([]domain.ServiceRequest, error) {
	defer rows.Close()
	out := []domain.ServiceRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (r requestRepo) Create(ctx context.Context, req *domain.ServiceRequest) error {
	_, err := r.s.q(ctx).Exec(ctx, `
        INSERT INTO service_requests (`+requestColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		req.ID, req.RequesterID, req.AssignedHeroID, req.Title, req.Description, req.Category, req.Location,
		req.ScheduledDate, req.DurationHours, req.Budget.Min, req.Budget.Max, req.PaymentMethod, req.Status, req.CreatedAt, req.UpdatedAt)
	return mapErr(err, "create request")
}

func (r requestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	req, err := scanRequest(r.s.q(ctx).QueryRow(ctx, `SELECT `+requestColumns+` FROM service_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("request", id.String())
	}
	if err != nil {
		return nil, mapErr(err, "get request")
	}
	return req, nil
}

func (r requestRepo) ListAvailable(ctx context.Context, limit, offset int) ([]domain.ServiceRequest, error) {
	rows, err := r.s.q(ctx).Query(ctx, `
        SELECT `+requestColumns+` FROM service_requests
        WHERE status = 'pending' AND assigned_hero_id IS NULL
        ORDER BY scheduled_date ASC
        LIMIT $1 OFFSET $2`, limitOrAll(limit), offset)
	if err != nil {
		return nil, mapErr(err, "list available requests")
	}
	return collectRequests(rows)
}

func (r requestRepo) ListByRequester(ctx context.Context, requesterID string) ([]domain.ServiceRequest, error) {
	rows, err := r.s.q(ctx).Query(ctx, `
        SELECT `+requestColumns+` FROM service_requests
        WHERE requester_id = $1 ORDER BY created_at DESC`, requesterID)
	if err != nil {
		return nil, mapErr(err, "list requests by requester")
	}
	return collectRequests(rows)
}

func (r requestRepo) ListByAssignedHero(ctx context.Context, heroID string) ([]domain.ServiceRequest, error) {
	rows, err := r.s.q(ctx).Query(ctx, `
        SELECT `+requestColumns+` FROM service_requests
        WHERE assigned_hero_id = $1 ORDER BY created_at DESC`, heroID)
	if err != nil {
		return nil, mapErr(err, "list requests by hero")
	}
	return collectRequests(rows)
}

func (r requestRepo) ListAll(ctx context.Context, status domain.RequestStatus, limit, offset int) ([]domain.ServiceRequest, error) {
	rows, err := r.s.q(ctx).Query(ctx, `
        SELECT `+requestColumns+` FROM service_requests
        WHERE ($1 = '' OR status = $1)
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`, string(status), limitOrAll(limit), offset)
	if err != nil {
		return nil, mapErr(err, "list requests")
	}
	return collectRequests(rows)
}

func (r requestRepo) Assign(ctx context.Context, id uuid.UUID, heroID string, at time.Time) error {
	tag, err := r.s.q(ctx).Exec(ctx, `
        UPDATE service_requests
        SET status = 'assigned', assigned_hero_id = $2, updated_at = $3
        WHERE id = $1 AND status = 'pending' AND assigned_hero_id IS NULL`, id, heroID, at)
	if err != nil {
		return mapErr(err, "assign request")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.Conflict("request no longer available")
	}
	return nil
}

func (r requestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, at time.Time) error {
	tag, err := r.s.q(ctx).Exec(ctx, `
        UPDATE service_requests
        SET status = $3,
            assigned_hero_id = CASE WHEN $3 = 'cancelled' THEN NULL ELSE assigned_hero_id END,
            updated_at = $4
        WHERE id = $1 AND status = $2`, id, string(from), string(to), at)
	if err != nil {
		return mapErr(err, "update request status")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.Conflict("request status changed concurrently")
	}
	return nil
}

func (r requestRepo) UpdateDetails(ctx context.Context, req *domain.ServiceRequest) error {
	tag, err := r.s.q(ctx).Exec(ctx, `
        UPDATE service_requests
        SET title = $2, description = $3, location = $4, scheduled_date = $5,
            duration_hours = $6, budget_min = $7, budget_max = $8, updated_at = $9
        WHERE id = $1 AND status = 'pending'`,
		req.ID, req.Title, req.Description, req.Location, req.ScheduledDate,
		req.DurationHours, req.Budget.Min, req.Budget.Max, req.UpdatedAt)
	if err != nil {
		return mapErr(err, "update request")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, req.ID); err != nil {
			return err
		}
		return domain.Conflict("request can only be edited while pending")
	}
	return nil
}

func (r requestRepo) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int, error) {
	rows, err := r.s.q(ctx).Query(ctx, `SELECT status, COUNT(*) FROM service_requests GROUP BY status`)
	if err != nil {
		return nil, mapErr(err, "count requests")
	}
	defer rows.Close()
	out := make(map[domain.RequestStatus]int)
	for rows.Next() {
		var st domain.RequestStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

// limitOrAll maps a non-positive limit to LIMIT ALL.
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

type acceptanceRepo struct{ s *Store }

func scanAcceptance(row pgx.Row) (*domain.Acceptance, error) {
	var a domain.Acceptance
	var hero uuid.UUID
	if err := row.Scan(&a.ID, &a.RequestID, &hero, &a.AcceptedAt, &a.Chosen); err != nil {
		return nil, err
	}
	a.HeroRecordID = domain.HeroRecordID(hero)
	return &a, nil
}

func (r acceptanceRepo) Create(ctx context.Context, a *domain.Acceptance) error {
	_, err := r.s.q(ctx).Exec(ctx, `
        INSERT INTO request_acceptances (id, request_id, hero_record_id, accepted_at, chosen)
        VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.RequestID, uuid.UUID(a.HeroRecordID), a.AcceptedAt, a.Chosen)
	return mapErr(err, "acceptance")
}

func (r acceptanceRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Acceptance, error) {
	rows, err := r.s.q(ctx).Query(ctx, `
        SELECT id, request_id, hero_record_id, accepted_at, chosen
        FROM request_acceptances WHERE request_id = $1 ORDER BY accepted_at ASC`, requestID)
	if err != nil {
		return nil, mapErr(err, "list acceptances")
	}
	defer rows.Close()
	out := []domain.Acceptance{}
	for rows.Next() {
		a, err := scanAcceptance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// MarkChosen is a single conditional write; the partial unique index on
// chosen rows backs it against a concurrent choose.
func (r acceptanceRepo) MarkChosen(ctx context.Context, requestID uuid.UUID, hero domain.HeroRecordID) (*domain.Acceptance, error) {
	a, err := scanAcceptance(r.s.q(ctx).QueryRow(ctx, `
        UPDATE request_acceptances a SET chosen = TRUE
        WHERE a.request_id = $1 AND a.hero_record_id = $2
          AND NOT EXISTS (SELECT 1 FROM request_acceptances o WHERE o.request_id = $1 AND o.chosen)
          AND EXISTS (SELECT 1 FROM service_requests s WHERE s.id = $1 AND s.status = 'pending')
        RETURNING a.id, a.request_id, a.hero_record_id, a.accepted_at, a.chosen`,
		requestID, uuid.UUID(hero)))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapErr(err, "mark chosen")
	}

	var chosenExists, rowExists, pending bool
	err = r.s.q(ctx).QueryRow(ctx, `
        SELECT
            EXISTS (SELECT 1 FROM request_acceptances WHERE request_id = $1 AND chosen),
            EXISTS (SELECT 1 FROM request_acceptances WHERE request_id = $1 AND hero_record_id = $2),
            EXISTS (SELECT 1 FROM service_requests WHERE id = $1 AND status = 'pending')`,
		requestID, uuid.UUID(hero)).Scan(&chosenExists, &rowExists, &pending)
	switch {
	case err != nil:
		return nil, mapErr(err, "mark chosen")
	case chosenExists:
		return nil, domain.Conflict("a provider was already chosen for this request")
	case !rowExists:
		return nil, domain.NotFound("acceptance", "")
	default:
		return nil, domain.Conflict("request no longer available")
	}
}

func (r acceptanceRepo) UnmarkChosen(ctx context.Context, acceptanceID uuid.UUID) error {
	tag, err := r.s.q(ctx).Exec(ctx, `UPDATE request_acceptances SET chosen = FALSE WHERE id = $1`, acceptanceID)
	if err != nil {
		return mapErr(err, "unmark chosen")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("acceptance", acceptanceID.String())
	}
	return nil
}

func (r acceptanceRepo) Delete(ctx context.Context, requestID uuid.UUID, hero domain.HeroRecordID) error {
	var chosen bool
	err := r.s.q(ctx).QueryRow(ctx, `
        DELETE FROM request_acceptances
        WHERE request_id = $1 AND hero_record_id = $2 AND NOT chosen
        RETURNING chosen`, requestID, uuid.UUID(hero)).Scan(&chosen)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return mapErr(err, "withdraw acceptance")
	}
	var exists bool
	if err := r.s.q(ctx).QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM request_acceptances WHERE request_id = $1 AND hero_record_id = $2)`,
		requestID, uuid.UUID(hero)).Scan(&exists); err != nil {
		return mapErr(err, "withdraw acceptance")
	}
	if exists {
		return domain.Conflict("chosen acceptance cannot be withdrawn")
	}
	return domain.NotFound("acceptance", "")
}

func (r acceptanceRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.s.q(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM request_acceptances`).Scan(&n)
	return n, mapErr(err, "count acceptances")
}
