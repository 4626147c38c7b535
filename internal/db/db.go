package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nullityv3/home-hero-sub002/internal/config"
	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/port"
)

// Connect opens the pool and pings Postgres.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	log.Println("Connected to Postgres successfully")
	return pool, nil
}

type txKey struct{}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements every repository port on a pgx pool. Repositories
// called with a ctx from WithinTx run on that transaction.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Requests() port.RequestRepository           { return requestRepo{s} }
func (s *Store) Acceptances() port.AcceptanceRepository     { return acceptanceRepo{s} }
func (s *Store) Heroes() port.HeroRepository                { return heroRepo{s} }
func (s *Store) Wallets() port.WalletRepository             { return walletRepo{s} }
func (s *Store) Transactions() port.TransactionRepository   { return transactionRepo{s} }
func (s *Store) Withdrawals() port.WithdrawalRepository     { return withdrawalRepo{s} }
func (s *Store) Notifications() port.NotificationRepository { return notificationRepo{s} }

func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(pgx.Tx)
	return ok
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapErr(err, "commit")
	}
	return nil
}

// Ping backs the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
	fkViolation     = "23503"
)

var constraintReasons = map[string]string{
	"request_acceptances_request_hero_key": "hero already accepted this request",
	"request_acceptances_one_chosen":       "a provider was already chosen for this request",
	"heroes_user_id_key":                   "hero record already exists",
	"hero_wallets_hero_user_id_key":        "wallet already exists",
	"wallet_transactions_settlement_key":   "job already settled",
	"service_requests_assignee_check":      "assigned hero does not match status",
	"hero_wallets_earnings_check":          "earnings balance cannot go negative",
}

// mapErr translates driver errors into the domain error taxonomy.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation, checkViolation:
			if reason, ok := constraintReasons[pgErr.ConstraintName]; ok {
				return domain.Conflict(reason)
			}
			return domain.Conflict(what + ": " + pgErr.ConstraintName)
		case fkViolation:
			return domain.NotFound(what, "")
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
