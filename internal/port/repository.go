package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

// TxManager runs fn inside one store transaction. Repositories called with the
// ctx handed to fn join that transaction; a nested WithinTx reuses it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type RequestRepository interface {
	Create(ctx context.Context, r *domain.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error)
	// ListAvailable returns pending requests with no assigned hero, soonest first.
	ListAvailable(ctx context.Context, limit, offset int) ([]domain.ServiceRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]domain.ServiceRequest, error)
	ListByAssignedHero(ctx context.Context, heroID string) ([]domain.ServiceRequest, error)
	ListAll(ctx context.Context, status domain.RequestStatus, limit, offset int) ([]domain.ServiceRequest, error)
	// Assign moves a pending, unassigned request to assigned in a single write.
	// It returns a *domain.ConflictError when the request is not pending any more.
	Assign(ctx context.Context, id uuid.UUID, heroID string, at time.Time) error
	// UpdateStatus moves the request from -> to only if it is still in from.
	// Moving to cancelled clears the assigned hero.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, at time.Time) error
	// UpdateDetails writes the mutable fields of a request that is still pending.
	UpdateDetails(ctx context.Context, r *domain.ServiceRequest) error
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int, error)
}

type AcceptanceRepository interface {
	// Create fails with *domain.ConflictError when the (request, hero) pair exists.
	Create(ctx context.Context, a *domain.Acceptance) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Acceptance, error)
	// MarkChosen flips chosen on the (request, hero) row while the request is
	// pending and no other row of the request is chosen.
	MarkChosen(ctx context.Context, requestID uuid.UUID, hero domain.HeroRecordID) (*domain.Acceptance, error)
	UnmarkChosen(ctx context.Context, acceptanceID uuid.UUID) error
	// Delete removes a non-chosen acceptance.
	Delete(ctx context.Context, requestID uuid.UUID, hero domain.HeroRecordID) error
	Count(ctx context.Context) (int, error)
}

type HeroRepository interface {
	// Create fails with *domain.ConflictError when the user already has a hero record.
	Create(ctx context.Context, h *domain.Hero) error
	GetByUserID(ctx context.Context, userID string) (*domain.Hero, error)
	GetByRecordID(ctx context.Context, id domain.HeroRecordID) (*domain.Hero, error)
	Update(ctx context.Context, h *domain.Hero) error
	IncrementJobsCompleted(ctx context.Context, userID string) error
}

type WalletRepository interface {
	Create(ctx context.Context, w *domain.HeroWallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.HeroWallet, error)
	GetByHeroID(ctx context.Context, heroID string) (*domain.HeroWallet, error)
	// GetForUpdate reads the wallet and holds its row lock until the
	// surrounding transaction ends. It must run inside WithinTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.HeroWallet, error)
	UpdateBalances(ctx context.Context, id uuid.UUID, earnings, fee decimal.Decimal, at time.Time) error
	UpdateBankDetails(ctx context.Context, id uuid.UUID, b domain.BankDetails, at time.Time) error
	SetIdentityVerified(ctx context.Context, id uuid.UUID, verified bool, at time.Time) error
	SetLastWithdrawalAt(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]domain.HeroWallet, error)
}

type TransactionRepository interface {
	// Insert fails with *domain.ConflictError when a settlement for the same
	// wallet, request and type was already recorded.
	Insert(ctx context.Context, t *domain.WalletTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error)
	// Finish moves a pending transaction to status with the final balance snapshots.
	Finish(ctx context.Context, id uuid.UUID, status domain.TxStatus, earningsAfter, feeAfter decimal.Decimal, at time.Time) error
	ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]domain.WalletTransaction, error)
}

type WithdrawalRepository interface {
	Insert(ctx context.Context, w *domain.WithdrawalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error)
	// SumPending totals the amounts of the wallet's pending withdrawals.
	SumPending(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
	// Finish moves a pending withdrawal to completed or failed.
	Finish(ctx context.Context, id uuid.UUID, status domain.TxStatus, reason string, at time.Time) error
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.WithdrawalRequest, error)
	ListByStatus(ctx context.Context, status domain.TxStatus, limit, offset int) ([]domain.WithdrawalRequest, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID string, at time.Time) error
}

// Store groups every repository behind one transaction manager. Both the
// Postgres store and the in-memory store implement it.
type Store interface {
	TxManager
	Requests() RequestRepository
	Acceptances() AcceptanceRepository
	Heroes() HeroRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	Withdrawals() WithdrawalRepository
	Notifications() NotificationRepository
}
