package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

type walletRepo struct{ s *Store }

func (r walletRepo) Create(ctx context.Context, w *domain.HeroWallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, got := range r.s.wallets {
		if got.v.HeroID == w.HeroID {
			return domain.Conflict("wallet already exists")
		}
	}
	put(ctx, r.s, r.s.wallets, w.ID, row[domain.HeroWallet]{v: *w})
	return nil
}

func (r walletRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.HeroWallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.wallets[id]
	if !ok {
		return nil, domain.NotFound("wallet", id.String())
	}
	w := got.v
	return &w, nil
}

func (r walletRepo) GetByHeroID(_ context.Context, heroID string) (*domain.HeroWallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, got := range r.s.wallets {
		if got.v.HeroID == heroID {
			w := got.v
			return &w, nil
		}
	}
	return nil, domain.NotFound("wallet", heroID)
}

// GetForUpdate relies on WithinTx holding the store-wide transaction lock.
func (r walletRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.HeroWallet, error) {
	if !inTx(ctx) {
		return nil, errNoTx
	}
	return r.GetByID(ctx, id)
}

func (r walletRepo) update(ctx context.Context, id uuid.UUID, fn func(w *domain.HeroWallet)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.wallets[id]
	if !ok {
		return domain.NotFound("wallet", id.String())
	}
	fn(&got.v)
	put(ctx, r.s, r.s.wallets, id, got)
	return nil
}

func (r walletRepo) UpdateBalances(ctx context.Context, id uuid.UUID, earnings, fee decimal.Decimal, at time.Time) error {
	return r.update(ctx, id, func(w *domain.HeroWallet) {
		w.EarningsBalance = earnings
		w.FeeBalance = fee
		w.UpdatedAt = at
	})
}

func (r walletRepo) UpdateBankDetails(ctx context.Context, id uuid.UUID, b domain.BankDetails, at time.Time) error {
	return r.update(ctx, id, func(w *domain.HeroWallet) {
		w.BankDetails = b
		w.UpdatedAt = at
	})
}

func (r walletRepo) SetIdentityVerified(ctx context.Context, id uuid.UUID, verified bool, at time.Time) error {
	return r.update(ctx, id, func(w *domain.HeroWallet) {
		w.IdentityVerified = verified
		w.UpdatedAt = at
	})
}

func (r walletRepo) SetLastWithdrawalAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, id, func(w *domain.HeroWallet) {
		t := at
		w.LastWithdrawalAt = &t
		w.UpdatedAt = at
	})
}

func (r walletRepo) List(_ context.Context, limit, offset int) ([]domain.HeroWallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(sorted(r.s.wallets, nil, nil), limit, offset), nil
}

type transactionRepo struct{ s *Store }

func settles(t domain.TransactionType) bool {
	return t == domain.TxCashJobFee || t == domain.TxInAppPayment
}

func (r transactionRepo) Insert(ctx context.Context, t *domain.WalletTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wallets[t.WalletID]; !ok {
		return domain.NotFound("wallet", t.WalletID.String())
	}
	if t.RequestID != nil && settles(t.Type) {
		for _, got := range r.s.transactions {
			v := got.v
			if v.WalletID == t.WalletID && v.Type == t.Type && v.RequestID != nil && *v.RequestID == *t.RequestID {
				return domain.Conflict("job already settled")
			}
		}
	}
	put(ctx, r.s, r.s.transactions, t.ID, row[domain.WalletTransaction]{v: *t})
	return nil
}

func (r transactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.WalletTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.transactions[id]
	if !ok {
		return nil, domain.NotFound("transaction", id.String())
	}
	t := got.v
	return &t, nil
}

func (r transactionRepo) Finish(ctx context.Context, id uuid.UUID, status domain.TxStatus, earningsAfter, feeAfter decimal.Decimal, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.transactions[id]
	if !ok {
		return domain.NotFound("transaction", id.String())
	}
	if got.v.Status != domain.TxPending {
		return domain.Conflict("transaction is not pending")
	}
	got.v.Status = status
	got.v.EarningsBalanceAfter = earningsAfter
	got.v.FeeBalanceAfter = feeAfter
	got.v.UpdatedAt = at
	put(ctx, r.s, r.s.transactions, id, got)
	return nil
}

func (r transactionRepo) ListByWallet(_ context.Context, walletID uuid.UUID, limit, offset int) ([]domain.WalletTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sorted(r.s.transactions, func(v domain.WalletTransaction) bool {
		return v.WalletID == walletID
	}, func(a, b domain.WalletTransaction) int { return a.CreatedAt.Compare(b.CreatedAt) })
	// newest first
	slices.Reverse(out)
	return page(out, limit, offset), nil
}

type withdrawalRepo struct{ s *Store }

func (r withdrawalRepo) Insert(ctx context.Context, w *domain.WithdrawalRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wallets[w.WalletID]; !ok {
		return domain.NotFound("wallet", w.WalletID.String())
	}
	put(ctx, r.s, r.s.withdrawals, w.ID, row[domain.WithdrawalRequest]{v: *w})
	return nil
}

func (r withdrawalRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.withdrawals[id]
	if !ok {
		return nil, domain.NotFound("withdrawal", id.String())
	}
	w := got.v
	return &w, nil
}

func (r withdrawalRepo) SumPending(_ context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, got := range r.s.withdrawals {
		if got.v.WalletID == walletID && got.v.Status == domain.TxPending {
			sum = sum.Add(got.v.Amount)
		}
	}
	return sum, nil
}

func (r withdrawalRepo) Finish(ctx context.Context, id uuid.UUID, status domain.TxStatus, reason string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	got, ok := r.s.withdrawals[id]
	if !ok {
		return domain.NotFound("withdrawal", id.String())
	}
	if got.v.Status != domain.TxPending {
		return domain.Conflict("withdrawal is not pending")
	}
	t := at
	got.v.Status = status
	got.v.ProcessedAt = &t
	switch status {
	case domain.TxCompleted:
		got.v.CompletedAt = &t
	case domain.TxFailed:
		got.v.FailedAt = &t
		got.v.FailureReason = reason
	}
	put(ctx, r.s, r.s.withdrawals, id, got)
	return nil
}

func (r withdrawalRepo) ListByWallet(_ context.Context, walletID uuid.UUID) ([]domain.WithdrawalRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sorted(r.s.withdrawals, func(v domain.WithdrawalRequest) bool {
		return v.WalletID == walletID
	}, func(a, b domain.WithdrawalRequest) int { return b.RequestedAt.Compare(a.RequestedAt) }), nil
}

func (r withdrawalRepo) ListByStatus(_ context.Context, status domain.TxStatus, limit, offset int) ([]domain.WithdrawalRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := sorted(r.s.withdrawals, func(v domain.WithdrawalRequest) bool {
		return status == "" || v.Status == status
	}, func(a, b domain.WithdrawalRequest) int { return a.RequestedAt.Compare(b.RequestedAt) })
	return page(out, limit, offset), nil
}
