package wallet

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/metrics"
)

// RequestWithdrawal records a pending withdrawal and its pending transaction.
// Earnings are reserved by pending withdrawals but only debited on completion.
func (l *Ledger) RequestWithdrawal(ctx context.Context, heroID string, amount decimal.Decimal) (*domain.WithdrawalRequest, error) {
	if !amount.IsPositive() {
		return nil, domain.Invalid("amount", "must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, domain.Invalid("amount", "must have at most two decimal places")
	}

	var out *domain.WithdrawalRequest
	err := l.store.WithinTx(ctx, func(ctx context.Context) error {
		w, err := l.store.Wallets().GetByHeroID(ctx, heroID)
		if err != nil {
			return err
		}
		if w, err = l.store.Wallets().GetForUpdate(ctx, w.ID); err != nil {
			return err
		}

		if !w.IdentityVerified {
			return domain.Forbidden("identity verification is required before withdrawing")
		}
		if !w.BankDetails.Present() {
			return domain.Invalid("bank_details", "are required before withdrawing")
		}
		now := l.now().UTC()
		if !w.CooldownElapsed(now) {
			return domain.Conflict("withdrawal cooldown has not elapsed")
		}
		pending, err := l.store.Withdrawals().SumPending(ctx, w.ID)
		if err != nil {
			return err
		}
		available := w.EarningsBalance.Sub(pending)
		if amount.GreaterThan(available) {
			return &domain.InsufficientBalanceError{Balance: domain.BalanceEarnings, Available: available, Requested: amount}
		}

		t := &domain.WalletTransaction{
			ID:                   uuid.New(),
			WalletID:             w.ID,
			Type:                 domain.TxWithdrawal,
			Amount:               amount.Neg(),
			Balance:              domain.BalanceEarnings,
			Status:               domain.TxPending,
			Description:          "withdrawal to " + w.BankDetails.BankName,
			EarningsBalanceAfter: w.EarningsBalance,
			FeeBalanceAfter:      w.FeeBalance,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := l.store.Transactions().Insert(ctx, t); err != nil {
			return err
		}
		wd := &domain.WithdrawalRequest{
			ID:            uuid.New(),
			WalletID:      w.ID,
			Amount:        amount,
			Status:        domain.TxPending,
			BankSnapshot:  w.BankDetails,
			TransactionID: t.ID,
			RequestedAt:   now,
		}
		if err := l.store.Withdrawals().Insert(ctx, wd); err != nil {
			return err
		}
		if err := l.store.Wallets().SetLastWithdrawalAt(ctx, w.ID, now); err != nil {
			return err
		}
		out = wd
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.WithdrawalsRequested.Inc()
	log.Printf("[wallet] withdrawal %s of %s requested by hero %s", out.ID, amount.StringFixed(2), heroID)
	return out, nil
}

// CompleteWithdrawal debits earnings and completes the withdrawal and its
// transaction, once the external payout has gone through.
func (l *Ledger) CompleteWithdrawal(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	var out *domain.WithdrawalRequest
	err := l.store.WithinTx(ctx, func(ctx context.Context) error {
		wd, err := l.store.Withdrawals().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if wd.Status != domain.TxPending {
			return domain.Conflict("withdrawal is " + string(wd.Status))
		}
		w, err := l.store.Wallets().GetForUpdate(ctx, wd.WalletID)
		if err != nil {
			return err
		}
		earnings := w.EarningsBalance.Sub(wd.Amount)
		if earnings.IsNegative() {
			return &domain.InsufficientBalanceError{Balance: domain.BalanceEarnings, Available: w.EarningsBalance, Requested: wd.Amount}
		}
		now := l.now().UTC()
		if err := l.store.Wallets().UpdateBalances(ctx, w.ID, earnings, w.FeeBalance, now); err != nil {
			return err
		}
		if err := l.store.Transactions().Finish(ctx, wd.TransactionID, domain.TxCompleted, earnings, w.FeeBalance, now); err != nil {
			return err
		}
		if err := l.store.Withdrawals().Finish(ctx, wd.ID, domain.TxCompleted, "", now); err != nil {
			return err
		}
		out, err = l.store.Withdrawals().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.WalletTransactions.WithLabelValues(string(domain.TxWithdrawal)).Inc()
	log.Printf("[wallet] withdrawal %s completed", id)
	return out, nil
}

// FailWithdrawal marks a pending withdrawal and its transaction failed. No
// balance moves.
func (l *Ledger) FailWithdrawal(ctx context.Context, id uuid.UUID, reason string) (*domain.WithdrawalRequest, error) {
	if reason == "" {
		return nil, domain.Invalid("reason", "is required")
	}
	var out *domain.WithdrawalRequest
	err := l.store.WithinTx(ctx, func(ctx context.Context) error {
		wd, err := l.store.Withdrawals().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if wd.Status != domain.TxPending {
			return domain.Conflict("withdrawal is " + string(wd.Status))
		}
		w, err := l.store.Wallets().GetForUpdate(ctx, wd.WalletID)
		if err != nil {
			return err
		}
		now := l.now().UTC()
		if err := l.store.Transactions().Finish(ctx, wd.TransactionID, domain.TxFailed, w.EarningsBalance, w.FeeBalance, now); err != nil {
			return err
		}
		if err := l.store.Withdrawals().Finish(ctx, wd.ID, domain.TxFailed, reason, now); err != nil {
			return err
		}
		out, err = l.store.Withdrawals().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[wallet] withdrawal %s failed: %s", id, reason)
	return out, nil
}

func (l *Ledger) ListWithdrawals(ctx context.Context, heroID string) ([]domain.WithdrawalRequest, error) {
	w, err := l.store.Wallets().GetByHeroID(ctx, heroID)
	if err != nil {
		return nil, err
	}
	return l.store.Withdrawals().ListByWallet(ctx, w.ID)
}

func (l *Ledger) ListWithdrawalsByStatus(ctx context.Context, status domain.TxStatus, limit, offset int) ([]domain.WithdrawalRequest, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("status", "unknown withdrawal status "+string(status))
	}
	return l.store.Withdrawals().ListByStatus(ctx, status, limit, offset)
}
