// Package wallet is the hero wallet ledger: two balances per hero, an
// append-only transaction log and withdrawal requests. Balances only move
// through RecordTransaction and CompleteWithdrawal, both under the wallet
// row lock.
package wallet

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/metrics"
	"github.com/nullityv3/home-hero-sub002/internal/port"
)

// Defaults are copied onto every new wallet.
type Defaults struct {
	FeeThreshold            decimal.Decimal
	WithdrawalCooldownHours int
}

type Ledger struct {
	store    port.Store
	defaults Defaults
	validate *domain.Validator
	now      func() time.Time
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(store port.Store, defaults Defaults, opts ...Option) *Ledger {
	l := &Ledger{store: store, defaults: defaults, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	l.validate = domain.NewValidator(l.now)
	return l
}

// CreateWallet opens the wallet of a newly registered hero. Call it inside the
// transaction that creates the hero record.
func (l *Ledger) CreateWallet(ctx context.Context, heroID string) (*domain.HeroWallet, error) {
	now := l.now().UTC()
	w := &domain.HeroWallet{
		ID:                      uuid.New(),
		HeroID:                  heroID,
		EarningsBalance:         decimal.Zero,
		FeeBalance:              decimal.Zero,
		FeeThreshold:            l.defaults.FeeThreshold,
		WithdrawalCooldownHours: l.defaults.WithdrawalCooldownHours,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := l.store.Wallets().Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// TransactionInput describes one balance movement. Amount is signed.
type TransactionInput struct {
	WalletID    uuid.UUID
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Balance     domain.BalanceType
	Description string
	RequestID   *uuid.UUID
}

// balanceFor lists the balance each type is allowed to move.
var balanceFor = map[domain.TransactionType][]domain.BalanceType{
	domain.TxCashJobFee:   {domain.BalanceFee},
	domain.TxInAppPayment: {domain.BalanceEarnings},
	domain.TxWithdrawal:   {domain.BalanceEarnings},
	domain.TxFeeTopUp:     {domain.BalanceFee},
	domain.TxRefund:       {domain.BalanceEarnings, domain.BalanceFee},
	domain.TxAdjustment:   {domain.BalanceEarnings, domain.BalanceFee},
}

func validateInput(in TransactionInput) error {
	if !in.Type.Valid() {
		return domain.Invalid("type", "unknown transaction type "+string(in.Type))
	}
	if !in.Balance.Valid() {
		return domain.Invalid("balance", "must be earnings or fee")
	}
	allowed := false
	for _, b := range balanceFor[in.Type] {
		if b == in.Balance {
			allowed = true
		}
	}
	if !allowed {
		return domain.Invalid("balance", string(in.Type)+" cannot move the "+string(in.Balance)+" balance")
	}
	if in.Amount.IsZero() {
		return domain.Invalid("amount", "must not be zero")
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return domain.Invalid("amount", "must have at most two decimal places")
	}
	return nil
}

// apply computes the balances after in is applied to w. Earnings never go
// below zero. A fee movement other than an automatic cash-job fee may not take
// the fee balance below the threshold.
func apply(w *domain.HeroWallet, in TransactionInput) (earnings, fee decimal.Decimal, err error) {
	earnings, fee = w.EarningsBalance, w.FeeBalance
	switch in.Balance {
	case domain.BalanceEarnings:
		earnings = earnings.Add(in.Amount)
		if earnings.IsNegative() {
			return w.EarningsBalance, w.FeeBalance, &domain.InsufficientBalanceError{
				Balance:   domain.BalanceEarnings,
				Available: w.EarningsBalance,
				Requested: in.Amount.Neg(),
			}
		}
	case domain.BalanceFee:
		fee = fee.Add(in.Amount)
		if in.Type != domain.TxCashJobFee && in.Amount.IsNegative() && fee.LessThan(w.FeeThreshold) {
			return w.EarningsBalance, w.FeeBalance, &domain.InsufficientBalanceError{
				Balance:   domain.BalanceFee,
				Available: w.FeeBalance.Sub(w.FeeThreshold),
				Requested: in.Amount.Neg(),
			}
		}
	}
	return earnings, fee, nil
}

// RecordTransaction applies a signed movement to one balance and appends the
// completed transaction with both balance snapshots. On error nothing is applied.
func (l *Ledger) RecordTransaction(ctx context.Context, in TransactionInput) (*domain.WalletTransaction, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out *domain.WalletTransaction
	err := l.store.WithinTx(ctx, func(ctx context.Context) error {
		w, err := l.store.Wallets().GetForUpdate(ctx, in.WalletID)
		if err != nil {
			return err
		}
		earnings, fee, err := apply(w, in)
		if err != nil {
			return err
		}
		now := l.now().UTC()
		t := &domain.WalletTransaction{
			ID:                   uuid.New(),
			WalletID:             w.ID,
			Type:                 in.Type,
			Amount:               in.Amount,
			Balance:              in.Balance,
			Status:               domain.TxCompleted,
			Description:          in.Description,
			EarningsBalanceAfter: earnings,
			FeeBalanceAfter:      fee,
			RequestID:            in.RequestID,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := l.store.Transactions().Insert(ctx, t); err != nil {
			return err
		}
		if err := l.store.Wallets().UpdateBalances(ctx, w.ID, earnings, fee, now); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		var ib *domain.InsufficientBalanceError
		if errors.As(err, &ib) {
			metrics.WalletRejections.WithLabelValues("insufficient_" + string(ib.Balance)).Inc()
		}
		return nil, err
	}
	metrics.WalletTransactions.WithLabelValues(string(out.Type)).Inc()
	return out, nil
}

// CanAcceptJobs reads the wallet straight from the store.
func (l *Ledger) CanAcceptJobs(ctx context.Context, walletID uuid.UUID) (bool, error) {
	w, err := l.store.Wallets().GetByID(ctx, walletID)
	if err != nil {
		return false, err
	}
	return w.CanAcceptJobs(), nil
}

func (l *Ledger) CanHeroAcceptJobs(ctx context.Context, heroID string) (bool, error) {
	w, err := l.store.Wallets().GetByHeroID(ctx, heroID)
	if err != nil {
		return false, err
	}
	return w.CanAcceptJobs(), nil
}

// EnsureCanAcceptJobs is the fee gate in front of new acceptances.
func (l *Ledger) EnsureCanAcceptJobs(ctx context.Context, heroID string) error {
	w, err := l.store.Wallets().GetByHeroID(ctx, heroID)
	if err != nil {
		return err
	}
	if !w.CanAcceptJobs() {
		metrics.WalletRejections.WithLabelValues("fee_gate").Inc()
		return &domain.InsufficientBalanceError{
			Balance:   domain.BalanceFee,
			Available: w.FeeBalance,
			Requested: w.FeeThreshold,
		}
	}
	return nil
}

// SettleJob books a completed job: in-app jobs credit the net amount to
// earnings, cash jobs charge the platform fee to the fee balance. Each job
// settles at most once per wallet.
func (l *Ledger) SettleJob(ctx context.Context, s domain.JobSettlement) error {
	w, err := l.store.Wallets().GetByHeroID(ctx, s.HeroID)
	if err != nil {
		return err
	}
	reqID := s.RequestID
	in := TransactionInput{WalletID: w.ID, RequestID: &reqID}
	switch s.PaymentMethod {
	case domain.PaymentCash:
		in.Type = domain.TxCashJobFee
		in.Balance = domain.BalanceFee
		in.Amount = s.PlatformFee.Neg()
		in.Description = "platform fee for cash job " + s.RequestID.String()
	default:
		in.Type = domain.TxInAppPayment
		in.Balance = domain.BalanceEarnings
		in.Amount = s.Amount.Sub(s.PlatformFee)
		in.Description = "payment for job " + s.RequestID.String()
	}
	if in.Amount.IsZero() {
		log.Printf("[wallet] request %s settled with zero amount, nothing recorded", s.RequestID)
		return nil
	}
	_, err = l.RecordTransaction(ctx, in)
	return err
}

// RecordFeeTopUp credits the fee balance after an external payment cleared.
func (l *Ledger) RecordFeeTopUp(ctx context.Context, heroID string, amount decimal.Decimal, reference string) (*domain.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, domain.Invalid("amount", "must be greater than zero")
	}
	w, err := l.store.Wallets().GetByHeroID(ctx, heroID)
	if err != nil {
		return nil, err
	}
	desc := "fee top-up"
	if reference != "" {
		desc += " " + reference
	}
	return l.RecordTransaction(ctx, TransactionInput{
		WalletID:    w.ID,
		Type:        domain.TxFeeTopUp,
		Amount:      amount,
		Balance:     domain.BalanceFee,
		Description: desc,
	})
}

func (l *Ledger) GetWallet(ctx context.Context, heroID string) (*domain.HeroWallet, error) {
	return l.store.Wallets().GetByHeroID(ctx, heroID)
}

func (l *Ledger) ListTransactions(ctx context.Context, heroID string, limit, offset int) ([]domain.WalletTransaction, error) {
	w, err := l.store.Wallets().GetByHeroID(ctx, heroID)
	if err != nil {
		return nil, err
	}
	return l.store.Transactions().ListByWallet(ctx, w.ID, limit, offset)
}

func (l *Ledger) ListWallets(ctx context.Context, limit, offset int) ([]domain.HeroWallet, error) {
	return l.store.Wallets().List(ctx, limit, offset)
}

func (l *Ledger) SetIdentityVerified(ctx context.Context, heroID string, verified bool) (*domain.HeroWallet, error) {
	var out *domain.HeroWallet
	err := l.store.WithinTx(ctx, func(ctx context.Context) error {
		w, err := l.store.Wallets().GetByHeroID(ctx, heroID)
		if err != nil {
			return err
		}
		now := l.now().UTC()
		if err := l.store.Wallets().SetIdentityVerified(ctx, w.ID, verified, now); err != nil {
			return err
		}
		w.IdentityVerified = verified
		w.UpdatedAt = now
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[wallet] hero %s identity_verified=%t", heroID, verified)
	return out, nil
}

// UpdateBankDetails applies a typed update to the hero's bank details.
func (l *Ledger) UpdateBankDetails(ctx context.Context, heroID string, upd domain.BankDetailsUpdate) (*domain.HeroWallet, error) {
	if err := l.validate.Struct(&upd); err != nil {
		return nil, err
	}
	var out *domain.HeroWallet
	err := l.store.WithinTx(ctx, func(ctx context.Context) error {
		w, err := l.store.Wallets().GetByHeroID(ctx, heroID)
		if err != nil {
			return err
		}
		if w, err = l.store.Wallets().GetForUpdate(ctx, w.ID); err != nil {
			return err
		}
		upd.Apply(&w.BankDetails)
		now := l.now().UTC()
		if err := l.store.Wallets().UpdateBankDetails(ctx, w.ID, w.BankDetails, now); err != nil {
			return err
		}
		w.UpdatedAt = now
		out = w
		return nil
	})
	return out, err
}
