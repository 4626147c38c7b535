package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxCashJobFee   TransactionType = "cash_job_fee"
	TxInAppPayment TransactionType = "in_app_payment"
	TxWithdrawal   TransactionType = "withdrawal"
	TxFeeTopUp     TransactionType = "fee_top_up"
	TxRefund       TransactionType = "refund"
	TxAdjustment   TransactionType = "adjustment"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxCashJobFee, TxInAppPayment, TxWithdrawal, TxFeeTopUp, TxRefund, TxAdjustment:
		return true
	}
	return false
}

// BalanceType names which of the two wallet balances a transaction moves.
type BalanceType string

const (
	BalanceEarnings BalanceType = "earnings"
	BalanceFee      BalanceType = "fee"
)

func (b BalanceType) Valid() bool {
	return b == BalanceEarnings || b == BalanceFee
}

// TxStatus is shared by wallet transactions and withdrawal requests.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
	TxCancelled TxStatus = "cancelled"
)

func (s TxStatus) Valid() bool {
	switch s {
	case TxPending, TxCompleted, TxFailed, TxCancelled:
		return true
	}
	return false
}

type BankDetails struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
}

func (b BankDetails) Present() bool {
	return b.AccountName != "" && b.AccountNumber != "" && b.BankName != ""
}

// HeroWallet holds the two balances of a hero. HeroID is the hero's public
// identity.
type HeroWallet struct {
	ID                      uuid.UUID       `json:"id"`
	HeroID                  string          `json:"hero_id"`
	EarningsBalance         decimal.Decimal `json:"earnings_balance"`
	FeeBalance              decimal.Decimal `json:"fee_balance"`
	FeeThreshold            decimal.Decimal `json:"fee_threshold"`
	BankDetails             BankDetails     `json:"bank_details"`
	IdentityVerified        bool            `json:"identity_verified"`
	LastWithdrawalAt        *time.Time      `json:"last_withdrawal_at"`
	WithdrawalCooldownHours int             `json:"withdrawal_cooldown_hours"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// CanAcceptJobs reports whether the fee balance is still at or above the threshold.
func (w *HeroWallet) CanAcceptJobs() bool {
	return w.FeeBalance.GreaterThanOrEqual(w.FeeThreshold)
}

// CooldownElapsed reports whether a new withdrawal may be requested at now.
func (w *HeroWallet) CooldownElapsed(now time.Time) bool {
	if w.LastWithdrawalAt == nil {
		return true
	}
	cooldown := time.Duration(w.WithdrawalCooldownHours) * time.Hour
	return now.Sub(*w.LastWithdrawalAt) >= cooldown
}

// WalletTransaction is an append-only ledger row. The *After fields are the
// wallet balances right after the row was applied.
type WalletTransaction struct {
	ID                   uuid.UUID       `json:"id"`
	WalletID             uuid.UUID       `json:"wallet_id"`
	Type                 TransactionType `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	Balance              BalanceType     `json:"balance"`
	Status               TxStatus        `json:"status"`
	Description          string          `json:"description"`
	EarningsBalanceAfter decimal.Decimal `json:"earnings_balance_after"`
	FeeBalanceAfter      decimal.Decimal `json:"fee_balance_after"`
	RequestID            *uuid.UUID      `json:"request_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type WithdrawalRequest struct {
	ID            uuid.UUID       `json:"id"`
	WalletID      uuid.UUID       `json:"wallet_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        TxStatus        `json:"status"`
	BankSnapshot  BankDetails     `json:"bank_snapshot"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	FailureReason string          `json:"failure_reason,omitempty"`
	RequestedAt   time.Time       `json:"requested_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	FailedAt      *time.Time      `json:"failed_at,omitempty"`
}

// BankDetailsUpdate is the only way bank details change.
type BankDetailsUpdate struct {
	AccountName   *string `json:"account_name,omitempty" validate:"omitempty,min=1,max=120"`
	AccountNumber *string `json:"account_number,omitempty" validate:"omitempty,min=4,max=34,alphanum"`
	BankName      *string `json:"bank_name,omitempty" validate:"omitempty,min=1,max=120"`
}

func (u BankDetailsUpdate) Apply(b *BankDetails) {
	if u.AccountName != nil {
		b.AccountName = *u.AccountName
	}
	if u.AccountNumber != nil {
		b.AccountNumber = *u.AccountNumber
	}
	if u.BankName != nil {
		b.BankName = *u.BankName
	}
}

// JobSettlement is emitted by the request lifecycle when a job completes.
type JobSettlement struct {
	RequestID     uuid.UUID
	HeroID        string
	PaymentMethod PaymentMethod
	Amount        decimal.Decimal
	PlatformFee   decimal.Decimal
}
