package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

const walletColumns = `id, hero_user_id, earnings_balance, fee_balance, fee_threshold,
    bank_account_name, bank_account_number, bank_name, identity_verified,
    last_withdrawal_at, withdrawal_cooldown_hours, created_at, updated_at`

type walletRepo struct{ s *Store }

func scanWallet(row pgx.Row) (*domain.HeroWallet, error) {
	var w domain.HeroWallet
	err := row.Scan(&w.ID, &w.HeroID, &w.EarningsBalance, &w.FeeBalance, &w.FeeThreshold,
		&w.BankDetails.AccountName, &w.BankDetails.AccountNumber, &w.BankDetails.BankName, &w.IdentityVerified,
		&w.LastWithdrawalAt, &w.WithdrawalCooldownHours, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r walletRepo) Create(ctx context.Context, w *domain.HeroWallet) error {
	_, err := r.s.q(ctx).Exec(ctx, `
        INSERT INTO hero_wallets (`+walletColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		w.ID, w.HeroID, w.EarningsBalance, w.FeeBalance, w.FeeThreshold,
		w.BankDetails.AccountName, w.BankDetails.AccountNumber, w.BankDetails.BankName, w.IdentityVerified,
		w.LastWithdrawalAt, w.WithdrawalCooldownHours, w.CreatedAt, w.UpdatedAt)
	return mapErr(err, "create wallet")
}

func (r walletRepo) get(ctx context.Context, query, id string, args ...any) (*domain.HeroWallet, error) {
	w, err := scanWallet(r.s.q(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("wallet", id)
	}
	if err != nil {
		return nil, mapErr(err, "get wallet")
	}
	return w, nil
}

func (r walletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.HeroWallet, error) {
	return r.get(ctx, `SELECT `+walletColumns+` FROM hero_wallets WHERE id = $1`, id.String(), id)
}

func (r walletRepo) GetByHeroID(ctx context.Context, heroID string) (*domain.HeroWallet, error) {
	return r.get(ctx, `SELECT `+walletColumns+` FROM hero_wallets WHERE hero_user_id = $1`, heroID, heroID)
}

func (r walletRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.HeroWallet, error) {
	if !inTx(ctx) {
		return nil, fmt.Errorf("lock wallet %s: not inside a transaction", id)
	}
	return r.get(ctx, `SELECT `+walletColumns+` FROM hero_wallets WHERE id = $1 FOR UPDATE`, id.String(), id)
}

func (r walletRepo) exec(ctx context.Context, what string, id uuid.UUID, query string, args ...any) error {
	tag, err := r.s.q(ctx).Exec(ctx, query, args...)
	if err != nil {
		return mapErr(err, what)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("wallet", id.String())
	}
	return nil
}

func (r walletRepo) UpdateBalances(ctx context.Context, id uuid.UUID, earnings, fee decimal.Decimal, at time.Time) error {
	return r.exec(ctx, "update balances", id,
		`UPDATE hero_wallets SET earnings_balance = $2, fee_balance = $3, updated_at = $4 WHERE id = $1`,
		id, earnings, fee, at)
}

func (r walletRepo) UpdateBankDetails(ctx context.Context, id uuid.UUID, b domain.BankDetails, at time.Time) error {
	return r.exec(ctx, "update bank details", id, `
        UPDATE hero_wallets SET bank_account_name = $2, bank_account_number = $3, bank_name = $4, updated_at = $5
        WHERE id = $1`, id, b.AccountName, b.AccountNumber, b.BankName, at)
}

func (r walletRepo) SetIdentityVerified(ctx context.Context, id uuid.UUID, verified bool, at time.Time) error {
	return r.exec(ctx, "set identity verified", id,
		`UPDATE hero_wallets SET identity_verified = $2, updated_at = $3 WHERE id = $1`, id, verified, at)
}

func (r walletRepo) SetLastWithdrawalAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, "set last withdrawal", id,
		`UPDATE hero_wallets SET last_withdrawal_at = $2, updated_at = $2 WHERE id = $1`, id, at)
}

func (r walletRepo) List(ctx context.Context, limit, offset int) ([]domain.HeroWallet, error) {
	rows, err := r.s.q(ctx).Query(ctx, `
        SELECT `+walletColumns+` FROM hero_wallets ORDER BY created_at ASC LIMIT $1 OFFSET $2`,
		limitOrAll(limit), offset)
	if err != nil {
		return nil, mapErr(err, "list wallets")
	}
	defer rows.Close()
	out := []domain.HeroWallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

const transactionColumns = `id, wallet_id, type, amount, balance_type, status, description,
    earnings_balance_after, fee_balance_after, request_id, created_at, updated_at`

type transactionRepo struct{ s *Store }

func scanTransaction(row pgx.Row) (*domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	err := row.Scan(&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.Balance, &t.Status, &t.Description,
		&t.EarningsBalanceAfter, &t.FeeBalanceAfter, &t.RequestID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r transactionRepo) Insert(ctx context.Context, t *domain.WalletTransaction) error {
	_, err := r.s.q(ctx).Exec(ctx, `
        INSERT INTO wallet_transactions (`+transactionColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		t.ID, t.WalletID, t.Type, t.Amount, t.Balance, t.Status, t.Description,
		t.EarningsBalanceAfter, t.FeeBalanceAfter, t.RequestID, t.CreatedAt, t.UpdatedAt)
	return mapErr(err, "insert transaction")
}

func (r transactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error) {
	t, err := scanTransaction(r.s.q(ctx).QueryRow(ctx, `SELECT `+transactionColumns+` FROM wallet_transactions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("transaction", id.String())
	}
	if err != nil {
		return nil, mapErr(err, "get transaction")
	}
	return t, nil
}

// Finish only touches pending rows; a completed transaction is never edited.
func (r transactionRepo) Finish(ctx context.Context, id uuid.UUID, status domain.TxStatus, earningsAfter, feeAfter decimal.Decimal, at time.Time) error {
	tag, err := r.s.q(ctx).Exec(ctx, `
        UPDATE wallet_transactions
        SET status = $2, earnings_balance_after = $3, fee_balance_after = $4, updated_at = $5
        WHERE id = $1 AND status = 'pending'`, id, status, earningsAfter, feeAfter, at)
	if err != nil {
		return mapErr(err, "finish transaction")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.Conflict("transaction is not pending")
	}
	return nil
}

func (r transactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]domain.WalletTransaction, error) {
	rows, err := r.s.q(ctx).Query(ctx, `
        SELECT `+transactionColumns+` FROM wallet_transactions
        WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		walletID, limitOrAll(limit), offset)
	if err != nil {
		return nil, mapErr(err, "list transactions")
	}
	defer rows.Close()
	out := []domain.WalletTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

const withdrawalColumns = `id, wallet_id, amount, status, bank_snapshot, transaction_id, failure_reason,
    requested_at, processed_at, completed_at, failed_at`

type withdrawalRepo struct{ s *Store }

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	var snapshot []byte
	err := row.Scan(&w.ID, &w.WalletID, &w.Amount, &w.Status, &snapshot, &w.TransactionID, &w.FailureReason,
		&w.RequestedAt, &w.ProcessedAt, &w.CompletedAt, &w.FailedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &w.BankSnapshot); err != nil {
		return nil, fmt.Errorf("decode bank snapshot: %w", err)
	}
	return &w, nil
}

func (r withdrawalRepo) Insert(ctx context.Context, w *domain.WithdrawalRequest) error {
	snapshot, err := json.Marshal(w.BankSnapshot)
	if err != nil {
		return fmt.Errorf("encode bank snapshot: %w", err)
	}
	_, err = r.s.q(ctx).Exec(ctx, `
        INSERT INTO withdrawal_requests (`+withdrawalColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		w.ID, w.WalletID, w.Amount, w.Status, snapshot, w.TransactionID, w.FailureReason,
		w.RequestedAt, w.ProcessedAt, w.CompletedAt, w.FailedAt)
	return mapErr(err, "insert withdrawal")
}

func (r withdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	w, err := scanWithdrawal(r.s.q(ctx).QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("withdrawal", id.String())
	}
	if err != nil {
		return nil, mapErr(err, "get withdrawal")
	}
	return w, nil
}

func (r withdrawalRepo) SumPending(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.s.q(ctx).QueryRow(ctx, `
        SELECT COALESCE(SUM(amount), 0) FROM withdrawal_requests
        WHERE wallet_id = $1 AND status = 'pending'`, walletID).Scan(&sum)
	return sum, mapErr(err, "sum pending withdrawals")
}

func (r withdrawalRepo) Finish(ctx context.Context, id uuid.UUID, status domain.TxStatus, reason string, at time.Time) error {
	tag, err := r.s.q(ctx).Exec(ctx, `
        UPDATE withdrawal_requests
        SET status = $2,
            failure_reason = $3,
            processed_at = $4,
            completed_at = CASE WHEN $2 = 'completed' THEN $4 END,
            failed_at = CASE WHEN $2 = 'failed' THEN $4 END
        WHERE id = $1 AND status = 'pending'`, id, string(status), reason, at)
	if err != nil {
		return mapErr(err, "finish withdrawal")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.Conflict("withdrawal is not pending")
	}
	return nil
}

func (r withdrawalRepo) list(ctx context.Context, query string, args ...any) ([]domain.WithdrawalRequest, error) {
	rows, err := r.s.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "list withdrawals")
	}
	defer rows.Close()
	out := []domain.WithdrawalRequest{}
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r withdrawalRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.WithdrawalRequest, error) {
	return r.list(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests
        WHERE wallet_id = $1 ORDER BY requested_at DESC`, walletID)
}

func (r withdrawalRepo) ListByStatus(ctx context.Context, status domain.TxStatus, limit, offset int) ([]domain.WithdrawalRequest, error) {
	return r.list(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests
        WHERE ($1 = '' OR status = $1) ORDER BY requested_at ASC LIMIT $2 OFFSET $3`,
		string(status), limitOrAll(limit), offset)
}
