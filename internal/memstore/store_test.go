package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

var t0 = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

func seedRequest(t *testing.T, s *Store) *domain.ServiceRequest {
	t.Helper()
	return seedRequestCtx(context.Background(), t, s)
}

func seedRequestCtx(ctx context.Context, t *testing.T, s *Store) *domain.ServiceRequest {
	t.Helper()
	r := &domain.ServiceRequest{
		ID:            uuid.New(),
		RequesterID:   "civ-1",
		Title:         "Fix sink",
		Category:      domain.CategoryRepairs,
		Location:      "Main St",
		ScheduledDate: t0.Add(24 * time.Hour),
		DurationHours: 2,
		Status:        domain.StatusPending,
		CreatedAt:     t0,
		UpdatedAt:     t0,
	}
	require.NoError(t, s.Requests().Create(ctx, r))
	return r
}

func seedHero(t *testing.T, s *Store, userID string) *domain.Hero {
	t.Helper()
	h := &domain.Hero{RecordID: domain.NewHeroRecordID(), UserID: userID, DisplayName: userID, CreatedAt: t0}
	require.NoError(t, s.Heroes().Create(context.Background(), h))
	return h
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		seedRequestCtx(ctx, t, s)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Requests().ListAll(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWithinTx_Nested(t *testing.T) {
	s := New()
	ctx := context.Background()
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			seedRequestCtx(ctx, t, s)
			return nil
		})
	})
	require.NoError(t, err)
	n, _ := s.Requests().CountByStatus(ctx)
	assert.Equal(t, 1, n[domain.StatusPending])
}

func TestWithinTx_RollbackRestoresEveryWriteInOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := &domain.HeroWallet{ID: uuid.New(), HeroID: "hero-1", EarningsBalance: decimal.NewFromInt(10)}
	require.NoError(t, s.Wallets().Create(ctx, w))
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Wallets().UpdateBalances(ctx, w.ID, decimal.NewFromInt(20), decimal.Zero, t0))
		require.NoError(t, s.Wallets().UpdateBalances(ctx, w.ID, decimal.NewFromInt(30), decimal.Zero, t0))
		require.NoError(t, s.Wallets().SetIdentityVerified(ctx, w.ID, true, t0))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Wallets().GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.EarningsBalance.Equal(decimal.NewFromInt(10)))
	assert.False(t, got.IdentityVerified)
}

func TestWithinTx_RollbackKeepsWritesOutsideTheTx(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := seedRequest(t, s)
	h := seedHero(t, s, "hero-1")
	w := &domain.HeroWallet{ID: uuid.New(), HeroID: "hero-2"}
	require.NoError(t, s.Wallets().Create(ctx, w))

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.Wallets().SetLastWithdrawalAt(ctx, w.ID, t0); err != nil {
				return err
			}
			close(inside)
			<-release
			return domain.Conflict("withdrawal cooldown has not elapsed")
		})
	}()
	<-inside

	acc := &domain.Acceptance{ID: uuid.New(), RequestID: r.ID, HeroRecordID: h.RecordID, AcceptedAt: t0}
	require.NoError(t, s.Acceptances().Create(ctx, acc))
	_, err := s.Acceptances().MarkChosen(ctx, r.ID, h.RecordID)
	require.NoError(t, err)
	require.NoError(t, s.Requests().Assign(ctx, r.ID, "hero-1", t0))

	close(release)
	require.ErrorIs(t, <-done, domain.ErrConflict)

	accs, err := s.Acceptances().ListByRequest(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, accs, 1)
	assert.True(t, accs[0].Chosen)

	got, err := s.Requests().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, got.Status)

	wallet, err := s.Wallets().GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, wallet.LastWithdrawalAt)
}

func TestGetForUpdate_RequiresTx(t *testing.T) {
	s := New()
	_, err := s.Wallets().GetForUpdate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errNoTx)
}

func TestAssign_OnlyOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := seedRequest(t, s)

	require.NoError(t, s.Requests().Assign(ctx, r.ID, "hero-1", t0))
	err := s.Requests().Assign(ctx, r.ID, "hero-2", t0)

	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	got, _ := s.Requests().GetByID(ctx, r.ID)
	assert.Equal(t, "hero-1", *got.AssignedHeroID)
	assert.Equal(t, domain.StatusAssigned, got.Status)
}

func TestUpdateStatus_CancelClearsAssignee(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := seedRequest(t, s)
	require.NoError(t, s.Requests().Assign(ctx, r.ID, "hero-1", t0))

	require.NoError(t, s.Requests().UpdateStatus(ctx, r.ID, domain.StatusAssigned, domain.StatusCancelled, t0))
	got, _ := s.Requests().GetByID(ctx, r.ID)
	assert.Nil(t, got.AssignedHeroID)

	err := s.Requests().UpdateStatus(ctx, r.ID, domain.StatusAssigned, domain.StatusActive, t0)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAcceptances_UniqueAndSingleChosen(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := seedRequest(t, s)
	h1 := seedHero(t, s, "hero-1")
	h2 := seedHero(t, s, "hero-2")

	require.NoError(t, s.Acceptances().Create(ctx, &domain.Acceptance{ID: uuid.New(), RequestID: r.ID, HeroRecordID: h1.RecordID, AcceptedAt: t0}))
	require.NoError(t, s.Acceptances().Create(ctx, &domain.Acceptance{ID: uuid.New(), RequestID: r.ID, HeroRecordID: h2.RecordID, AcceptedAt: t0}))
	err := s.Acceptances().Create(ctx, &domain.Acceptance{ID: uuid.New(), RequestID: r.ID, HeroRecordID: h1.RecordID, AcceptedAt: t0})
	assert.ErrorIs(t, err, domain.ErrConflict)

	chosen, err := s.Acceptances().MarkChosen(ctx, r.ID, h1.RecordID)
	require.NoError(t, err)
	assert.True(t, chosen.Chosen)

	_, err = s.Acceptances().MarkChosen(ctx, r.ID, h2.RecordID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = s.Acceptances().MarkChosen(ctx, r.ID, domain.NewHeroRecordID())
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = s.Acceptances().Delete(ctx, r.ID, h1.RecordID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, s.Acceptances().Delete(ctx, r.ID, h2.RecordID))
}

func TestTransactions_SettlementIsUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := &domain.HeroWallet{ID: uuid.New(), HeroID: "hero-1"}
	require.NoError(t, s.Wallets().Create(ctx, w))
	reqID := uuid.New()

	insert := func() error {
		return s.Transactions().Insert(ctx, &domain.WalletTransaction{
			ID: uuid.New(), WalletID: w.ID, Type: domain.TxInAppPayment, Amount: decimal.NewFromInt(45),
			Balance: domain.BalanceEarnings, Status: domain.TxCompleted, RequestID: &reqID, CreatedAt: t0,
		})
	}
	require.NoError(t, insert())
	assert.ErrorIs(t, insert(), domain.ErrConflict)
}

func TestWithdrawals_SumPending(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := &domain.HeroWallet{ID: uuid.New(), HeroID: "hero-1"}
	require.NoError(t, s.Wallets().Create(ctx, w))

	first := &domain.WithdrawalRequest{ID: uuid.New(), WalletID: w.ID, Amount: decimal.NewFromInt(30), Status: domain.TxPending, RequestedAt: t0}
	second := &domain.WithdrawalRequest{ID: uuid.New(), WalletID: w.ID, Amount: decimal.NewFromInt(20), Status: domain.TxPending, RequestedAt: t0}
	require.NoError(t, s.Withdrawals().Insert(ctx, first))
	require.NoError(t, s.Withdrawals().Insert(ctx, second))
	require.NoError(t, s.Withdrawals().Finish(ctx, second.ID, domain.TxFailed, "bank rejected", t0))

	sum, err := s.Withdrawals().SumPending(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(30)))

	got, _ := s.Withdrawals().GetByID(ctx, second.ID)
	assert.Equal(t, "bank rejected", got.FailureReason)
	assert.NotNil(t, got.FailedAt)
}
