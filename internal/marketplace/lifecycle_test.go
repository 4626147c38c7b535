package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/identity"
	"github.com/nullityv3/home-hero-sub002/internal/memstore"
	"github.com/nullityv3/home-hero-sub002/internal/port"
	"github.com/nullityv3/home-hero-sub002/internal/wallet"
)

var epoch = time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return epoch }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) RequestStatusChanged(ctx context.Context, evt domain.StatusEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *mockNotifier) AcceptanceCreated(ctx context.Context, evt domain.AcceptanceEvent) error {
	return m.Called(ctx, evt).Error(0)
}

type env struct {
	store       port.Store
	mem         *memstore.Store
	ledger      *wallet.Ledger
	acceptances *AcceptanceLedger
	lifecycle   *Lifecycle
}

// newEnv wires the services over a fresh in-memory store. wrap lets a test
// decorate the store before the services see it.
func newEnv(t *testing.T, wrap func(port.Store) port.Store, opts ...Option) *env {
	t.Helper()
	mem := memstore.New()
	var store port.Store = mem
	if wrap != nil {
		store = wrap(mem)
	}
	ledger := wallet.NewLedger(store, wallet.Defaults{FeeThreshold: dec("-100"), WithdrawalCooldownHours: 24}, wallet.WithClock(fixedNow))
	ids := identity.NewMapper(store.Heroes())
	opts = append([]Option{WithClock(fixedNow)}, opts...)
	acc := NewAcceptanceLedger(store, ids, ledger, opts...)
	return &env{
		store:       store,
		mem:         mem,
		ledger:      ledger,
		acceptances: acc,
		lifecycle:   NewLifecycle(store, ids, acc, ledger, opts...),
	}
}

func (e *env) hero(t *testing.T, userID string) domain.HeroRecordID {
	t.Helper()
	ctx := context.Background()
	rec := domain.NewHeroRecordID()
	require.NoError(t, e.mem.Heroes().Create(ctx, &domain.Hero{RecordID: rec, UserID: userID, DisplayName: "Hero " + userID, Skills: []string{"cleaning"}}))
	_, err := e.ledger.CreateWallet(ctx, userID)
	require.NoError(t, err)
	return rec
}

func validInput() domain.NewRequest {
	return domain.NewRequest{
		Title:         "Fix the sink",
		Description:   "Kitchen sink leaks",
		Category:      domain.CategoryRepairs,
		Location:      "12 Main St",
		ScheduledDate: epoch.Add(48 * time.Hour),
		DurationHours: 2,
		Budget:        domain.Budget{Min: dec("50"), Max: dec("100")},
	}
}

func (e *env) request(t *testing.T, requester string) *domain.ServiceRequest {
	t.Helper()
	r, err := e.lifecycle.Create(context.Background(), requester, validInput())
	require.NoError(t, err)
	return r
}

// assigned returns a request created by "civ" and assigned to "p1".
func (e *env) assigned(t *testing.T) *domain.ServiceRequest {
	t.Helper()
	ctx := context.Background()
	e.hero(t, "p1")
	r := e.request(t, "civ")
	_, err := e.acceptances.ExpressInterest(ctx, r.ID, "p1")
	require.NoError(t, err)
	r, err = e.lifecycle.ChooseProvider(ctx, r.ID, "p1", "civ")
	require.NoError(t, err)
	return r
}

func TestCreate_PendingWithNoProvider(t *testing.T) {
	e := newEnv(t, nil)
	r := e.request(t, "civ")

	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Nil(t, r.AssignedHeroID)
	assert.Equal(t, domain.PaymentInApp, r.PaymentMethod)

	again := e.request(t, "civ")
	assert.NotEqual(t, r.ID, again.ID, "creation is not idempotent")
}

func TestCreate_ClampsDuration(t *testing.T) {
	e := newEnv(t, nil)
	for in, want := range map[int]int{0: 1, -3: 1, 24: 24, 30: 24, 5: 5} {
		req := validInput()
		req.DurationHours = in
		r, err := e.lifecycle.Create(context.Background(), "civ", req)
		require.NoError(t, err)
		assert.Equal(t, want, r.DurationHours, "duration %d", in)
	}
}

func TestCreate_Validation(t *testing.T) {
	e := newEnv(t, nil)
	cases := []struct {
		name  string
		edit  func(*domain.NewRequest)
		field string
	}{
		{"missing title", func(r *domain.NewRequest) { r.Title = "" }, "title"},
		{"long title", func(r *domain.NewRequest) { r.Title = strings.Repeat("x", 101) }, "title"},
		{"long description", func(r *domain.NewRequest) { r.Description = strings.Repeat("x", 2001) }, "description"},
		{"bad category", func(r *domain.NewRequest) { r.Category = "gardening" }, "category"},
		{"past schedule", func(r *domain.NewRequest) { r.ScheduledDate = epoch.Add(-time.Minute) }, "scheduled_date"},
		{"now schedule", func(r *domain.NewRequest) { r.ScheduledDate = epoch }, "scheduled_date"},
		{"negative min", func(r *domain.NewRequest) { r.Budget.Min = dec("-1") }, "budget.min"},
		{"max below min", func(r *domain.NewRequest) { r.Budget.Max = dec("49.99") }, "budget.max"},
		{"bad payment", func(r *domain.NewRequest) { r.PaymentMethod = "card" }, "payment_method"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.edit(&in)
			_, err := e.lifecycle.Create(context.Background(), "civ", in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

// Scenario A.
func TestChooseProvider_AssignsChosenHero(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.hero(t, "p1")
	e.hero(t, "p2")
	r := e.request(t, "civ")

	_, err := e.acceptances.ExpressInterest(ctx, r.ID, "p1")
	require.NoError(t, err)
	_, err = e.acceptances.ExpressInterest(ctx, r.ID, "p2")
	require.NoError(t, err)

	got, err := e.lifecycle.ChooseProvider(ctx, r.ID, "p1", "civ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, got.Status)
	require.NotNil(t, got.AssignedHeroID)
	assert.Equal(t, "p1", *got.AssignedHeroID)

	views, err := e.acceptances.ListAcceptances(ctx, r.ID, "civ")
	require.NoError(t, err)
	require.Len(t, views, 2)
	byHero := map[string]bool{}
	for _, v := range views {
		byHero[v.Hero.HeroID] = v.Chosen
	}
	assert.True(t, byHero["p1"])
	assert.False(t, byHero["p2"])
}

// Scenario B.
func TestChooseProvider_SecondChoiceConflicts(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.hero(t, "p1")
	e.hero(t, "p2")
	r := e.request(t, "civ")
	_, err := e.acceptances.ExpressInterest(ctx, r.ID, "p1")
	require.NoError(t, err)
	_, err = e.acceptances.ExpressInterest(ctx, r.ID, "p2")
	require.NoError(t, err)
	_, err = e.lifecycle.ChooseProvider(ctx, r.ID, "p1", "civ")
	require.NoError(t, err)

	_, err = e.lifecycle.ChooseProvider(ctx, r.ID, "p2", "civ")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.lifecycle.ChooseProvider(ctx, r.ID, "p1", "civ")
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := e.store.Requests().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", *got.AssignedHeroID)
	views, err := e.acceptances.ListAcceptances(ctx, r.ID, "civ")
	require.NoError(t, err)
	chosen := 0
	for _, v := range views {
		if v.Chosen {
			chosen++
		}
	}
	assert.Equal(t, 1, chosen)
}

func TestChooseProvider_Guards(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.hero(t, "p1")
	e.hero(t, "p2")
	r := e.request(t, "civ")
	_, err := e.acceptances.ExpressInterest(ctx, r.ID, "p1")
	require.NoError(t, err)

	_, err = e.lifecycle.ChooseProvider(ctx, r.ID, "p1", "someone-else")
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = e.lifecycle.ChooseProvider(ctx, r.ID, "ghost", "civ")
	assert.ErrorIs(t, err, domain.ErrNotFound, "no hero record")

	_, err = e.lifecycle.ChooseProvider(ctx, r.ID, "p2", "civ")
	assert.ErrorIs(t, err, domain.ErrNotFound, "hero never accepted")

	_, err = e.lifecycle.ChooseProvider(ctx, uuid.New(), "p1", "civ")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := e.store.Requests().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.AssignedHeroID)
}

func TestChooseProvider_ConcurrentChoicesAssignOnce(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	heroes := []string{"p1", "p2", "p3", "p4", "p5"}
	r := e.request(t, "civ")
	for _, h := range heroes {
		e.hero(t, h)
		_, err := e.acceptances.ExpressInterest(ctx, r.ID, h)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make(chan error, len(heroes))
	for _, h := range heroes {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			_, err := e.lifecycle.ChooseProvider(ctx, r.ID, h, "civ")
			results <- err
		}(h)
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, ok)

	got, err := e.store.Requests().GetByID(ctx, r.ID)
	require.NoError(t, err)
	views, err := e.acceptances.ListAcceptances(ctx, r.ID, "civ")
	require.NoError(t, err)
	for _, v := range views {
		assert.Equal(t, v.Hero.HeroID == *got.AssignedHeroID, v.Chosen)
	}
}

type flakyRequests struct {
	port.RequestRepository
	assignErr error
}

func (f flakyRequests) Assign(context.Context, uuid.UUID, string, time.Time) error {
	return f.assignErr
}

type flakyAcceptances struct {
	port.AcceptanceRepository
	unmarkErr error
}

func (f flakyAcceptances) UnmarkChosen(ctx context.Context, id uuid.UUID) error {
	if f.unmarkErr != nil {
		return f.unmarkErr
	}
	return f.AcceptanceRepository.UnmarkChosen(ctx, id)
}

type flakyStore struct {
	port.Store
	requests    port.RequestRepository
	acceptances port.AcceptanceRepository
}

func (f flakyStore) Requests() port.RequestRepository       { return f.requests }
func (f flakyStore) Acceptances() port.AcceptanceRepository { return f.acceptances }

func flaky(assignErr, unmarkErr error) func(port.Store) port.Store {
	return func(s port.Store) port.Store {
		return flakyStore{
			Store:       s,
			requests:    flakyRequests{RequestRepository: s.Requests(), assignErr: assignErr},
			acceptances: flakyAcceptances{AcceptanceRepository: s.Acceptances(), unmarkErr: unmarkErr},
		}
	}
}

func TestChooseProvider_AssignFailureResetsChosen(t *testing.T) {
	assignErr := domain.Conflict("request no longer available")
	e := newEnv(t, flaky(assignErr, nil))
	ctx := context.Background()
	e.hero(t, "p1")
	r := e.request(t, "civ")
	_, err := e.acceptances.ExpressInterest(ctx, r.ID, "p1")
	require.NoError(t, err)

	_, err = e.lifecycle.ChooseProvider(ctx, r.ID, "p1", "civ")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrRollbackFailure)

	views, err := e.acceptances.ListAcceptances(ctx, r.ID, "civ")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].Chosen)

	got, err := e.mem.Requests().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.AssignedHeroID)
}

func TestChooseProvider_FailedCompensationIsSurfaced(t *testing.T) {
	e := newEnv(t, flaky(errors.New("connection reset"), errors.New("connection refused")))
	ctx := context.Background()
	e.hero(t, "p1")
	r := e.request(t, "civ")
	acc, err := e.acceptances.ExpressInterest(ctx, r.ID, "p1")
	require.NoError(t, err)

	_, err = e.lifecycle.ChooseProvider(ctx, r.ID, "p1", "civ")
	var rf *domain.RollbackFailureError
	require.ErrorAs(t, err, &rf)
	assert.ErrorIs(t, err, domain.ErrRollbackFailure)
	assert.Equal(t, r.ID, rf.RequestID)
	assert.Equal(t, acc.ID, rf.AcceptanceID)
	assert.EqualError(t, rf.Primary, "connection reset")
	assert.EqualError(t, rf.Rollback, "connection refused")
}

func TestListAvailable_OnlyOpenRequests(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	taken := e.assigned(t)
	open := e.request(t, "civ")
	cancelled := e.request(t, "civ")
	_, err := e.lifecycle.Transition(ctx, cancelled.ID, "cancelled", "civ")
	require.NoError(t, err)

	list, err := e.lifecycle.ListAvailable(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
	for _, r := range list {
		assert.Nil(t, r.AssignedHeroID)
		assert.NotEqual(t, taken.ID, r.ID)
	}
}

func TestTransition_StateMachine(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	r := e.assigned(t)

	_, err := e.lifecycle.Transition(ctx, r.ID, "active", "civ")
	assert.ErrorIs(t, err, domain.ErrAuthorization, "requester cannot start")

	_, err = e.lifecycle.Transition(ctx, r.ID, "pending", "p1")
	assert.ErrorIs(t, err, domain.ErrValidation, "no going back")

	_, err = e.lifecycle.Transition(ctx, r.ID, "done", "p1")
	assert.ErrorIs(t, err, domain.ErrValidation, "unknown status")

	got, err := e.lifecycle.Transition(ctx, r.ID, "active", "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, "p1", *got.AssignedHeroID)

	_, err = e.lifecycle.Transition(ctx, r.ID, "completed", "civ")
	assert.ErrorIs(t, err, domain.ErrAuthorization, "only the hero completes")

	got, err = e.lifecycle.Transition(ctx, r.ID, "completed", "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	_, err = e.lifecycle.Transition(ctx, r.ID, "cancelled", "civ")
	assert.ErrorIs(t, err, domain.ErrConflict, "terminal")
}

func TestTransition_PendingCannotBeAssignedDirectly(t *testing.T) {
	e := newEnv(t, nil)
	r := e.request(t, "civ")
	_, err := e.lifecycle.Transition(context.Background(), r.ID, "assigned", "civ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.lifecycle.Transition(context.Background(), r.ID, "completed", "civ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTransition_CancelClearsAssignee(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	r := e.assigned(t)

	_, err := e.lifecycle.Transition(ctx, r.ID, "cancelled", "p1")
	assert.ErrorIs(t, err, domain.ErrAuthorization, "only the requester cancels")

	got, err := e.lifecycle.Transition(ctx, r.ID, "cancelled", "civ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Nil(t, got.AssignedHeroID)
}

func TestTransition_CompletionSettlesInApp(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	r := e.assigned(t)

	_, err := e.lifecycle.Transition(ctx, r.ID, "completed", "p1")
	require.NoError(t, err)

	w, err := e.ledger.GetWallet(ctx, "p1")
	require.NoError(t, err)
	// midpoint of 50..100 is 75, 10% fee
	assert.True(t, w.EarningsBalance.Equal(dec("67.5")), w.EarningsBalance.String())
	assert.True(t, w.FeeBalance.IsZero())

	txs, err := e.ledger.ListTransactions(ctx, "p1", 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxInAppPayment, txs[0].Type)
	require.NotNil(t, txs[0].RequestID)
	assert.Equal(t, r.ID, *txs[0].RequestID)

	h, err := e.store.Heroes().GetByUserID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, h.JobsCompleted)
}

func TestTransition_CompletionChargesCashFee(t *testing.T) {
	e := newEnv(t, nil, WithSettlementPolicy(FixedPolicy{Amount: dec("200"), FeeRate: dec("0.15")}))
	ctx := context.Background()
	e.hero(t, "p1")
	in := validInput()
	in.PaymentMethod = domain.PaymentCash
	r, err := e.lifecycle.Create(ctx, "civ", in)
	require.NoError(t, err)
	_, err = e.acceptances.ExpressInterest(ctx, r.ID, "p1")
	require.NoError(t, err)
	_, err = e.lifecycle.ChooseProvider(ctx, r.ID, "p1", "civ")
	require.NoError(t, err)

	_, err = e.lifecycle.Transition(ctx, r.ID, "completed", "p1")
	require.NoError(t, err)

	w, err := e.ledger.GetWallet(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, w.FeeBalance.Equal(dec("-30")))
	assert.True(t, w.EarningsBalance.IsZero())
}

type failingGate struct {
	port.WalletGate
	err error
}

func (g failingGate) SettleJob(context.Context, domain.JobSettlement) error { return g.err }

func TestTransition_SettlementFailureKeepsStatus(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	r := e.assigned(t)
	ids := identity.NewMapper(e.store.Heroes())
	lc := NewLifecycle(e.store, ids, e.acceptances, failingGate{WalletGate: e.ledger, err: errors.New("ledger down")}, WithClock(fixedNow))

	_, err := lc.Transition(ctx, r.ID, "completed", "p1")
	require.Error(t, err)

	got, err := e.store.Requests().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, got.Status)
	h, err := e.store.Heroes().GetByUserID(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, h.JobsCompleted)
}

func TestNotifications_BestEffort(t *testing.T) {
	n := &mockNotifier{}
	n.On("AcceptanceCreated", mock.Anything, mock.MatchedBy(func(evt domain.AcceptanceEvent) bool {
		return evt.HeroID == "p1" && evt.RequesterID == "civ"
	})).Return(errors.New("redis unavailable")).Once()
	n.On("RequestStatusChanged", mock.Anything, mock.MatchedBy(func(evt domain.StatusEvent) bool {
		return evt.From == domain.StatusPending && evt.To == domain.StatusAssigned && *evt.AssignedHeroID == "p1"
	})).Return(errors.New("redis unavailable")).Once()

	e := newEnv(t, nil, WithNotifier(n))
	r := e.assigned(t)

	assert.Equal(t, domain.StatusAssigned, r.Status)
	n.AssertExpectations(t)
}

func TestUpdate_TypedCommand(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	r := e.request(t, "civ")

	title := "Fix the kitchen sink"
	low := dec("120")
	_, err := e.lifecycle.Update(ctx, r.ID, "p1", domain.RequestUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = e.lifecycle.Update(ctx, r.ID, "civ", domain.RequestUpdate{BudgetMin: &low})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "budget.max", ve.Field)

	_, err = e.lifecycle.Update(ctx, r.ID, "civ", domain.RequestUpdate{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := e.lifecycle.Update(ctx, r.ID, "civ", domain.RequestUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.True(t, got.Budget.Max.Equal(dec("100")))

	taken := e.assigned(t)
	_, err = e.lifecycle.Update(ctx, taken.ID, "civ", domain.RequestUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGet_Visibility(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.hero(t, "p2")
	open := e.request(t, "civ")
	taken := e.assigned(t)

	_, err := e.lifecycle.Get(ctx, open.ID, "p2")
	assert.NoError(t, err, "heroes browse open requests")
	_, err = e.lifecycle.Get(ctx, open.ID, "stranger")
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	_, err = e.lifecycle.Get(ctx, taken.ID, "p2")
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	_, err = e.lifecycle.Get(ctx, taken.ID, "p1")
	assert.NoError(t, err)
	_, err = e.lifecycle.Get(ctx, taken.ID, "civ")
	assert.NoError(t, err)

	mine, err := e.lifecycle.ListMine(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, mine.Requested)
	require.Len(t, mine.Assigned, 1)
	assert.Equal(t, taken.ID, mine.Assigned[0].ID)
}

func TestListAll(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.assigned(t)
	e.request(t, "civ")

	all, err := e.lifecycle.ListAll(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	pending, err := e.lifecycle.ListAll(ctx, "pending", 0, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	_, err = e.lifecycle.ListAll(ctx, "open", 0, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMidpointPolicy_RoundsToCents(t *testing.T) {
	s := MidpointPolicy{FeeRate: dec("0.10")}.Settle(&domain.ServiceRequest{Budget: domain.Budget{Min: dec("10.01"), Max: dec("20.02")}})
	assert.True(t, s.Amount.Equal(dec("15.02")), s.Amount.String())
	assert.True(t, s.PlatformFee.Equal(dec("1.5")), s.PlatformFee.String())
}

func TestAcceptanceView_HidesRecordID(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	rec := e.hero(t, "p1")
	r := e.request(t, "civ")
	_, err := e.acceptances.ExpressInterest(ctx, r.ID, "p1")
	require.NoError(t, err)

	views, err := e.acceptances.ListAcceptances(ctx, r.ID, "civ")
	require.NoError(t, err)
	raw, err := json.Marshal(views)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), rec.String())
	assert.Contains(t, string(raw), `"hero_id":"p1"`)
}
