package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/memstore"
	"github.com/nullityv3/home-hero-sub002/internal/wallet"
)

func newService(t *testing.T, ttl time.Duration) (*Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	ledger := wallet.NewLedger(store, wallet.Defaults{FeeThreshold: decimal.NewFromInt(-100), WithdrawalCooldownHours: 24})
	return NewService(store, ledger, ttl), store
}

func TestRegisterHero_OpensWallet(t *testing.T) {
	svc, store := newService(t, 0)
	ctx := context.Background()

	h, w, err := svc.RegisterHero(ctx, "u1", domain.HeroProfileInput{DisplayName: "Ada", Skills: []string{"repairs"}})
	require.NoError(t, err)
	assert.Equal(t, "u1", h.UserID)
	assert.Equal(t, "u1", w.HeroID)
	assert.True(t, w.FeeThreshold.Equal(decimal.NewFromInt(-100)))

	got, err := store.Wallets().GetByHeroID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)

	_, _, err = svc.RegisterHero(ctx, "u1", domain.HeroProfileInput{DisplayName: "Ada again"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

type brokenWallets struct{ Wallets }

func (brokenWallets) CreateWallet(context.Context, string) (*domain.HeroWallet, error) {
	return nil, errors.New("insert failed")
}

func TestRegisterHero_NoHeroWithoutWallet(t *testing.T) {
	store := memstore.New()
	svc := NewService(store, brokenWallets{}, 0)

	_, _, err := svc.RegisterHero(context.Background(), "u1", domain.HeroProfileInput{DisplayName: "Ada"})
	require.Error(t, err)

	_, err = store.Heroes().GetByUserID(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterHero_Validation(t *testing.T) {
	svc, _ := newService(t, 0)
	_, _, err := svc.RegisterHero(context.Background(), "u1", domain.HeroProfileInput{DisplayName: "Ada", Skills: []string{"juggling"}})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "skills[0]", ve.Field)

	_, _, err = svc.RegisterHero(context.Background(), "u1", domain.HeroProfileInput{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "display_name", ve.Field)
}

func TestPublicProfile_CachedUntilUpdate(t *testing.T) {
	svc, store := newService(t, time.Hour)
	ctx := context.Background()
	_, _, err := svc.RegisterHero(ctx, "u1", domain.HeroProfileInput{DisplayName: "Ada"})
	require.NoError(t, err)

	p, err := svc.GetPublicProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.DisplayName)

	require.NoError(t, store.Heroes().IncrementJobsCompleted(ctx, "u1"))
	p, err = svc.GetPublicProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.JobsCompleted, "served from cache")

	name := "Ada L."
	_, err = svc.UpdateHeroProfile(ctx, "u1", domain.HeroProfileUpdate{DisplayName: &name})
	require.NoError(t, err)
	p, err = svc.GetPublicProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", p.DisplayName)
	assert.Equal(t, 1, p.JobsCompleted)

	_, err = svc.GetPublicProfile(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPublicProfile_ZeroTTLReadsFresh(t *testing.T) {
	svc, store := newService(t, 0)
	ctx := context.Background()
	_, _, err := svc.RegisterHero(ctx, "u1", domain.HeroProfileInput{DisplayName: "Ada"})
	require.NoError(t, err)
	_, err = svc.GetPublicProfile(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, store.Heroes().IncrementJobsCompleted(ctx, "u1"))
	p, err := svc.GetPublicProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.JobsCompleted)
}

func TestPublicProfile_EntryExpires(t *testing.T) {
	svc, store := newService(t, 20*time.Millisecond)
	ctx := context.Background()
	_, _, err := svc.RegisterHero(ctx, "u1", domain.HeroProfileInput{DisplayName: "Ada"})
	require.NoError(t, err)
	_, err = svc.GetPublicProfile(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, store.Heroes().IncrementJobsCompleted(ctx, "u1"))

	assert.Eventually(t, func() bool {
		p, err := svc.GetPublicProfile(ctx, "u1")
		return err == nil && p.JobsCompleted == 1
	}, time.Second, 10*time.Millisecond)
}

func TestMe(t *testing.T) {
	svc, _ := newService(t, 0)
	ctx := context.Background()

	me, err := svc.Me(ctx, "civ", "user")
	require.NoError(t, err)
	assert.False(t, me.IsHero)
	assert.Nil(t, me.CanAcceptJobs)

	_, _, err = svc.RegisterHero(ctx, "u1", domain.HeroProfileInput{DisplayName: "Ada"})
	require.NoError(t, err)
	me, err = svc.Me(ctx, "u1", "user")
	require.NoError(t, err)
	assert.True(t, me.IsHero)
	require.NotNil(t, me.CanAcceptJobs)
	assert.True(t, *me.CanAcceptJobs)
}

func TestHandler_RegisterAndProfile(t *testing.T) {
	svc, _ := newService(t, 0)
	e := echo.New()
	NewHandler(svc).Register(e.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", "u1")
			return next(c)
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/heroes", strings.NewReader(`{"display_name":"Ada","skills":["cleaning"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "record_id")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/heroes/u1/profile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hero_id":"u1"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/heroes/u2/profile", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
