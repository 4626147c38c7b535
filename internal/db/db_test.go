package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

func TestMapErr_UniqueViolationBecomesConflict(t *testing.T) {
	err := mapErr(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "request_acceptances_request_hero_key"}, "acceptance")

	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "hero already accepted this request", ce.Reason)
}

func TestMapErr_UnknownConstraint(t *testing.T) {
	wrapped := fmt.Errorf("exec: %w", &pgconn.PgError{Code: checkViolation, ConstraintName: "x_check"})
	err := mapErr(wrapped, "insert")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "x_check")
}

func TestMapErr_ForeignKey(t *testing.T) {
	err := mapErr(&pgconn.PgError{Code: fkViolation}, "acceptance")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMapErr_Passthrough(t *testing.T) {
	assert.NoError(t, mapErr(nil, "x"))

	boom := errors.New("connection reset")
	err := mapErr(boom, "get request")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrConflict))
}

func TestGetForUpdate_OutsideTx(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Wallets().GetForUpdate(context.Background(), [16]byte{})
	assert.Error(t, err)
}

func TestLimitOrAll(t *testing.T) {
	assert.Nil(t, limitOrAll(0))
	require.NotNil(t, limitOrAll(5))
	assert.Equal(t, 5, *limitOrAll(5))
}

func TestSchema_CoversTables(t *testing.T) {
	names := make([]string, 0, len(schema))
	for _, s := range schema {
		names = append(names, s.name)
	}
	assert.Equal(t, []string{
		"heroes", "service_requests", "request_acceptances", "hero_wallets",
		"wallet_transactions", "withdrawal_requests", "notifications",
	}, names)
}
