package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/memstore"
)

func TestMapper_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	rec := domain.NewHeroRecordID()
	require.NoError(t, store.Heroes().Create(ctx, &domain.Hero{RecordID: rec, UserID: "ada", DisplayName: "Ada", Skills: []string{"tutoring"}}))
	m := NewMapper(store.Heroes())

	got, err := m.PublicToInternal(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	pub, err := m.InternalToPublic(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "ada", pub)

	p, err := m.Profile(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "ada", p.HeroID)
	assert.Equal(t, "Ada", p.DisplayName)
}

func TestMapper_UnknownIdentities(t *testing.T) {
	ctx := context.Background()
	m := NewMapper(memstore.New().Heroes())

	_, err := m.PublicToInternal(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.PublicToInternal(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.InternalToPublic(ctx, domain.NewHeroRecordID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.Profile(ctx, domain.NewHeroRecordID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
