// Package identity translates between a hero's public identity and the
// internal hero record id. Nothing outside the backend ever sees a record id.
package identity

import (
	"context"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/port"
)

type Mapper struct {
	heroes port.HeroRepository
}

func NewMapper(heroes port.HeroRepository) *Mapper {
	return &Mapper{heroes: heroes}
}

// PublicToInternal resolves a public identity to its hero record id. It
// returns a *domain.NotFoundError when the person has no hero record.
func (m *Mapper) PublicToInternal(ctx context.Context, publicID string) (domain.HeroRecordID, error) {
	if publicID == "" {
		return domain.HeroRecordID{}, domain.NotFound("hero", "")
	}
	h, err := m.heroes.GetByUserID(ctx, publicID)
	if err != nil {
		return domain.HeroRecordID{}, err
	}
	return h.RecordID, nil
}

func (m *Mapper) InternalToPublic(ctx context.Context, id domain.HeroRecordID) (string, error) {
	h, err := m.heroes.GetByRecordID(ctx, id)
	if err != nil {
		return "", err
	}
	return h.UserID, nil
}

// Profile resolves a record id straight to the public-safe profile.
func (m *Mapper) Profile(ctx context.Context, id domain.HeroRecordID) (domain.HeroProfile, error) {
	h, err := m.heroes.GetByRecordID(ctx, id)
	if err != nil {
		return domain.HeroProfile{}, err
	}
	return h.Profile(), nil
}
