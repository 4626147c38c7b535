// Package user manages hero records: registration, which also opens the
// hero's wallet, and the public profile other parties see.
package user

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/port"
)

// Wallets is the part of the wallet ledger registration and /me need.
type Wallets interface {
	CreateWallet(ctx context.Context, heroID string) (*domain.HeroWallet, error)
	GetWallet(ctx context.Context, heroID string) (*domain.HeroWallet, error)
}

type Service struct {
	store    port.Store
	wallets  Wallets
	profiles *expirable.LRU[string, domain.HeroProfile] // nil when caching is off
	validate *domain.Validator
	now      func() time.Time
}

// NewService caches public profiles for profileTTL; zero disables the cache.
func NewService(store port.Store, wallets Wallets, profileTTL time.Duration) *Service {
	s := &Service{
		store:    store,
		wallets:  wallets,
		validate: domain.NewValidator(nil),
		now:      time.Now,
	}
	if profileTTL > 0 {
		s.profiles = expirable.NewLRU[string, domain.HeroProfile](4096, nil, profileTTL)
	}
	return s
}

// RegisterHero creates the caller's hero record and wallet in one store
// transaction.
func (s *Service) RegisterHero(ctx context.Context, userID string, in domain.HeroProfileInput) (*domain.Hero, *domain.HeroWallet, error) {
	if userID == "" {
		return nil, nil, domain.Forbidden("caller identity required")
	}
	if err := s.validate.Struct(&in); err != nil {
		return nil, nil, err
	}
	now := s.now().UTC()
	h := &domain.Hero{
		RecordID:    domain.NewHeroRecordID(),
		UserID:      userID,
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		AvatarURL:   in.AvatarURL,
		Skills:      in.Skills,
		Rating:      decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if h.Skills == nil {
		h.Skills = []string{}
	}
	var w *domain.HeroWallet
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.store.Heroes().Create(ctx, h); err != nil {
			return err
		}
		var err error
		w, err = s.wallets.CreateWallet(ctx, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[user] hero registered: %s", userID)
	return h, w, nil
}

func (s *Service) UpdateHeroProfile(ctx context.Context, userID string, upd domain.HeroProfileUpdate) (*domain.HeroProfile, error) {
	if err := s.validate.Struct(&upd); err != nil {
		return nil, err
	}
	h, err := s.store.Heroes().GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	upd.Apply(h)
	h.UpdatedAt = s.now().UTC()
	if err := s.store.Heroes().Update(ctx, h); err != nil {
		return nil, err
	}
	if s.profiles != nil {
		s.profiles.Remove(userID)
	}
	p := h.Profile()
	return &p, nil
}

// GetPublicProfile is display-only and may be served from cache.
func (s *Service) GetPublicProfile(ctx context.Context, userID string) (domain.HeroProfile, error) {
	if s.profiles != nil {
		if p, ok := s.profiles.Get(userID); ok {
			return p, nil
		}
	}
	h, err := s.store.Heroes().GetByUserID(ctx, userID)
	if err != nil {
		return domain.HeroProfile{}, err
	}
	p := h.Profile()
	if s.profiles != nil {
		s.profiles.Add(userID, p)
	}
	return p, nil
}

// Me summarises the caller. Hero and wallet fields are read fresh.
type Me struct {
	UserID        string              `json:"user_id"`
	Role          string              `json:"role"`
	IsHero        bool                `json:"is_hero"`
	Hero          *domain.HeroProfile `json:"hero,omitempty"`
	CanAcceptJobs *bool               `json:"can_accept_jobs,omitempty"`
}

func (s *Service) Me(ctx context.Context, userID, role string) (*Me, error) {
	me := &Me{UserID: userID, Role: role}
	h, err := s.store.Heroes().GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return me, nil
	}
	if err != nil {
		return nil, err
	}
	p := h.Profile()
	me.IsHero = true
	me.Hero = &p
	w, err := s.wallets.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok := w.CanAcceptJobs()
	me.CanAcceptJobs = &ok
	return me, nil
}
