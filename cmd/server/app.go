package main

import (
	"context"
	"fmt"
	"log"

	"github.com/nullityv3/home-hero-sub002/internal/alerts"
	"github.com/nullityv3/home-hero-sub002/internal/config"
	"github.com/nullityv3/home-hero-sub002/internal/db"
	"github.com/nullityv3/home-hero-sub002/internal/identity"
	"github.com/nullityv3/home-hero-sub002/internal/marketplace"
	"github.com/nullityv3/home-hero-sub002/internal/memstore"
	"github.com/nullityv3/home-hero-sub002/internal/port"
	"github.com/nullityv3/home-hero-sub002/internal/realtime"
	"github.com/nullityv3/home-hero-sub002/internal/user"
	"github.com/nullityv3/home-hero-sub002/internal/wallet"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

// app holds the wired services shared by the subcommands.
type app struct {
	cfg         *config.Config
	store       port.Store
	hub         *realtime.Hub
	processor   *alerts.Processor
	notifier    port.Notifier
	ledger      *wallet.Ledger
	acceptances *marketplace.AcceptanceLedger
	lifecycle   *marketplace.Lifecycle
	users       *user.Service
	closers     []func()
}

func openStore(ctx context.Context, cfg *config.Config, kind string) (port.Store, func(), error) {
	switch kind {
	case storeMemory:
		log.Println("using in-memory store; data is lost on exit")
		return memstore.New(), func() {}, nil
	case storePostgres:
		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return db.NewStore(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q (want %s or %s)", kind, storeMemory, storePostgres)
}

func newApp(ctx context.Context, cfg *config.Config, storeKind string) (*app, error) {
	store, closeStore, err := openStore(ctx, cfg, storeKind)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, store: store, hub: realtime.NewHub(), closers: []func(){closeStore}}
	a.processor = alerts.NewProcessor(store.Notifications(), a.hub)

	switch cfg.Notify.Mode {
	case config.NotifyAsynq:
		em := alerts.NewEmitter(cfg.Redis.Addr)
		a.closers = append(a.closers, func() { _ = em.Close() })
		a.notifier = em
	case config.NotifyInline:
		a.notifier = alerts.NewInline(a.processor)
	default:
		a.notifier = port.NopNotifier{}
	}

	a.ledger = wallet.NewLedger(store, wallet.Defaults{
		FeeThreshold:            cfg.Wallet.Threshold(),
		WithdrawalCooldownHours: cfg.Wallet.WithdrawalCooldownHours,
	})
	ids := identity.NewMapper(store.Heroes())
	opts := []marketplace.Option{
		marketplace.WithNotifier(a.notifier),
		marketplace.WithSettlementPolicy(marketplace.MidpointPolicy{FeeRate: cfg.Settlement.Rate()}),
	}
	a.acceptances = marketplace.NewAcceptanceLedger(store, ids, a.ledger, opts...)
	a.lifecycle = marketplace.NewLifecycle(store, ids, a.acceptances, a.ledger, opts...)
	a.users = user.NewService(store, a.ledger, cfg.Cache.ProfileTTL)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// ready reports whether the store is reachable.
func (a *app) ready(ctx context.Context) error {
	if p, ok := a.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
