// Package marketplace holds the request lifecycle and the acceptance ledger.
// The lifecycle is the only writer of request status and of the assigned
// hero; the ledger owns the acceptances heroes record against pending
// requests.
package marketplace

import (
	"context"
	"log"
	"time"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/metrics"
	"github.com/nullityv3/home-hero-sub002/internal/port"
)

type options struct {
	now    func() time.Time
	notify port.Notifier
	policy SettlementPolicy
}

type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithNotifier(n port.Notifier) Option {
	return func(o *options) { o.notify = n }
}

// WithSettlementPolicy replaces the default midpoint pricing of completed jobs.
func WithSettlementPolicy(p SettlementPolicy) Option {
	return func(o *options) { o.policy = p }
}

func buildOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		notify: port.NopNotifier{},
		policy: MidpointPolicy{FeeRate: DefaultFeeRate},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Notifications are best effort: a failure is logged and counted, the state
// change it describes stands.
func (o options) statusChanged(ctx context.Context, evt domain.StatusEvent) {
	if err := o.notify.RequestStatusChanged(ctx, evt); err != nil {
		metrics.NotificationFailures.WithLabelValues("status_changed").Inc()
		log.Printf("[notify][ERROR] request %s %s->%s: %v", evt.RequestID, evt.From, evt.To, err)
	}
}

func (o options) acceptanceCreated(ctx context.Context, evt domain.AcceptanceEvent) {
	if err := o.notify.AcceptanceCreated(ctx, evt); err != nil {
		metrics.NotificationFailures.WithLabelValues("acceptance_created").Inc()
		log.Printf("[notify][ERROR] request %s acceptance by %s: %v", evt.RequestID, evt.HeroID, err)
	}
}
