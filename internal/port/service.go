package port

import (
	"context"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

// Notifier is informed of state changes for UI-side real-time updates. Callers
// treat its errors as log-only: a failed notification never undoes a change.
type Notifier interface {
	RequestStatusChanged(ctx context.Context, evt domain.StatusEvent) error
	AcceptanceCreated(ctx context.Context, evt domain.AcceptanceEvent) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) RequestStatusChanged(context.Context, domain.StatusEvent) error { return nil }

func (NopNotifier) AcceptanceCreated(context.Context, domain.AcceptanceEvent) error { return nil }

// WalletGate is what the request lifecycle needs from the wallet ledger.
type WalletGate interface {
	// EnsureCanAcceptJobs reads the hero's wallet fresh and returns a
	// *domain.InsufficientBalanceError when the fee balance is below the
	// threshold.
	EnsureCanAcceptJobs(ctx context.Context, heroID string) error
	// SettleJob books the earnings or fee of a completed job. It joins the
	// caller's transaction when ctx carries one.
	SettleJob(ctx context.Context, s domain.JobSettlement) error
}
