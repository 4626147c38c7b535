package alerts

import (
	"context"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

// Inline delivers notifications synchronously through the processor, for
// deployments without Redis.
type Inline struct {
	p *Processor
}

func NewInline(p *Processor) *Inline {
	return &Inline{p: p}
}

func (i *Inline) RequestStatusChanged(ctx context.Context, evt domain.StatusEvent) error {
	return i.p.StatusChanged(ctx, evt)
}

func (i *Inline) AcceptanceCreated(ctx context.Context, evt domain.AcceptanceEvent) error {
	return i.p.AcceptanceCreated(ctx, evt)
}
