package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/port"
	"github.com/nullityv3/home-hero-sub002/internal/realtime"
)

// deliveryIDs derives notification ids, so a redelivered task maps onto the
// rows it already wrote.
var deliveryIDs = uuid.MustParse("8d6f2c1e-4b7a-5e39-9a0c-3f1d2b6e7a45")

// Broadcaster is the realtime fan-out the processor pushes to.
type Broadcaster interface {
	BroadcastToUser(userID string, evt realtime.Event)
}

type Processor struct {
	notifications port.NotificationRepository
	hub           Broadcaster
	now           func() time.Time
}

// NewProcessor returns a processor; hub may be nil when no websocket clients
// are served by this process.
func NewProcessor(notifications port.NotificationRepository, hub Broadcaster) *Processor {
	return &Processor{notifications: notifications, hub: hub, now: time.Now}
}

// NewServeMux routes the realtime tasks to p.
func NewServeMux(p *Processor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskStatusChanged, p.handleStatusChanged)
	mux.HandleFunc(TaskAcceptanceCreated, p.handleAcceptanceCreated)
	return mux
}

// RunWorker consumes the realtime queue until ctx is done.
func RunWorker(ctx context.Context, redisAddr string, p *Processor) error {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{QueueRealtime: 10},
	})
	if err := srv.Start(NewServeMux(p)); err != nil {
		return err
	}
	log.Printf("Asynq worker started (addr=%s)", redisAddr)
	<-ctx.Done()
	srv.Shutdown()
	return nil
}

func (p *Processor) handleStatusChanged(ctx context.Context, t *asynq.Task) error {
	var payload StatusChangedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return p.StatusChanged(ctx, payload.Event)
}

func (p *Processor) handleAcceptanceCreated(ctx context.Context, t *asynq.Task) error {
	var payload AcceptanceCreatedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return p.AcceptanceCreated(ctx, payload.Event)
}

// StatusChanged notifies the parties of the request other than the one who
// made the change.
func (p *Processor) StatusChanged(ctx context.Context, evt domain.StatusEvent) error {
	recipients := []string{evt.RequesterID}
	if evt.AssignedHeroID != nil {
		recipients = append(recipients, *evt.AssignedHeroID)
	}
	title := "Request " + string(evt.To)
	body := fmt.Sprintf("Your request moved from %s to %s.", evt.From, evt.To)
	ref := evt.RequestID
	key := fmt.Sprintf("%s|%s|%s|%s|%d", TypeStatusChanged, evt.RequestID, evt.From, evt.To, evt.At.UnixNano())
	var errs []error
	for _, uid := range recipients {
		if uid == evt.ChangedBy {
			continue
		}
		if err := p.deliver(ctx, key, uid, TypeStatusChanged, title, body, &ref, evt); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	log.Printf("[notify] status change delivered -> request=%s to=%s", evt.RequestID, evt.To)
	return nil
}

// AcceptanceCreated tells the requester a hero is interested.
func (p *Processor) AcceptanceCreated(ctx context.Context, evt domain.AcceptanceEvent) error {
	ref := evt.RequestID
	key := fmt.Sprintf("%s|%s|%s", TypeAcceptanceCreated, evt.RequestID, evt.HeroID)
	if err := p.deliver(ctx, key, evt.RequesterID, TypeAcceptanceCreated, "New offer",
		"A hero wants to help with your request.", &ref, evt); err != nil {
		return err
	}
	log.Printf("[notify] acceptance delivered -> request=%s hero=%s", evt.RequestID, evt.HeroID)
	return nil
}

// deliver stores one notification per (key, recipient) and pushes it to the
// hub. A row that already exists was delivered by an earlier attempt.
func (p *Processor) deliver(ctx context.Context, key, userID, ntype, title, body string, ref *uuid.UUID, data any) error {
	meta, err := json.Marshal(data)
	if err != nil {
		return err
	}
	n := &domain.Notification{
		ID:        uuid.NewSHA1(deliveryIDs, []byte(key+"|"+userID)),
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Body:      body,
		Reference: ref,
		Metadata:  meta,
		CreatedAt: p.now().UTC(),
	}
	if err := p.notifications.Create(ctx, n); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil
		}
		log.Printf("[notify][ERROR] store notification for %s failed: %v", userID, err)
		return err
	}
	if p.hub != nil {
		p.hub.BroadcastToUser(userID, realtime.Event{Type: ntype, Data: n})
	}
	return nil
}
