// Package alerts carries change notifications: the emitter puts them on an
// asynq queue, the processor stores an in-app notification per recipient and
// pushes it to connected clients.
package alerts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Emitter implements port.Notifier on top of asynq.
type Emitter struct {
	client enqueuer
	closer func() error
}

func NewEmitter(redisAddr string) *Emitter {
	c := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	return &Emitter{client: c, closer: c.Close}
}

func (e *Emitter) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer()
}

func (e *Emitter) enqueue(ctx context.Context, taskType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, asynq.NewTask(taskType, b),
		asynq.Queue(QueueRealtime), asynq.MaxRetry(3), asynq.Timeout(30*time.Second))
	return err
}

// RequestStatusChanged schedules a status-change notification.
func (e *Emitter) RequestStatusChanged(ctx context.Context, evt domain.StatusEvent) error {
	return e.enqueue(ctx, TaskStatusChanged, StatusChangedPayload{Event: evt, SentAt: time.Now()})
}

// AcceptanceCreated schedules a new-acceptance notification for the requester.
func (e *Emitter) AcceptanceCreated(ctx context.Context, evt domain.AcceptanceEvent) error {
	return e.enqueue(ctx, TaskAcceptanceCreated, AcceptanceCreatedPayload{Event: evt, SentAt: time.Now()})
}
