package alerts

import (
	"time"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
)

// Task type constants
const (
	TaskStatusChanged     = "request:status_changed"
	TaskAcceptanceCreated = "request:acceptance_created"
)

// QueueRealtime carries every change notification.
const QueueRealtime = "realtime"

// Notification types stored on the in-app rows and used as websocket frame types.
const (
	TypeStatusChanged     = "request_status_changed"
	TypeAcceptanceCreated = "request_acceptance_created"
)

type StatusChangedPayload struct {
	Event  domain.StatusEvent `json:"event"`
	SentAt time.Time          `json:"sent_at"`
}

type AcceptanceCreatedPayload struct {
	Event  domain.AcceptanceEvent `json:"event"`
	SentAt time.Time              `json:"sent_at"`
}
