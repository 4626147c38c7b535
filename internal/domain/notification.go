package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app notification row.
type Notification struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Reference *uuid.UUID      `json:"reference,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ReadAt    *time.Time      `json:"read_at"`
}
