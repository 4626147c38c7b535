package domain

import (
	"time"

	"github.com/google/uuid"
)

// Acceptance is a hero's recorded interest in a pending request. It references
// the hero by record id only.
type Acceptance struct {
	ID           uuid.UUID
	RequestID    uuid.UUID
	HeroRecordID HeroRecordID
	AcceptedAt   time.Time
	Chosen       bool
}

// AcceptanceView is the read-side projection of an Acceptance handed to
// callers: the hero appears by public identity plus public profile fields.
type AcceptanceView struct {
	ID         uuid.UUID   `json:"id"`
	RequestID  uuid.UUID   `json:"request_id"`
	Hero       HeroProfile `json:"hero"`
	AcceptedAt time.Time   `json:"accepted_at"`
	Chosen     bool        `json:"chosen"`
}
