package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names for state-changing operations
const (
	ActionIntentCreated    = "INTENT_CREATED"
	ActionRemitConfirmed   = "REMIT_CONFIRMED"
	ActionRemitFailed      = "REMIT_FAILED"
	ActionCashoutInitiated = "CASHOUT_INITIATED"
	ActionCashoutAdvanced  = "CASHOUT_ADVANCED"
)

// Entry is one append-only audit record. Never mutated or deleted.
type Entry struct {
	ID        uuid.UUID      `json:"id" bson:"id"`
	ActorID   string         `json:"actor_id" bson:"actor_id"`
	Action    string         `json:"action" bson:"action"`
	Payload   map[string]any `json:"payload" bson:"payload"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}

// NewEntry stamps an entry with a fresh id and the current time
func NewEntry(actorID, action string, payload map[string]any) *Entry {
	return &Entry{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    action,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// Repository is the append-only audit store
type Repository interface {
	Append(ctx context.Context, entry *Entry) error

	// ListByActor returns the actor's entries, newest first, for review
	// tooling.
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*Entry, error)
	ListByTimeRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*Entry, error)
}
