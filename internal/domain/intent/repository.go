package intent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/remitchain-core/internal/domain/shared"
)

// HistoryEntry is the slice of an intent the fraud engine scores over
type HistoryEntry struct {
	Receiver  string
	Amount    decimal.Decimal
	Corridor  string
	Status    shared.IntentStatus
	CreatedAt time.Time
}

// Repository manages intent persistence. Status transitions are conditional:
// the store only moves an intent out of the expected prior status, so
// concurrent confirmations serialize on the database row.
type Repository interface {
	Create(ctx context.Context, in *Intent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Intent, error)

	// TransitionStatus atomically moves the intent from one status to
	// another, recording the settlement reference when given. Returns false
	// without error when the intent was not in the expected status (a
	// concurrent caller won the transition).
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to shared.IntentStatus, settlementReference string) (bool, error)

	// ExpireStale fails every CREATED intent whose expiry has passed and
	// returns how many were transitioned.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)

	// HistoryForSender returns the sender's most recent intents (any status),
	// newest first, bounded by limit. The fraud engine filters by status.
	HistoryForSender(ctx context.Context, senderID string, limit int) ([]HistoryEntry, error)
}

// ErrIntentNotFound indicates a missing intent
type ErrIntentNotFound struct {
	IntentID uuid.UUID
}

func (e ErrIntentNotFound) Error() string {
	return "intent not found: " + e.IntentID.String()
}

// Is implements the errors.Is interface for ErrIntentNotFound
func (e ErrIntentNotFound) Is(target error) bool {
	t, ok := target.(ErrIntentNotFound)
	if !ok {
		return false
	}
	if t.IntentID == uuid.Nil {
		return true
	}
	return e.IntentID == t.IntentID
}
