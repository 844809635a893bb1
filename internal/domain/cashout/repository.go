package cashout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/remitchain-core/internal/domain/shared"
)

// Repository manages cash-out persistence. Advance is the only mutation after
// creation: an atomic compare-and-swap on status plus an event append, so a
// racing worker and recovery sweeper can never double-apply a step.
type Repository interface {
	Create(ctx context.Context, c *Cashout) error
	GetByID(ctx context.Context, id uuid.UUID) (*Cashout, error)
	GetByReference(ctx context.Context, reference string) (*Cashout, error)
	GetByIntentID(ctx context.Context, intentID uuid.UUID) (*Cashout, error)

	// Advance moves the cash-out from one status to the next, appending the
	// event and recording when the following step is due (nil for terminal
	// states). Returns false without error when the cash-out was not in the
	// expected status.
	Advance(ctx context.Context, id uuid.UUID, from, to shared.CashoutStatus, event Event, nextDueAt *time.Time) (bool, error)

	// GetDue returns non-terminal cash-outs whose next action was due at or
	// before the given time, oldest first, bounded by limit. Used by the
	// recovery sweeper after a worker restart.
	GetDue(ctx context.Context, now time.Time, limit int) ([]*Cashout, error)
}

// ErrCashoutNotFound indicates a missing cash-out
type ErrCashoutNotFound struct {
	Reference string
}

func (e ErrCashoutNotFound) Error() string {
	return "cashout not found: " + e.Reference
}

// Is implements the errors.Is interface for ErrCashoutNotFound
func (e ErrCashoutNotFound) Is(target error) bool {
	t, ok := target.(ErrCashoutNotFound)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}
