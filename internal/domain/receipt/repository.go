package receipt

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages receipt and fraud-flag persistence
type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*Receipt, error)
	GetByIntentID(ctx context.Context, intentID uuid.UUID) (*Receipt, error)

	// CreateFlags stores the flags produced for a receipt. Zero flags is a
	// no-op, not an error.
	CreateFlags(ctx context.Context, flags []FraudFlag) error
	GetFlags(ctx context.Context, receiptID uuid.UUID) ([]FraudFlag, error)
}

// ErrReceiptNotFound indicates a missing receipt
type ErrReceiptNotFound struct {
	ReceiptID uuid.UUID
}

func (e ErrReceiptNotFound) Error() string {
	return "receipt not found: " + e.ReceiptID.String()
}

// Is implements the errors.Is interface for ErrReceiptNotFound
func (e ErrReceiptNotFound) Is(target error) bool {
	t, ok := target.(ErrReceiptNotFound)
	if !ok {
		return false
	}
	if t.ReceiptID == uuid.Nil {
		return true
	}
	return e.ReceiptID == t.ReceiptID
}
