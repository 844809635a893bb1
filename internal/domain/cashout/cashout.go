package cashout

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/remitchain-core/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyPayoutTarget = errors.New("payout target cannot be empty")
	ErrIllegalTransition = errors.New("illegal cashout status transition")
)

// Event is one step of the cash-out's append-only progression trail
type Event struct {
	Status    shared.CashoutStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Note      string               `json:"note"`
}

// Cashout is the local payout leg of a confirmed remittance. At most one
// exists per intent; its status always equals the status of the last event.
type Cashout struct {
	ID              uuid.UUID            `json:"id"`
	IntentID        uuid.UUID            `json:"intent_id"`
	Reference       string               `json:"reference"`
	Method          shared.CashoutMethod `json:"method"`
	PayoutTarget    string               `json:"payout_target"`
	Status          shared.CashoutStatus `json:"status"`
	Events          []Event              `json:"events"`
	NextActionDueAt *time.Time           `json:"next_action_due_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// NewReference generates a human-readable payout reference, RMT followed by
// twelve uppercase hex characters
func NewReference() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate cashout reference: %w", err)
	}
	return "RMT" + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// NewCashout creates a QUEUED cash-out with its initial event. queuedFor is
// when the worker should advance it to PROCESSING.
func NewCashout(intentID uuid.UUID, method shared.CashoutMethod, payoutTarget string, queuedFor time.Time) (*Cashout, error) {
	if method != shared.CashoutMethodUPI && method != shared.CashoutMethodBank {
		return nil, shared.ErrInvalidCashoutMethod
	}
	if strings.TrimSpace(payoutTarget) == "" {
		return nil, ErrEmptyPayoutTarget
	}

	ref, err := NewReference()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Cashout{
		ID:           uuid.New(),
		IntentID:     intentID,
		Reference:    ref,
		Method:       method,
		PayoutTarget: payoutTarget,
		Status:       shared.CashoutStatusQueued,
		Events: []Event{{
			Status:    shared.CashoutStatusQueued,
			Timestamp: now,
			Note:      "Cash-out request received",
		}},
		NextActionDueAt: &queuedFor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// NextStatus returns the legal successor for a progression step. The chain is
// strictly linear; PROCESSING resolves to PAID unless failed is set.
func NextStatus(from shared.CashoutStatus, failed bool) (shared.CashoutStatus, error) {
	switch from {
	case shared.CashoutStatusQueued:
		return shared.CashoutStatusProcessing, nil
	case shared.CashoutStatusProcessing:
		if failed {
			return shared.CashoutStatusFailed, nil
		}
		return shared.CashoutStatusPaid, nil
	default:
		return "", ErrIllegalTransition
	}
}

// StepNote is the human-readable note appended with each progression event
func StepNote(to shared.CashoutStatus) string {
	switch to {
	case shared.CashoutStatusProcessing:
		return "Payment processing initiated"
	case shared.CashoutStatusPaid:
		return "Payment completed successfully"
	case shared.CashoutStatusFailed:
		return "Payment failed - please retry"
	default:
		return ""
	}
}
