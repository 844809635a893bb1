package intent

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/remitchain-core/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidAmount        = errors.New("amount must be a non-negative decimal with at most 6 fractional digits")
	ErrEmptyCorridor        = errors.New("corridor cannot be empty")
	ErrReceiverKindMismatch = errors.New("receiver identifier does not match receiver kind")
)

var (
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// Receiver is a tagged variant: exactly one identifier form, consistent with
// its kind, validated at construction
type Receiver struct {
	Kind       shared.ReceiverKind `json:"kind"`
	Identifier string              `json:"identifier"`
}

// NewReceiver validates the identifier against the declared kind. NAME
// receivers accept either a raw name or a pre-resolved chain address, since
// name resolution happens outside this core.
func NewReceiver(kind shared.ReceiverKind, identifier string) (Receiver, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Receiver{}, ErrReceiverKindMismatch
	}

	switch kind {
	case shared.ReceiverKindPhone:
		if !phonePattern.MatchString(identifier) {
			return Receiver{}, ErrReceiverKindMismatch
		}
	case shared.ReceiverKindAddress:
		if !addressPattern.MatchString(identifier) {
			return Receiver{}, ErrReceiverKindMismatch
		}
	case shared.ReceiverKindName:
		// Raw name or resolved address are both acceptable.
	default:
		return Receiver{}, ErrReceiverKindMismatch
	}

	return Receiver{Kind: kind, Identifier: identifier}, nil
}

// Intent represents a sender's declared, not-yet-settled remittance request
type Intent struct {
	ID                  uuid.UUID           `json:"id"`
	SenderID            string              `json:"sender_id"`
	Receiver            Receiver            `json:"receiver"`
	Corridor            string              `json:"corridor"`
	AmountPrincipal     decimal.Decimal     `json:"amount_principal"`
	AmountFee           decimal.Decimal     `json:"amount_fee"`
	Status              shared.IntentStatus `json:"status"`
	SettlementReference string              `json:"settlement_reference,omitempty"`
	ExpiresAt           time.Time           `json:"expires_at"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// NewIntent creates a CREATED intent expiring shared.QuoteTTL from now
func NewIntent(senderID string, receiver Receiver, corridor string, principal, fee decimal.Decimal) (*Intent, error) {
	if senderID == "" {
		return nil, errors.New("sender id cannot be empty")
	}
	if corridor == "" {
		return nil, ErrEmptyCorridor
	}
	if principal.IsNegative() || principal.Exponent() < -6 {
		return nil, ErrInvalidAmount
	}
	if fee.IsNegative() || fee.Exponent() < -6 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Intent{
		ID:              uuid.New(),
		SenderID:        senderID,
		Receiver:        receiver,
		Corridor:        corridor,
		AmountPrincipal: principal,
		AmountFee:       fee,
		Status:          shared.IntentStatusCreated,
		ExpiresAt:       now.Add(shared.QuoteTTL),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsExpired treats the deadline as exclusive: at exactly ExpiresAt the
// intent is already expired
func (i *Intent) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
