// Package verifier confirms that a settlement reference corresponds to a
// successful on-chain transfer. Two implementations exist: a deterministic
// sandbox for environments without a deployed hub contract, and a JSON-RPC
// client that inspects the real transaction receipt.
package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// SettlementEvent is the decoded evidence of a confirmed transfer. Raw holds
// the provider's response verbatim for the receipt's audit copy.
type SettlementEvent struct {
	Reference    string          `json:"reference"`
	SettlementID string          `json:"settlement_id"`
	TokenAddress string          `json:"token_address,omitempty"`
	Sender       string          `json:"sender,omitempty"`
	Receiver     string          `json:"receiver,omitempty"`
	AmountWei    string          `json:"amount_wei,omitempty"`
	BlockNumber  uint64          `json:"block_number"`
	ConfirmedAt  time.Time       `json:"confirmed_at"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// Verifier checks a settlement reference against the settlement layer.
// declaredSender is the address the caller claims sent the transfer; the
// sandbox records it in the synthesized event, the chain verifier reads the
// real sender from the transaction instead.
type Verifier interface {
	Verify(ctx context.Context, reference, declaredSender string) (*SettlementEvent, error)
}

// FailureKind classifies a verification failure
type FailureKind string

const (
	// FailureNotFound means the settlement layer has no record of the
	// reference. Definitive: the reference will never appear later within
	// the intent's lifetime.
	FailureNotFound FailureKind = "NOT_FOUND"
	// FailureReverted means the transaction exists but did not succeed.
	// Definitive.
	FailureReverted FailureKind = "REVERTED"
	// FailureUnreachable means the verifier could not reach the settlement
	// layer. Retryable.
	FailureUnreachable FailureKind = "UNREACHABLE"
)

// VerificationError reports why a reference could not be verified
type VerificationError struct {
	Kind      FailureKind
	Reference string
	Cause     error
}

func (e *VerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("verification %s for %s: %v", e.Kind, e.Reference, e.Cause)
	}
	return fmt.Sprintf("verification %s for %s", e.Kind, e.Reference)
}

func (e *VerificationError) Unwrap() error { return e.Cause }

// Retryable reports whether retrying the same reference can succeed
func (e *VerificationError) Retryable() bool {
	return e.Kind == FailureUnreachable
}

var referencePattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// ValidReference reports whether the reference is a well-formed transaction
// hash
func ValidReference(reference string) bool {
	return referencePattern.MatchString(reference)
}
