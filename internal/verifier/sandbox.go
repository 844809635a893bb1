package verifier

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"
)

// Sandbox simulates settlement verification without a chain connection. Every
// well-formed reference verifies successfully, and all derived fields are a
// pure function of the reference so repeated confirmations of the same intent
// produce identical receipts.
type Sandbox struct {
	tokenAddress string
	logger       *slog.Logger
}

// NewSandbox creates a sandbox verifier
func NewSandbox(tokenAddress string, logger *slog.Logger) *Sandbox {
	return &Sandbox{tokenAddress: tokenAddress, logger: logger}
}

// Verify derives a deterministic settlement event from the reference hash.
// The declared sender cannot be checked against a chain here, so it is carried
// into the event as-is.
func (s *Sandbox) Verify(_ context.Context, reference, declaredSender string) (*SettlementEvent, error) {
	if !ValidReference(reference) {
		return nil, &VerificationError{Kind: FailureNotFound, Reference: reference}
	}

	sum := sha256.Sum256([]byte(reference))
	settlementID := "0x" + hex.EncodeToString(sum[:])
	blockNumber := binary.BigEndian.Uint64(sum[:8]) % 10_000_000

	event := &SettlementEvent{
		Reference:    reference,
		SettlementID: settlementID,
		TokenAddress: s.tokenAddress,
		Sender:       declaredSender,
		BlockNumber:  blockNumber,
		ConfirmedAt:  time.Now(),
	}
	raw, _ := json.Marshal(map[string]any{
		"mode":          "sandbox",
		"reference":     reference,
		"settlement_id": settlementID,
		"sender":        declaredSender,
		"block_number":  blockNumber,
	})
	event.Raw = raw

	s.logger.Debug("Sandbox settlement verified",
		"reference", reference,
		"settlement_id", settlementID,
	)
	return event, nil
}
