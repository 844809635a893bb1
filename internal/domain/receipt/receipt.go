package receipt

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/remitchain-core/internal/domain/shared"
)

// Receipt is the immutable record of a confirmed settlement, one-to-one with
// a confirmed intent. Never mutated after creation.
type Receipt struct {
	ID                  uuid.UUID       `json:"id"`
	IntentID            uuid.UUID       `json:"intent_id"`
	SenderID            string          `json:"sender_id"`
	ReceiverAddress     string          `json:"receiver_address"`
	TokenIdentifier     string          `json:"token_identifier"`
	AmountPrincipal     decimal.Decimal `json:"amount_principal"`
	AmountFee           decimal.Decimal `json:"amount_fee"`
	Corridor            string          `json:"corridor"`
	SettlementTimestamp time.Time       `json:"settlement_timestamp"`
	FxRateAtSettlement  decimal.Decimal `json:"fx_rate_at_settlement"`
	LocalAmountEstimate decimal.Decimal `json:"local_amount_estimate"`
	ShareToken          string          `json:"share_token"`
	ShareTokenExpiresAt time.Time       `json:"share_token_expires_at"`
	RawSettlementEvent  json.RawMessage `json:"raw_settlement_event"`
	CreatedAt           time.Time       `json:"created_at"`
}

// NewShareToken returns 32 random bytes hex-encoded, well above the 128-bit
// entropy floor for unauthenticated receipt access
func NewShareToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ShareTokenValid reports whether the presented token grants read access now.
// The comparison is constant-time; the token is the only credential guarding
// an unauthenticated endpoint.
func (r *Receipt) ShareTokenValid(token string, now time.Time) bool {
	if token == "" || !now.Before(r.ShareTokenExpiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(r.ShareToken)) == 1
}

// FraudFlag is an advisory, non-blocking risk signal attached to a receipt
type FraudFlag struct {
	ID        int64               `json:"id"`
	ReceiptID uuid.UUID           `json:"receipt_id"`
	RuleName  string              `json:"rule_name"`
	Severity  shared.FlagSeverity `json:"severity"`
	Score     int                 `json:"score"`
	Note      string              `json:"note"`
	CreatedAt time.Time           `json:"created_at"`
}
