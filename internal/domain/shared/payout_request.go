package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidCashoutMethod = errors.New("invalid cashout method")

// PayoutRequest defines a Kafka message asking the payout worker to progress
// a freshly queued cash-out
type PayoutRequest struct {
	CashoutID     uuid.UUID     `json:"cashout_id"`
	IntentID      uuid.UUID     `json:"intent_id"`
	Reference     string        `json:"reference"`
	Method        CashoutMethod `json:"method"`
	CorrelationID string        `json:"correlation_id"`
	Timestamp     time.Time     `json:"timestamp"`
}
