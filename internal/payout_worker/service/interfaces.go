package service

import (
	"context"

	"github.com/remitchain-core/internal/domain/shared"
)

// ProcessingService defines the interface for driving a cash-out through its
// payout steps.
type ProcessingService interface {
	ProcessPayout(ctx context.Context, request *shared.PayoutRequest) error
}
