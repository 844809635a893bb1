package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/remitchain-core/internal/domain/audit"
	"github.com/remitchain-core/internal/domain/cashout"
	"github.com/remitchain-core/internal/domain/intent"
	"github.com/remitchain-core/internal/domain/shared"
	"github.com/remitchain-core/internal/platform/messaging/producers"
)

// CashoutServiceImpl implements the CashoutService interface
type CashoutServiceImpl struct {
	cashouts    cashout.Repository
	intents     intent.Repository
	producer    producers.MessagePublisher
	recorder    *audit.Recorder
	queuedDelay time.Duration
	logger      *slog.Logger
}

// NewCashoutService creates a new cash-out service
func NewCashoutService(
	logger *slog.Logger,
	cashouts cashout.Repository,
	intents intent.Repository,
	producer producers.MessagePublisher,
	recorder *audit.Recorder,
	queuedDelay time.Duration,
) CashoutService {
	return &CashoutServiceImpl{
		cashouts:    cashouts,
		intents:     intents,
		producer:    producer,
		recorder:    recorder,
		queuedDelay: queuedDelay,
		logger:      logger,
	}
}

// Initiate queues the local payout leg for a confirmed remittance. At most
// one cash-out exists per intent; a repeat call returns the existing one.
func (s *CashoutServiceImpl) Initiate(ctx context.Context, senderID string, intentID uuid.UUID, method shared.CashoutMethod, payoutTarget, correlationID string) (*cashout.Cashout, error) {
	in, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		if errors.Is(err, intent.ErrIntentNotFound{}) {
			return nil, shared.NewNotFoundError("intent not found")
		}
		return nil, fmt.Errorf("failed to load intent: %w", err)
	}
	if in.SenderID != senderID {
		return nil, shared.NewForbiddenError("intent belongs to another sender")
	}

	existing, err := s.cashouts.GetByIntentID(ctx, intentID)
	if err == nil {
		s.logger.Info("Cash-out already initiated for intent",
			"intent_id", intentID,
			"reference", existing.Reference,
		)
		return existing, nil
	}
	if !errors.Is(err, cashout.ErrCashoutNotFound{}) {
		return nil, fmt.Errorf("failed to check for existing cashout: %w", err)
	}

	if in.Status != shared.IntentStatusConfirmed {
		return nil, shared.NewNotConfirmedError("remittance is not confirmed on-chain")
	}

	c, err := cashout.NewCashout(intentID, method, payoutTarget, time.Now().Add(s.queuedDelay))
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	if err := s.cashouts.Create(ctx, c); err != nil {
		// The unique constraint on intent_id resolves a creation race: the
		// loser reads back the winner's row.
		if winner, getErr := s.cashouts.GetByIntentID(ctx, intentID); getErr == nil {
			return winner, nil
		}
		s.logger.Error("Failed to create cashout", "intent_id", intentID, "error", err)
		return nil, fmt.Errorf("failed to create cashout: %w", err)
	}

	request := &shared.PayoutRequest{
		CashoutID:     c.ID,
		IntentID:      intentID,
		Reference:     c.Reference,
		Method:        c.Method,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
	if err := s.producer.Publish(ctx, c.ID.String(), request); err != nil {
		// The cash-out is already durable; the sweeper re-drives it if this
		// message never reaches the worker.
		s.logger.Error("Failed to publish payout request",
			"cashout_id", c.ID,
			"reference", c.Reference,
			"error", err,
		)
	}

	s.recorder.Record(ctx, senderID, audit.ActionCashoutInitiated, map[string]any{
		"intent_id":  intentID.String(),
		"cashout_id": c.ID.String(),
		"reference":  c.Reference,
		"method":     string(c.Method),
	})

	s.logger.Info("Cash-out initiated",
		"cashout_id", c.ID,
		"intent_id", intentID,
		"reference", c.Reference,
		"method", c.Method,
	)
	return c, nil
}

// StatusByReference returns the cash-out trail and the remittance it settles
func (s *CashoutServiceImpl) StatusByReference(ctx context.Context, reference string) (*cashout.Cashout, *intent.Intent, error) {
	c, err := s.cashouts.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, cashout.ErrCashoutNotFound{}) {
			return nil, nil, shared.NewNotFoundError("cashout not found")
		}
		return nil, nil, fmt.Errorf("failed to load cashout: %w", err)
	}

	in, err := s.intents.GetByID(ctx, c.IntentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load intent for cashout: %w", err)
	}
	return c, in, nil
}
