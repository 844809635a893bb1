package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/remitchain-core/internal/config"
	"github.com/remitchain-core/internal/domain/audit"
	"github.com/remitchain-core/internal/domain/cashout"
	"github.com/remitchain-core/internal/domain/shared"
)

type ProcessingServiceImpl struct {
	cashouts        cashout.Repository
	recorder        *audit.Recorder
	processingDelay time.Duration
	failurePercent  int
	logger          *slog.Logger
}

func NewProcessingService(
	logger *slog.Logger,
	cashouts cashout.Repository,
	recorder *audit.Recorder,
	cfg *config.CashoutConfig,
) ProcessingService {
	return &ProcessingServiceImpl{
		cashouts:        cashouts,
		recorder:        recorder,
		processingDelay: cfg.ProcessingDelay,
		failurePercent:  cfg.FailurePercent,
		logger:          logger,
	}
}

// ProcessPayout drives the cash-out through QUEUED -> PROCESSING -> PAID or
// FAILED, honoring the step delays. Every advance is a status CAS in the
// store, so a concurrent sweeper re-driving the same cash-out cannot
// double-apply a step.
func (s *ProcessingServiceImpl) ProcessPayout(ctx context.Context, request *shared.PayoutRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Processing payout",
		"cashout_id", request.CashoutID.String(),
		"reference", request.Reference,
	)

	c, err := s.cashouts.GetByID(ctx, request.CashoutID)
	if err != nil {
		if errors.Is(err, cashout.ErrCashoutNotFound{}) {
			logger.Error("Payout request references unknown cashout, dropping",
				"cashout_id", request.CashoutID.String(),
			)
			return nil // Acknowledge; retrying cannot help
		}
		return fmt.Errorf("failed to load cashout %s: %w", request.CashoutID, err)
	}

	for !c.Status.IsTerminal() {
		if err := s.waitUntilDue(ctx, c.NextActionDueAt); err != nil {
			return err
		}

		c, err = s.advanceOnce(ctx, logger, c)
		if err != nil {
			return err
		}
	}

	logger.Info("Payout resolved",
		"cashout_id", c.ID.String(),
		"reference", c.Reference,
		"status", c.Status,
	)
	return nil
}

// advanceOnce applies a single progression step. A lost CAS means another
// driver advanced the cash-out first; the fresh row is returned either way.
func (s *ProcessingServiceImpl) advanceOnce(ctx context.Context, logger *slog.Logger, c *cashout.Cashout) (*cashout.Cashout, error) {
	failed := c.Status == shared.CashoutStatusProcessing && s.decideFailure(c.Reference)
	next, err := cashout.NextStatus(c.Status, failed)
	if err != nil {
		return nil, fmt.Errorf("cashout %s in unexpected status %s: %w", c.ID, c.Status, err)
	}

	now := time.Now()
	event := cashout.Event{
		Status:    next,
		Timestamp: now,
		Note:      cashout.StepNote(next),
	}

	var nextDueAt *time.Time
	if !next.IsTerminal() {
		due := now.Add(s.processingDelay)
		nextDueAt = &due
	}

	applied, err := s.cashouts.Advance(ctx, c.ID, c.Status, next, event, nextDueAt)
	if err != nil {
		return nil, fmt.Errorf("failed to advance cashout %s: %w", c.ID, err)
	}
	if !applied {
		logger.Info("Cashout already advanced by another driver",
			"cashout_id", c.ID.String(),
			"expected_status", c.Status,
		)
		return s.cashouts.GetByID(ctx, c.ID)
	}

	s.recorder.Record(ctx, c.IntentID.String(), audit.ActionCashoutAdvanced, map[string]any{
		"cashout_id": c.ID.String(),
		"reference":  c.Reference,
		"from":       string(c.Status),
		"to":         string(next),
	})

	logger.Info("Cashout advanced",
		"cashout_id", c.ID.String(),
		"reference", c.Reference,
		"from", c.Status,
		"to", next,
	)

	fresh := *c
	fresh.Status = next
	fresh.Events = append(append([]cashout.Event(nil), c.Events...), event)
	fresh.NextActionDueAt = nextDueAt
	fresh.UpdatedAt = now
	return &fresh, nil
}

// waitUntilDue blocks until the step's due time, honoring cancellation
func (s *ProcessingServiceImpl) waitUntilDue(ctx context.Context, dueAt *time.Time) error {
	if dueAt == nil {
		return nil
	}
	delay := time.Until(*dueAt)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// decideFailure simulates payout rail outcomes: a stable hash of the
// reference lands failurePercent of cash-outs in FAILED, deterministically
// per reference so retries resolve the same way
func (s *ProcessingServiceImpl) decideFailure(reference string) bool {
	if s.failurePercent <= 0 {
		return false
	}
	if s.failurePercent >= 100 {
		return true
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(reference))
	return int(h.Sum32()%100) < s.failurePercent
}
