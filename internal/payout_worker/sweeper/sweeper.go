// Package sweeper is the recovery loop of the payout worker: it expires
// stale intents and re-drives cash-outs whose next step is overdue, which
// happens after a worker crash or a lost payout message.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/remitchain-core/internal/config"
	"github.com/remitchain-core/internal/domain/cashout"
	"github.com/remitchain-core/internal/domain/intent"
	"github.com/remitchain-core/internal/domain/shared"
	"github.com/remitchain-core/internal/payout_worker/service"
)

// Sweeper periodically expires stale intents and re-drives overdue cash-outs
type Sweeper struct {
	intents    intent.Repository
	cashouts   cashout.Repository
	processing service.ProcessingService
	logger     *slog.Logger
	interval   time.Duration
	batchSize  int
	grace      time.Duration
}

func NewSweeper(
	cfg *config.SweepConfig,
	intents intent.Repository,
	cashouts cashout.Repository,
	processing service.ProcessingService,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		intents:    intents,
		cashouts:   cashouts,
		processing: processing,
		logger:     logger,
		interval:   cfg.Interval,
		batchSize:  cfg.BatchSize,
		grace:      cfg.Grace,
	}
}

// Start begins sweeping until context is canceled
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting Sweeper",
		"interval", s.interval.String(),
		"batch_size", s.batchSize,
		"grace", s.grace.String(),
	)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.Error("Error during sweep", "error", err)
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	now := time.Now()

	expired, err := s.intents.ExpireStale(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to expire stale intents: %w", err)
	}
	if expired > 0 {
		s.logger.Info("Expired stale intents", "count", expired)
	}

	// Only cash-outs overdue past the grace window are re-driven; anything
	// younger is still owned by its original message handler.
	due, err := s.cashouts.GetDue(ctx, now.Add(-s.grace), s.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get due cashouts: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	s.logger.Info("Re-driving overdue cashouts", "count", len(due))

	for _, c := range due {
		request := &shared.PayoutRequest{
			CashoutID: c.ID,
			IntentID:  c.IntentID,
			Reference: c.Reference,
			Method:    c.Method,
			Timestamp: now,
		}

		if err := s.processing.ProcessPayout(ctx, request); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("Failed to re-drive cashout",
				"cashout_id", c.ID,
				"reference", c.Reference,
				"error", err,
			)
			continue
		}
		s.logger.Info("Re-drove overdue cashout", "cashout_id", c.ID, "reference", c.Reference)
	}
	return nil
}
