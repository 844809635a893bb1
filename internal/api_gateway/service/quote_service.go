package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/remitchain-core/internal/quote"
)

// QuoteServiceImpl implements the QuoteService interface
type QuoteServiceImpl struct {
	engine *quote.Engine
	logger *slog.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(logger *slog.Logger, engine *quote.Engine) QuoteService {
	return &QuoteServiceImpl{
		engine: engine,
		logger: logger,
	}
}

// CreateQuote prices the amount for the corridor
func (s *QuoteServiceImpl) CreateQuote(ctx context.Context, corridor, amount string, useLiveRate bool) (*quote.Result, error) {
	principal, err := quote.ParseAmount(amount)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Quote(ctx, corridor, principal, useLiveRate, time.Now())
	if err != nil {
		s.logger.Error("Failed to price quote", "corridor", corridor, "error", err)
		return nil, err
	}

	s.logger.Info("Quote created",
		"quote_id", result.QuoteID,
		"corridor", result.Corridor,
		"rate_source", result.RateSource,
	)
	return result, nil
}

// CurrentRate returns the configured rate by pricing a unit principal. The
// rates view never consults the live source.
func (s *QuoteServiceImpl) CurrentRate(ctx context.Context, corridor string) (*RateInfo, error) {
	now := time.Now()
	result, err := s.engine.QuoteAtConfigRate(corridor, decimal.NewFromInt(1), now)
	if err != nil {
		return nil, err
	}

	return &RateInfo{
		Corridor: result.Corridor,
		FxRate:   result.FxRate,
		Source:   result.RateSource,
		QuotedAt: now,
	}, nil
}
