// Package quote prices a remittance: platform fee, exchange rate, and the
// local-currency estimate the receiver can expect. Pricing is pure decimal
// arithmetic; no float64 ever touches a money amount.
package quote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/remitchain-core/internal/domain/shared"
	"github.com/remitchain-core/internal/fx"
)

const (
	feeScale   = 6 // stablecoin amounts carry at most 6 decimal places
	localScale = 2 // local-currency estimates are presented with 2
	rateScale  = 6
)

var (
	hundred = decimal.NewFromInt(100)
	bpsBase = decimal.NewFromInt(10000)
)

// Result is a priced quote. The same numbers are locked into the intent the
// client creates against it; expiresAt is exclusive.
type Result struct {
	QuoteID       uuid.UUID
	Corridor      string
	Principal     decimal.Decimal
	Fee           decimal.Decimal
	Total         decimal.Decimal
	FxRate        decimal.Decimal
	LocalEstimate decimal.Decimal
	RateSource    shared.RateSource
	ExpiresAt     time.Time
}

// RateFetcher is the live-rate dependency; *fx.Service satisfies it
type RateFetcher interface {
	GetRate(ctx context.Context, base, quote string) (fx.Rate, error)
}

// Engine computes quotes from configured pricing parameters, optionally
// consulting a live rate source. The live path is taken when the caller asks
// for it or when live rates are the configured default; once taken it never
// silently degrades to the configured rate, because the fx service has
// already exhausted its provider chain and cache by the time it errors.
type Engine struct {
	feeBps        decimal.Decimal
	baseRate      decimal.Decimal
	spread        decimal.Decimal
	liveSpreadPct decimal.Decimal
	useLive       bool
	rates         RateFetcher
	logger        *slog.Logger
}

// NewEngine builds a quote engine. baseRate and spread are decimal strings
// straight from configuration; rates may be nil when live rates are disabled.
func NewEngine(feeBps int64, baseRate, spread, liveSpreadPct string, useLive bool, rates RateFetcher, logger *slog.Logger) (*Engine, error) {
	base, err := decimal.NewFromString(baseRate)
	if err != nil {
		return nil, fmt.Errorf("invalid base rate %q: %w", baseRate, err)
	}
	spr, err := decimal.NewFromString(spread)
	if err != nil {
		return nil, fmt.Errorf("invalid spread %q: %w", spread, err)
	}
	liveSpr := decimal.Zero
	if liveSpreadPct != "" {
		liveSpr, err = decimal.NewFromString(liveSpreadPct)
		if err != nil {
			return nil, fmt.Errorf("invalid live spread percent %q: %w", liveSpreadPct, err)
		}
	}
	if base.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("base rate must be positive, got %s", base)
	}

	return &Engine{
		feeBps:        decimal.NewFromInt(feeBps),
		baseRate:      base,
		spread:        spr,
		liveSpreadPct: liveSpr,
		useLive:       useLive,
		rates:         rates,
		logger:        logger,
	}, nil
}

// ParseAmount validates a client-supplied amount string: positive, at most 6
// fractional digits
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, shared.NewValidationError(fmt.Sprintf("amount %q is not a valid number", raw))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewValidationError("amount must be greater than zero")
	}
	if amount.Exponent() < -feeScale {
		return decimal.Zero, shared.NewValidationError("amount must have at most 6 decimal places")
	}
	return amount, nil
}

// Quote prices the principal for the given corridor. The fee is
// principal * feeBps / 10000 rounded half-up at 6 places; the local estimate
// is principal * rate rounded half-up at 2 places. useLive requests the live
// rate path for this call on top of the configured default.
func (e *Engine) Quote(ctx context.Context, corridor string, principal decimal.Decimal, useLive bool, now time.Time) (*Result, error) {
	if corridor == "" {
		corridor = shared.DefaultCorridor
	}
	base, local, err := splitCorridor(corridor)
	if err != nil {
		return nil, err
	}

	rate, source, err := e.rate(ctx, base, local, useLive)
	if err != nil {
		return nil, err
	}

	return e.build(corridor, principal, rate, source, now), nil
}

// QuoteAtConfigRate prices the principal from the configured base+spread rate
// only, never consulting the live source. Intent creation and settlement-time
// receipt pricing use this path so they cannot fail on a provider outage.
func (e *Engine) QuoteAtConfigRate(corridor string, principal decimal.Decimal, now time.Time) (*Result, error) {
	if corridor == "" {
		corridor = shared.DefaultCorridor
	}
	if _, _, err := splitCorridor(corridor); err != nil {
		return nil, err
	}
	return e.build(corridor, principal, e.configRate(), shared.RateSourceConfig, now), nil
}

func (e *Engine) build(corridor string, principal, rate decimal.Decimal, source shared.RateSource, now time.Time) *Result {
	fee := principal.Mul(e.feeBps).Div(bpsBase).Round(feeScale)
	total := principal.Add(fee)
	localEstimate := principal.Mul(rate).Round(localScale)

	return &Result{
		QuoteID:       uuid.New(),
		Corridor:      corridor,
		Principal:     principal,
		Fee:           fee,
		Total:         total,
		FxRate:        rate,
		LocalEstimate: localEstimate,
		RateSource:    source,
		ExpiresAt:     now.Add(shared.QuoteTTL),
	}
}

// rate resolves the exchange rate. The live path reports RateUnavailable when
// the fx service has exhausted providers and cache; it never falls back to
// the configured rate, which would mislabel the quote's source.
func (e *Engine) rate(ctx context.Context, base, local string, useLive bool) (decimal.Decimal, shared.RateSource, error) {
	if !useLive && !e.useLive {
		return e.configRate(), shared.RateSourceConfig, nil
	}
	if e.rates == nil {
		return decimal.Zero, "", shared.NewRateUnavailableError(fmt.Errorf("live rates requested but no rate source is configured"))
	}

	live, err := e.rates.GetRate(ctx, base, local)
	if err != nil {
		e.logger.Error("Live rate unavailable",
			"pair", base+"/"+local,
			"error", err,
		)
		return decimal.Zero, "", shared.NewRateUnavailableError(err)
	}

	marked := live.Value.
		Mul(decimal.NewFromInt(1).Add(e.liveSpreadPct.Div(hundred))).
		Round(rateScale)
	return marked, shared.RateSourceLive, nil
}

func (e *Engine) configRate() decimal.Decimal {
	return e.baseRate.Add(e.spread)
}

// splitCorridor maps a corridor such as USDC-INR onto the fiat pair the rate
// providers understand. Dollar-pegged stablecoins price as USD.
func splitCorridor(corridor string) (base, local string, err error) {
	parts := strings.Split(corridor, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", shared.NewValidationError(fmt.Sprintf("corridor %q must be of the form ASSET-CURRENCY", corridor))
	}
	base = strings.ToUpper(parts[0])
	switch base {
	case "USDC", "USDT":
		base = "USD"
	}
	return base, strings.ToUpper(parts[1]), nil
}
