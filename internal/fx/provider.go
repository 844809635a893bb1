// Package fx fetches live fiat exchange rates from a chain of public
// providers with a short-lived cache. Quotes fall back to configured rates
// when every provider is down and no cached rate is usable.
package fx

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a fetched exchange rate with its provenance
type Rate struct {
	Value     decimal.Decimal
	Provider  string
	FetchedAt time.Time
}

// Provider fetches the base->quote exchange rate from one upstream source
type Provider interface {
	Name() string
	Fetch(ctx context.Context, base, quote string) (decimal.Decimal, error)
}
