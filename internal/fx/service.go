package fx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service walks a provider chain in order and caches the first successful
// rate per currency pair. When every provider fails, a stale cached rate is
// served rather than failing the quote. Concurrent cache misses for the same
// pair collapse into a single upstream fetch.
type Service struct {
	providers []Provider
	cacheTTL  time.Duration
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[string]Rate

	group singleflight.Group
}

// NewService creates an FX rate service over the given provider chain
func NewService(providers []Provider, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		providers: providers,
		cacheTTL:  cacheTTL,
		logger:    logger,
		cache:     make(map[string]Rate),
	}
}

// GetRate returns the base->quote rate, preferring a fresh cached value, then
// the provider chain, then a stale cached value as a last resort.
func (s *Service) GetRate(ctx context.Context, base, quote string) (Rate, error) {
	key := base + "/" + quote

	if rate, ok := s.cached(key, time.Now()); ok {
		return rate, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Re-check under singleflight: another caller may have just filled it
		if rate, ok := s.cached(key, time.Now()); ok {
			return rate, nil
		}
		return s.fetch(ctx, key, base, quote)
	})
	if err != nil {
		return Rate{}, err
	}
	return v.(Rate), nil
}

func (s *Service) cached(key string, now time.Time) (Rate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.cache[key]
	if !ok || now.Sub(rate.FetchedAt) >= s.cacheTTL {
		return Rate{}, false
	}
	return rate, true
}

func (s *Service) fetch(ctx context.Context, key, base, quote string) (Rate, error) {
	var lastErr error
	for _, p := range s.providers {
		value, err := p.Fetch(ctx, base, quote)
		if err != nil {
			s.logger.Warn("FX provider failed",
				"provider", p.Name(),
				"pair", key,
				"error", err,
			)
			lastErr = err
			continue
		}

		rate := Rate{Value: value, Provider: p.Name(), FetchedAt: time.Now()}
		s.mu.Lock()
		s.cache[key] = rate
		s.mu.Unlock()
		return rate, nil
	}

	// Stale cache beats no rate at all
	s.mu.RLock()
	stale, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		s.logger.Warn("All FX providers failed, serving stale rate",
			"pair", key,
			"provider", stale.Provider,
			"fetched_at", stale.FetchedAt,
		)
		return stale, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no FX providers configured")
	}
	return Rate{}, fmt.Errorf("no rate available for %s: %w", key, lastErr)
}
