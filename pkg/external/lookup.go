package external

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/medreport-assistant-server/internal/domain"
)

// CachedLookupClient answers medical queries through layered caches with a
// retrying, circuit-broken remote fallback. Lookup never returns an error for
// remote failure: once the retry budget is exhausted (or the breaker is open)
// it degrades to the fixed unavailable result, which is never cached, so a
// later call retries the network fresh.
type CachedLookupClient struct {
	remote     RemoteClient
	tiers      []Cache
	retryCount int
	retryDelay time.Duration
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// NewCachedLookupClient wires the lookup pipeline. Tiers are consulted in
// order; a hit in a later tier is written back to the earlier ones.
func NewCachedLookupClient(remote RemoteClient, tiers []Cache, cfg *domain.LookupConfig, logger *logrus.Logger) *CachedLookupClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "MediChat",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state change")
		},
	})

	return &CachedLookupClient{
		remote:     remote,
		tiers:      tiers,
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
		breaker:    breaker,
		logger:     logger,
	}
}

// Lookup answers a medical query. The normalized query is the cache key.
func (c *CachedLookupClient) Lookup(ctx context.Context, query string) (*domain.MedicalInfo, error) {
	key := NormalizeQuery(query)

	for i, tier := range c.tiers {
		if info, found := tier.Get(ctx, key); found {
			c.backfill(ctx, key, info, i)
			return info, nil
		}
	}

	info, err := c.fetchWithRetries(ctx, query)
	if err != nil {
		c.logger.WithError(err).WithField("query", key).Warn("lookup degraded to unavailable result")
		return domain.UnavailableMedicalInfo(query), nil
	}

	for _, tier := range c.tiers {
		if err := tier.Set(ctx, key, info); err != nil {
			c.logger.WithError(err).Warn("failed to cache lookup result")
		}
	}
	return info, nil
}

// backfill copies a lower-tier hit into the tiers in front of it.
func (c *CachedLookupClient) backfill(ctx context.Context, key string, info *domain.MedicalInfo, hitTier int) {
	for _, tier := range c.tiers[:hitTier] {
		if err := tier.Set(ctx, key, info); err != nil {
			c.logger.WithError(err).Warn("failed to backfill cache tier")
		}
	}
}

// Close releases every cache tier.
func (c *CachedLookupClient) Close() error {
	var firstErr error
	for _, tier := range c.tiers {
		if err := tier.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// fetchWithRetries runs the remote call through the circuit breaker with a
// fixed delay between attempts. No backoff, no jitter.
func (c *CachedLookupClient) fetchWithRetries(ctx context.Context, query string) (*domain.MedicalInfo, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryCount; attempt++ {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.remote.Query(ctx, query)
		})
		if err == nil {
			return result.(*domain.MedicalInfo), nil
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Short-circuit: the breaker will reject every attempt anyway.
			return nil, err
		}

		c.logger.WithError(err).WithField("attempt", attempt).Warn("lookup attempt failed")

		if attempt < c.retryCount {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}
