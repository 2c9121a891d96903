package external

import (
	"github.com/sirupsen/logrus"

	"github.com/medreport-assistant-server/internal/domain"
)

// NewLookupFromConfig assembles the full lookup pipeline: LRU memory tier,
// durable file tier, optional Redis tier, and the rate-limited remote client.
func NewLookupFromConfig(lookupCfg *domain.LookupConfig, cacheCfg *domain.CacheConfig, logger *logrus.Logger) (*CachedLookupClient, error) {
	var tiers []Cache

	mem, err := NewMemoryCache(cacheCfg.MaxItems)
	if err != nil {
		return nil, err
	}
	tiers = append(tiers, mem)

	if cacheCfg.RedisURL != "" {
		rc, err := NewRedisCache(cacheCfg.RedisURL, cacheCfg.TTL)
		if err != nil {
			// Redis is an optional tier; log and fall back to local caches.
			logger.WithError(err).Warn("redis cache unavailable, using local tiers only")
		} else {
			tiers = append(tiers, rc)
		}
	}

	fc, err := NewFileCache(cacheCfg.File)
	if err != nil {
		return nil, err
	}
	tiers = append(tiers, fc)

	return NewCachedLookupClient(NewMediChatClient(lookupCfg), tiers, lookupCfg, logger), nil
}
