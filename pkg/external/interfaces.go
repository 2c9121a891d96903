// Package external provides the client for the remote medical-knowledge chat
// API: a rate-limited HTTP client wrapped with bounded retries, a circuit
// breaker and layered response caches keyed by the case-folded query.
package external

import (
	"context"
	"strings"

	"github.com/medreport-assistant-server/internal/domain"
)

// Cache is one tier of the lookup response cache. Keys are normalized
// (case-folded, trimmed) queries. Implementations must treat lookup misses
// and internal failures alike: found == false, so a miss in one tier simply
// falls through to the next.
type Cache interface {
	Get(ctx context.Context, key string) (*domain.MedicalInfo, bool)
	Set(ctx context.Context, key string, info *domain.MedicalInfo) error
	Close() error
}

// RemoteClient issues one lookup attempt against the remote API.
type RemoteClient interface {
	Query(ctx context.Context, query string) (*domain.MedicalInfo, error)
}

// NormalizeQuery canonicalizes a query into its cache key.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
