package reports

import (
	"fmt"
	"path/filepath"

	"github.com/medreport-assistant-server/internal/domain"
)

// Open constructs the report store selected by the storage configuration.
func Open(cfg *domain.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "json":
		return NewJSONStore(filepath.Join(cfg.DataDir, "analysis_store.json"))
	case "sqlite":
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "reports.db"))
	case "postgres":
		return NewPostgresStoreFromURL(cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
