// Package reports provides durable storage for ingested medical reports and
// their derived summaries. Three backends implement the same Store interface:
// a whole-document JSON file, SQLite, and PostgreSQL.
package reports

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/medreport-assistant-server/internal/domain"
)

// ErrNotFound is returned when a record ID does not exist in the store.
var ErrNotFound = errors.New("report record not found")

// Store defines the interface for report persistence operations.
type Store interface {
	// Append adds a new report record, assigns its ID and upload timestamp,
	// persists it and returns the assigned ID.
	Append(ctx context.Context, record *domain.ReportRecord) (string, error)

	// UpdateSummary overwrites the AI summary of the record with the given ID.
	// Returns ErrNotFound when the ID is absent. RawText is never touched.
	UpdateSummary(ctx context.Context, id, summary string) error

	// All returns every record in insertion order.
	All(ctx context.Context) ([]*domain.ReportRecord, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// ExportJSON exports all records to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string                 `json:"version"`
	ExportedAt time.Time              `json:"exported_at"`
	Count      int                    `json:"count"`
	Analyses   []*domain.ReportRecord `json:"analyses"`
}
