package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/medreport-assistant-server/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL report store around an existing
// connection.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL report store from a
// connection URL and ensures the schema exists.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := store.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// EnsureSchema creates the reports table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL,
		ai_summary TEXT
	)`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Append adds a new report record.
func (s *PostgresStore) Append(ctx context.Context, record *domain.ReportRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("record is required")
	}

	record.ID = uuid.NewString()
	record.UploadedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO reports (id, filename, raw_text, uploaded_at, ai_summary) VALUES ($1, $2, $3, $4, NULL)",
		record.ID, record.Filename, record.RawText, record.UploadedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert report: %w", err)
	}
	return record.ID, nil
}

// UpdateSummary overwrites the AI summary of the record with the given ID.
func (s *PostgresStore) UpdateSummary(ctx context.Context, id, summary string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reports SET ai_summary = $1 WHERE id = $2", summary, id)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every record in insertion order.
func (s *PostgresStore) All(ctx context.Context) ([]*domain.ReportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, filename, raw_text, uploaded_at, ai_summary FROM reports ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var records []*domain.ReportRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of stored records.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// ExportJSON exports all records to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	records, err := s.All(ctx)
	if err != nil {
		return err
	}

	export := Export{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Count:      len(records),
		Analyses:   records,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
