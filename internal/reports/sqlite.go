package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/medreport-assistant-server/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite. Unlike the JSON
// backend it persists per-record, so concurrent writers cannot clobber each
// other's updates.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite report store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		uploaded_at DATETIME NOT NULL,
		ai_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_id ON reports(id);
	CREATE INDEX IF NOT EXISTS idx_reports_uploaded_at ON reports(uploaded_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row into a ReportRecord.
func scanRecord(s scanner) (*domain.ReportRecord, error) {
	rec := &domain.ReportRecord{}
	var summary sql.NullString

	err := s.Scan(&rec.ID, &rec.Filename, &rec.RawText, &rec.UploadedAt, &summary)
	if err != nil {
		return nil, err
	}
	if summary.Valid {
		rec.AISummary = &summary.String
	}
	return rec, nil
}

// Append adds a new report record.
func (s *SQLiteStore) Append(ctx context.Context, record *domain.ReportRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("record is required")
	}

	record.ID = uuid.NewString()
	record.UploadedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO reports (id, filename, raw_text, uploaded_at, ai_summary) VALUES (?, ?, ?, ?, NULL)",
		record.ID, record.Filename, record.RawText, record.UploadedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert report: %w", err)
	}
	return record.ID, nil
}

// UpdateSummary overwrites the AI summary of the record with the given ID.
func (s *SQLiteStore) UpdateSummary(ctx context.Context, id, summary string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reports SET ai_summary = ? WHERE id = ?", summary, id)
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
func (s *SQLiteStore) All(ctx context.Context) ([]*domain.ReportRecord, error) {
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
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// ExportJSON exports all records to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
