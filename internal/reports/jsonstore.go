package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medreport-assistant-server/internal/domain"
)

// storeDocument is the on-disk shape of the JSON backend. It matches the
// historical analysis_store.json layout so existing files load unchanged.
type storeDocument struct {
	Analyses []*domain.ReportRecord `json:"analyses"`
}

// JSONStore implements the Store interface with a single JSON document.
// Every mutation rewrites the whole file; there are no partial updates. The
// mutex only guards against data races within one process, not against
// concurrent writers of the same file.
type JSONStore struct {
	path string
	mu   sync.Mutex
	doc  storeDocument
}

// NewJSONStore opens (or initializes) a JSON-file report store. A missing or
// malformed backing file yields an empty store rather than an error.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &JSONStore{path: path}
	s.doc = loadDocument(path)
	return s, nil
}

// loadDocument reads the persisted state, substituting an empty document for
// any read or decode failure.
func loadDocument(path string) storeDocument {
	b, err := os.ReadFile(path)
	if err != nil {
		return storeDocument{}
	}
	var doc storeDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return storeDocument{}
	}
	return doc
}

// persist rewrites the backing file from the in-memory document.
// Caller must hold the mutex.
func (s *JSONStore) persist() error {
	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}

// Append adds a new report record and persists the whole document.
func (s *JSONStore) Append(ctx context.Context, record *domain.ReportRecord) (string, error) {
	if record == nil {
		return "", errors.New("record is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = uuid.NewString()
	record.UploadedAt = time.Now().UTC()

	stored := *record
	s.doc.Analyses = append(s.doc.Analyses, &stored)
	if err := s.persist(); err != nil {
		s.doc.Analyses = s.doc.Analyses[:len(s.doc.Analyses)-1]
		return "", err
	}
	return record.ID, nil
}

// UpdateSummary overwrites the AI summary of the record with the given ID.
func (s *JSONStore) UpdateSummary(ctx context.Context, id, summary string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.doc.Analyses {
		if rec.ID == id {
			rec.AISummary = &summary
			return s.persist()
		}
	}
	return ErrNotFound
}

// All returns copies of every record in insertion order.
func (s *JSONStore) All(ctx context.Context) ([]*domain.ReportRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.ReportRecord, 0, len(s.doc.Analyses))
	for _, rec := range s.doc.Analyses {
		cp := *rec
		if rec.AISummary != nil {
			summary := *rec.AISummary
			cp.AISummary = &summary
		}
		out = append(out, &cp)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *JSONStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.doc.Analyses)), nil
}

// ExportJSON exports all records to a JSON writer.
func (s *JSONStore) ExportJSON(ctx context.Context, writer io.Writer) error {
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

// Close is a no-op for the JSON backend.
func (s *JSONStore) Close() error {
	return nil
}
