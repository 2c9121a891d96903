package domain

import (
	"encoding/json"
	"time"
)

// ObservationStatus represents the abnormality marker attached to a lab value.
type ObservationStatus string

const (
	StatusHigh   ObservationStatus = "High"
	StatusLow    ObservationStatus = "Low"
	StatusNormal ObservationStatus = "Normal"
)

// LabObservation is a single lab parameter extracted from report text.
// The value is kept as the original string to preserve formatting and
// precision exactly as they appear in the report.
type LabObservation struct {
	Value  string            `json:"value"`
	Status ObservationStatus `json:"status"`
}

// ReportRecord represents one ingested medical report and its derived summary.
// RawText is immutable after creation; only AISummary may be overwritten by a
// later re-analysis of the same record.
type ReportRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	RawText    string    `json:"analysis"`
	UploadedAt time.Time `json:"uploaded_at"`
	AISummary  *string   `json:"ai_summary"`
}

// UnmarshalJSON accepts both RFC3339 timestamps and the timezone-less ISO-8601
// form found in store files written before the Go port. Offset-less timestamps
// are read as UTC.
func (r *ReportRecord) UnmarshalJSON(data []byte) error {
	type recordAlias ReportRecord
	aux := &struct {
		UploadedAt string `json:"uploaded_at"`
		*recordAlias
	}{recordAlias: (*recordAlias)(r)}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.UploadedAt == "" {
		return nil
	}

	uploadedAt, err := parseUploadedAt(aux.UploadedAt)
	if err != nil {
		return err
	}
	r.UploadedAt = uploadedAt
	return nil
}

func parseUploadedAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999999", s)
}

// MedicalInfo is the structured result of a medical-knowledge lookup.
type MedicalInfo struct {
	Query           string   `json:"query"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
	FollowUp        []string `json:"follow_up"`
	Warnings        []string `json:"warnings"`
	References      []string `json:"references"`
}

// UnavailableMedicalInfo returns the fixed degraded lookup result used when
// the remote service cannot be reached. Degraded results are never cached.
func UnavailableMedicalInfo(query string) *MedicalInfo {
	return &MedicalInfo{
		Query:           query,
		Description:     "Medical service unavailable",
		Recommendations: []string{"Unavailable"},
		FollowUp:        []string{"Unavailable"},
		Warnings:        []string{"Unavailable"},
		References:      []string{"Unavailable"},
	}
}

// ChatMessage is one message inside a case discussion room.
type ChatMessage struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRoom is a case discussion room with its message history.
type ChatRoom struct {
	ID           string        `json:"id"`
	Creator      string        `json:"creator"`
	Description  string        `json:"description"`
	CreatedAt    time.Time     `json:"created_at"`
	Participants []string      `json:"participants"`
	Messages     []ChatMessage `json:"messages"`
}
