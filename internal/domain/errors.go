package domain

import (
	"errors"
	"fmt"
)

// RemoteErrorKind classifies failures from remote AI and lookup services so
// callers can choose a fallback path without matching on error strings.
type RemoteErrorKind string

const (
	// ErrKindQuota marks a quota/rate exhaustion response. Never retried;
	// surfaced to the user as a fixed try-again-later message.
	ErrKindQuota RemoteErrorKind = "QUOTA_EXCEEDED"

	// ErrKindTransient marks any other remote failure. Routed to the offline
	// fallback (AI gateway) or retried with a bounded budget (lookup client).
	ErrKindTransient RemoteErrorKind = "TRANSIENT"

	// ErrKindUnavailable marks a service that is not configured at all.
	ErrKindUnavailable RemoteErrorKind = "UNAVAILABLE"
)

// RemoteError is a tagged remote failure.
type RemoteError struct {
	Kind RemoteErrorKind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap returns the underlying cause.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemoteError creates a tagged remote error.
func NewRemoteError(kind RemoteErrorKind, op string, err error) *RemoteError {
	return &RemoteError{Kind: kind, Op: op, Err: err}
}

// IsQuotaExceeded reports whether err is a quota exhaustion failure.
func IsQuotaExceeded(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == ErrKindQuota
}

// IsUnavailable reports whether err marks an unconfigured service.
func IsUnavailable(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == ErrKindUnavailable
}
