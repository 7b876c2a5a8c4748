package store

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a requested row does not exist.
	// Expected for settings that have never been written.
	ErrNotFound = errors.New("not found")

	// ErrAuthFailed marks an authentication failure against the store or
	// an upstream API. Boundary failure: fatal for the current run.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrUnavailable marks an unreachable backend. Boundary failure.
	ErrUnavailable = errors.New("store unavailable")
)

// StatusError carries an HTTP status from a REST-backed implementation.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case 401, 403:
		return ErrAuthFailed
	}
	return nil
}

// IsBoundaryFailure reports whether an error should abort the run.
// Record-level problems are accumulated into the run summary instead;
// only unreachable or unauthenticated backends are fatal.
func IsBoundaryFailure(err error) bool {
	return errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrUnavailable)
}
