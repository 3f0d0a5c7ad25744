package readiness

import (
	"errors"
	"fmt"
)

var (
	// ErrRetriesExhausted matches every *ExhaustedError.
	ErrRetriesExhausted = errors.New("readiness: retries exhausted")
	// ErrCanceled matches every *CanceledError.
	ErrCanceled = errors.New("readiness: canceled")
	// ErrNilAttempt is returned by Wait when no attempt function is supplied.
	ErrNilAttempt = errors.New("readiness: attempt function is nil")
)

// ExhaustedError reports that every allowed attempt failed. Callers should
// treat it as fatal and not proceed to serve traffic.
type ExhaustedError struct {
	Target   string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("%s: not ready after %d attempts", e.Target, e.Attempts)
	}
	return fmt.Sprintf("%s: not ready after %d attempts: %v", e.Target, e.Attempts, e.Last)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// CanceledError reports that the caller's context ended before the
// dependency became ready. Attempts counts the invocations that did run.
type CanceledError struct {
	Target   string
	Attempts int
	Cause    error
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("%s: readiness wait canceled after %d attempts: %v", e.Target, e.Attempts, e.Cause)
}

func (e *CanceledError) Is(target error) bool {
	return target == ErrCanceled
}

func (e *CanceledError) Unwrap() error {
	return e.Cause
}

// AttemptError describes one transient failure. It is handed to observers
// and logged; Wait never returns it.
type AttemptError struct {
	Target      string
	Attempt     int
	MaxAttempts int
	Err         error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s: attempt %d/%d failed: %v", e.Target, e.Attempt, e.MaxAttempts, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}
