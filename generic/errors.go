/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages should wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input errors - Malformed breakdowns, periods, settings
  2. Store errors - Missing or conflicting work entries
  3. Per-day errors - A day that had to be left out of a month

RECOVERY POLICY:
  Per-day errors are NEVER fatal for a month. The aggregator records a
  SkippedDayError, logs it, and keeps folding the remaining days.

SEE ALSO:
  - monthly/aggregator.go: Produces SkippedDayError
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedBreakdown is returned when a daily breakdown cannot be
	// decoded or carries impossible values (e.g., negative hours).
	ErrMalformedBreakdown = errors.New("malformed daily breakdown")

	// ErrEntryNotFound is returned when a referenced work entry doesn't exist.
	ErrEntryNotFound = errors.New("work entry not found")

	// ErrDuplicateEntry is returned when a second entry is logged for a date
	// that already has one.
	ErrDuplicateEntry = errors.New("work entry already exists for date")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidSettings is returned when settings fail validation.
	ErrInvalidSettings = errors.New("invalid settings")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SkippedDayError records why one day was left out of a monthly aggregate.
type SkippedDayError struct {
	EntryID string
	Date    TimePoint
	Err     error
}

func (e *SkippedDayError) Error() string {
	return fmt.Sprintf("day %s (entry %s) skipped: %v", e.Date, e.EntryID, e.Err)
}

func (e *SkippedDayError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedBreakdown) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidSettings)
}

// IsConflict returns true if the error reports a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}
