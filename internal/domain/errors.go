package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoSourceConfigured is returned when a period resolves to a backend that has no source wired.
var ErrNoSourceConfigured = errors.New("no transaction source configured for backend")

// MalformedRowError reports a raw row that could not be normalized.
// The build skips such rows and counts them.
type MalformedRowError struct {
	Source SourceKind
	Field  string
	Value  string
	Err    error
}

func (e *MalformedRowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s row: field %s=%q: %v", e.Source, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed %s row: missing %s", e.Source, e.Field)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// FutureTransactionError reports a transaction dated after the as-of date of a build.
// It is fatal: every recency in the build would be wrong.
type FutureTransactionError struct {
	CustomerID string
	OccurredOn time.Time
	AsOf       time.Time
}

func (e *FutureTransactionError) Error() string {
	return fmt.Sprintf("transaction for customer %s on %s is after as-of date %s",
		e.CustomerID, e.OccurredOn.Format(time.DateOnly), e.AsOf.Format(time.DateOnly))
}
