package errors

import (
	"errors"
	"fmt"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
)

var (
	// ErrSkippableRow marks a single raw row that cannot be ingested (no natural id).
	// It is logged and counted, never propagated past the importer.
	ErrSkippableRow = errors.New("skippable report row")

	// ErrEmptyAggregation is returned when there are no category totals to put in a document.
	// It is an expected business outcome, not a system fault.
	ErrEmptyAggregation = errors.New("nothing to generate: no category totals")
)

// TransportError wraps a failure talking to the marketplace API.
// It aborts the whole import run; batches already written stay committed.
type TransportError struct {
	TenantID string
	Window   v1.Window
	Cursor   int64
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch report page (tenant=%s window=%s cursor=%d): %v",
		e.TenantID, e.Window, e.Cursor, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed batch write. Only that batch is lost; re-running the
// window is safe because the write is an idempotent upsert.
type PersistenceError struct {
	TenantID string
	Window   v1.Window
	Rows     int
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("upsert batch of %d rows (tenant=%s window=%s): %v",
		e.Rows, e.TenantID, e.Window, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
