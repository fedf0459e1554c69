package ingestion

import (
	"context"
	"log/slog"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	pipelineerr "github.com/ledgerline/reportsync/internal/core/errors"
	"github.com/ledgerline/reportsync/internal/core/storage"
)

const DefaultBatchSize = 800

// BatchUpserter buffers normalized rows and writes them one batch per statement.
// It is owned by a single goroutine.
type BatchUpserter struct {
	store     storage.ReportRowStore
	tenantID  string
	window    v1.Window
	batchSize int
	buf       []*v1.ReportRow
	committed int
}

func NewBatchUpserter(store storage.ReportRowStore, tenantID string, window v1.Window, batchSize int) *BatchUpserter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchUpserter{
		store:     store,
		tenantID:  tenantID,
		window:    window,
		batchSize: batchSize,
		buf:       make([]*v1.ReportRow, 0, batchSize),
	}
}

// Add buffers a row and flushes once the batch is full.
func (u *BatchUpserter) Add(ctx context.Context, row *v1.ReportRow) error {
	u.buf = append(u.buf, row)
	if len(u.buf) >= u.batchSize {
		return u.Flush(ctx)
	}
	return nil
}

// Flush writes whatever is buffered. On failure the batch is dropped and a PersistenceError returned.
func (u *BatchUpserter) Flush(ctx context.Context) error {
	if len(u.buf) == 0 {
		return nil
	}

	batch := u.buf
	u.buf = make([]*v1.ReportRow, 0, u.batchSize)

	written, err := u.store.UpsertRows(ctx, batch)
	if err != nil {
		slog.Error("[Upserter] Batch write failed",
			"tenant_id", u.tenantID,
			"window", u.window.String(),
			"rows", len(batch),
			"error", err)
		return &pipelineerr.PersistenceError{
			TenantID: u.tenantID,
			Window:   u.window,
			Rows:     len(batch),
			Err:      err,
		}
	}

	u.committed += len(batch)
	slog.Debug("[Upserter] Batch committed",
		"tenant_id", u.tenantID,
		"window", u.window.String(),
		"rows", len(batch),
		"distinct_rows", written)
	return nil
}

// Committed is the number of rows durably written so far.
func (u *BatchUpserter) Committed() int {
	return u.committed
}

// Pending is the number of buffered rows not yet written.
func (u *BatchUpserter) Pending() int {
	return len(u.buf)
}
