package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
)

var (
	// ErrDuplicate is returned when a finance document already exists for the tenant and period.
	ErrDuplicate = errors.New("document already exists for period")

	// ErrNotFound is returned by lookups that found nothing.
	ErrNotFound = errors.New("not found")
)

// ReportRowStore persists normalized marketplace rows.
type ReportRowStore interface {
	// UpsertRows writes one batch in a single atomic statement keyed by (tenant_id, row_id).
	// Existing rows get every mutable column overwritten, created_at is preserved.
	// Returns the number of distinct rows written.
	UpsertRows(ctx context.Context, rows []*v1.ReportRow) (int, error)

	// RowsInPeriod pages through a tenant's rows whose reported_at falls in [from, to),
	// ordered by row_id. afterRowID=0 means "from the beginning".
	RowsInPeriod(ctx context.Context, tenantID string, from, to time.Time, afterRowID int64, limit int) ([]*v1.ReportRow, error)
}

// MappingStore is the read side of category mapping administration.
type MappingStore interface {
	// ActiveMappings returns every active mapping of the tenant, ordered by id.
	ActiveMappings(ctx context.Context, tenantID string) ([]v1.CategoryMapping, error)
}

// CategoryStore looks categories up by id.
type CategoryStore interface {
	// GetCategory returns ErrNotFound when the category does not exist or was archived.
	GetCategory(ctx context.Context, tenantID string, id int64) (*v1.Category, error)

	// GetCategories returns the live categories among ids; missing ones are simply absent.
	GetCategories(ctx context.Context, tenantID string, ids []int64) ([]*v1.Category, error)
}

// DocumentStore persists finance documents.
type DocumentStore interface {
	// CreateDocument writes the document and its lines in one transaction.
	// Returns ErrDuplicate if the tenant already has a document for the same period.
	CreateDocument(ctx context.Context, doc *v1.FinanceDocument) error
}

// RecomputeQueue records that derived ledgers must be rebuilt from a document.
type RecomputeQueue interface {
	EnqueueRecompute(ctx context.Context, doc *v1.FinanceDocument) error
}
