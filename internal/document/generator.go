// Package document turns per-category totals into persisted finance documents.
package document

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	pipelineerr "github.com/ledgerline/reportsync/internal/core/errors"
	"github.com/ledgerline/reportsync/internal/core/storage"
	"github.com/shopspring/decimal"
)

// CategoryLookup returns the categories among ids that currently exist, keyed by id.
// It must answer from the authoritative store so archived categories are never written.
type CategoryLookup interface {
	Lookup(ctx context.Context, tenantID string, ids []int64) (map[int64]*v1.Category, error)
}

// Recomputer rebuilds derived ledgers once a document is stored.
type Recomputer interface {
	Recompute(ctx context.Context, doc *v1.FinanceDocument) error
}

// Generator persists finance documents.
type Generator struct {
	categories CategoryLookup
	store      storage.DocumentStore
	recomputer Recomputer
	now        func() time.Time
}

func NewGenerator(categories CategoryLookup, store storage.DocumentStore, recomputer Recomputer) *Generator {
	if categories == nil || store == nil || recomputer == nil {
		panic("document: categories, store and recomputer are required")
	}
	return &Generator{
		categories: categories,
		store:      store,
		recomputer: recomputer,
		now:        time.Now,
	}
}

// Generate stores one document for the period with a line per surviving category, ordered by category id.
// Returns ErrEmptyAggregation without writing anything when no line would remain.
// A failed recompute is logged and does not undo the stored document.
func (g *Generator) Generate(
	ctx context.Context,
	tenantID string,
	period v1.Period,
	totals map[int64]decimal.Decimal,
) (*v1.FinanceDocument, error) {
	if len(totals) == 0 {
		return nil, pipelineerr.ErrEmptyAggregation
	}

	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	live, err := g.categories.Lookup(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]v1.DocumentLine, 0, len(ids))
	for _, id := range ids {
		category, found := live[id]
		if !found {
			slog.Debug("[Documents] Dropping total for missing category",
				"tenant_id", tenantID,
				"category_id", id,
				"amount", totals[id].String())
			continue
		}
		lines = append(lines, v1.DocumentLine{
			Position:     len(lines) + 1,
			CategoryID:   id,
			CategoryName: category.Name,
			Amount:       totals[id],
		})
	}
	if len(lines) == 0 {
		return nil, pipelineerr.ErrEmptyAggregation
	}

	doc := &v1.FinanceDocument{
		ID:          uuid.New(),
		TenantID:    tenantID,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Lines:       lines,
		CreatedAt:   g.now().UTC(),
	}
	if err := g.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store finance document for %s: %w", period, err)
	}

	slog.Info("[Documents] Finance document generated",
		"tenant_id", tenantID,
		"document_id", doc.ID,
		"period", period.String(),
		"lines", len(lines),
		"dropped", len(ids)-len(lines),
		"total", doc.Total().String())

	if err := g.recomputer.Recompute(ctx, doc); err != nil {
		slog.Error("[Documents] Ledger recompute failed",
			"tenant_id", tenantID,
			"document_id", doc.ID,
			"error", err)
	}
	return doc, nil
}
