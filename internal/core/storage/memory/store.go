// Package memory is an in-memory implementation of the storage interfaces.
// Useful for tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/core/storage"
)

type rowKey struct {
	tenantID string
	rowID    int64
}

type periodKey struct {
	tenantID   string
	start, end time.Time
}

// Store keeps every entity in maps guarded by one RWMutex.
type Store struct {
	mu         sync.RWMutex
	rows       map[rowKey]*v1.ReportRow
	mappings   map[string][]v1.CategoryMapping
	categories map[string]map[int64]*v1.Category
	documents  map[periodKey]*v1.FinanceDocument
	recomputes []*v1.FinanceDocument
	upserts    int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		rows:       make(map[rowKey]*v1.ReportRow),
		mappings:   make(map[string][]v1.CategoryMapping),
		categories: make(map[string]map[int64]*v1.Category),
		documents:  make(map[periodKey]*v1.FinanceDocument),
	}
}

func (s *Store) UpsertRows(ctx context.Context, rows []*v1.ReportRow) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	written := make(map[rowKey]struct{}, len(rows))
	for _, row := range rows {
		key := rowKey{row.TenantID, row.RowID}
		cp := *row
		if existing, ok := s.rows[key]; ok {
			cp.CreatedAt = existing.CreatedAt
		}
		s.rows[key] = &cp
		written[key] = struct{}{}
	}
	s.upserts++
	return len(written), nil
}

func (s *Store) RowsInPeriod(
	ctx context.Context,
	tenantID string,
	from, to time.Time,
	afterRowID int64,
	limit int,
) ([]*v1.ReportRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*v1.ReportRow
	for key, row := range s.rows {
		if key.tenantID != tenantID || key.rowID <= afterRowID || row.ReportedAt == nil {
			continue
		}
		if row.ReportedAt.Before(from) || !row.ReportedAt.Before(to) {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RowID < out[j].RowID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Row returns a copy of one stored row.
func (s *Store) Row(tenantID string, rowID int64) (*v1.ReportRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[rowKey{tenantID, rowID}]
	if !ok {
		return nil, false
	}
	cp := *row
	return &cp, true
}

// RowCount returns the number of stored rows of a tenant.
func (s *Store) RowCount(tenantID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.rows {
		if key.tenantID == tenantID {
			n++
		}
	}
	return n
}

// UpsertCalls returns how many batches were written.
func (s *Store) UpsertCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.upserts
}

// PutMapping adds a mapping. A zero ID gets the next free one.
func (s *Store) PutMapping(m v1.CategoryMapping) v1.CategoryMapping {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == 0 {
		m.ID = int64(len(s.mappings[m.TenantID]) + 1)
	}
	s.mappings[m.TenantID] = append(s.mappings[m.TenantID], m)
	return m
}

func (s *Store) ActiveMappings(ctx context.Context, tenantID string) ([]v1.CategoryMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []v1.CategoryMapping
	for _, m := range s.mappings[tenantID] {
		if m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutCategory adds or replaces a category.
func (s *Store) PutCategory(c v1.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.categories[c.TenantID]
	if !ok {
		byID = make(map[int64]*v1.Category)
		s.categories[c.TenantID] = byID
	}
	cp := c
	byID[c.ID] = &cp
}

// DeleteCategory removes a category, as archiving does in the database.
func (s *Store) DeleteCategory(tenantID string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories[tenantID], id)
}

func (s *Store) GetCategory(ctx context.Context, tenantID string, id int64) (*v1.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[tenantID][id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) GetCategories(ctx context.Context, tenantID string, ids []int64) ([]*v1.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*v1.Category
	for _, id := range ids {
		if c, ok := s.categories[tenantID][id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) CreateDocument(ctx context.Context, doc *v1.FinanceDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := periodKey{doc.TenantID, doc.PeriodStart.UTC(), doc.PeriodEnd.UTC()}
	if _, exists := s.documents[key]; exists {
		return storage.ErrDuplicate
	}

	cp := *doc
	cp.Lines = append([]v1.DocumentLine(nil), doc.Lines...)
	s.documents[key] = &cp
	return nil
}

// Documents returns every stored document of a tenant ordered by period start.
func (s *Store) Documents(tenantID string) []*v1.FinanceDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*v1.FinanceDocument
	for key, doc := range s.documents {
		if key.tenantID == tenantID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodStart.Before(out[j].PeriodStart) })
	return out
}

func (s *Store) EnqueueRecompute(ctx context.Context, doc *v1.FinanceDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *doc
	s.recomputes = append(s.recomputes, &cp)
	return nil
}

// RecomputeRequests returns the documents queued for ledger recompute.
func (s *Store) RecomputeRequests() []*v1.FinanceDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*v1.FinanceDocument(nil), s.recomputes...)
}

var (
	_ storage.ReportRowStore = (*Store)(nil)
	_ storage.MappingStore   = (*Store)(nil)
	_ storage.CategoryStore  = (*Store)(nil)
	_ storage.DocumentStore  = (*Store)(nil)
	_ storage.RecomputeQueue = (*Store)(nil)
)
