// Package projection serves read-only category timelines computed from persisted report rows.
package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	coreagg "github.com/ledgerline/reportsync/internal/core/aggregation"
	"github.com/ledgerline/reportsync/internal/core/storage"
	"github.com/ledgerline/reportsync/internal/mapping"
	"github.com/shopspring/decimal"
)

const (
	rowQueryBatchSize = 5000
	maxQueryDays      = 366
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid totals query")

	// ErrCategoryNotFound is returned when the category does not exist for the tenant.
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryFinder resolves the category a timeline is requested for.
type CategoryFinder interface {
	FindByID(ctx context.Context, tenantID string, id int64) (*v1.Category, bool, error)
}

var validGranularities = map[string]bool{
	"total": true,
	"1d":    true,
	"1w":    true,
}

// Service projects one category's contributions onto day buckets and rolls them up.
// Nothing is persisted; every query reads the rows of its range.
type Service struct {
	rows       storage.ReportRowStore
	loader     *mapping.Loader
	categories CategoryFinder
	batchSize  int
}

func NewService(rows storage.ReportRowStore, loader *mapping.Loader, categories CategoryFinder) *Service {
	return &Service{
		rows:       rows,
		loader:     loader,
		categories: categories,
		batchSize:  rowQueryBatchSize,
	}
}

// QueryTotals returns the category's signed totals for the requested granularity.
func (s *Service) QueryTotals(ctx context.Context, req TotalsQueryRequest) (*TotalsQueryResponse, error) {
	req, period, err := normalizeAndValidate(req)
	if err != nil {
		return nil, err
	}

	category, found, err := s.categories.FindByID(ctx, req.TenantID, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, req.CategoryID)
	}

	resolver, err := s.loader.Load(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	daily, err := s.dailyBuckets(ctx, req, period, resolver)
	if err != nil {
		return nil, err
	}

	return &TotalsQueryResponse{
		TenantID:     req.TenantID,
		CategoryID:   req.CategoryID,
		CategoryName: category.Name,
		Start:        period.Start,
		End:          period.End,
		Granularity:  req.Granularity,
		Values:       rollupForGranularity(daily, req.Granularity, period),
	}, nil
}

func normalizeAndValidate(req TotalsQueryRequest) (TotalsQueryRequest, v1.Period, error) {
	if req.Granularity == "" {
		req.Granularity = "total"
	}
	if !validGranularities[req.Granularity] {
		return req, v1.Period{}, invalidQueryf("unsupported granularity %q (must be total, 1d or 1w)", req.Granularity)
	}
	if req.TenantID == "" {
		return req, v1.Period{}, invalidQueryf("tenant_id is required")
	}
	if req.CategoryID <= 0 {
		return req, v1.Period{}, invalidQueryf("category_id must be positive")
	}

	period, err := v1.NewPeriod(req.Start, req.End)
	if err != nil {
		return req, v1.Period{}, invalidQueryf("%v", err)
	}
	if days := int(period.EndExclusive().Sub(period.Start).Hours() / 24); days > maxQueryDays {
		return req, v1.Period{}, invalidQueryf("range of %d days exceeds the %d day limit", days, maxQueryDays)
	}
	return req, period, nil
}

// dailyBuckets pages the period's rows and sums the category's contributions per reported day.
func (s *Service) dailyBuckets(
	ctx context.Context,
	req TotalsQueryRequest,
	period v1.Period,
	resolver *mapping.Resolver,
) (map[time.Time]TotalValue, error) {
	buckets := make(map[time.Time]TotalValue)

	var cursor int64
	for {
		rows, err := s.rows.RowsInPeriod(ctx, req.TenantID, period.Start, period.EndExclusive(), cursor, s.batchSize)
		if err != nil {
			return nil, fmt.Errorf("query report rows: %w", err)
		}

		for _, row := range rows {
			cursor = row.RowID
			if row.ReportedAt == nil {
				continue
			}
			contribution, matched := categoryContribution(row, resolver.Resolve(row), req.CategoryID)
			if !matched {
				continue
			}
			day := v1.TruncateDay(*row.ReportedAt)
			b := buckets[day]
			b.Value = b.Value.Add(contribution)
			b.RowCount++
			buckets[day] = b
		}

		if len(rows) < s.batchSize {
			break
		}
	}

	slog.Debug("[Projection] Category days computed",
		"tenant_id", req.TenantID,
		"category_id", req.CategoryID,
		"days_with_data", len(buckets))
	return buckets, nil
}

// categoryContribution applies the same field and sign rules as the period aggregator,
// restricted to instructions that target categoryID.
func categoryContribution(row *v1.ReportRow, instructions []v1.Instruction, categoryID int64) (decimal.Decimal, bool) {
	total := decimal.Zero
	matched := false
	for _, ins := range instructions {
		if ins.CategoryID != categoryID {
			continue
		}
		value, read := coreagg.ExtractDecimal(row, ins.SourceField)
		if read != coreagg.FieldValue {
			continue
		}
		total = total.Add(value.Mul(ins.SignMultiplier))
		matched = true
	}
	return total, matched
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
