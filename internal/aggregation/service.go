// Package aggregation runs signed category aggregation over a tenant's persisted report rows.
package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	coreagg "github.com/ledgerline/reportsync/internal/core/aggregation"
	"github.com/ledgerline/reportsync/internal/core/storage"
	"github.com/ledgerline/reportsync/internal/mapping"
)

const DefaultPageSize = 5000

// ErrInvalidPeriod is returned for a missing or inverted period.
var ErrInvalidPeriod = errors.New("invalid aggregation period")

// Service pages persisted rows through the mapping resolver into a signed accumulator.
type Service struct {
	rows     storage.ReportRowStore
	loader   *mapping.Loader
	pageSize int
}

func NewService(rows storage.ReportRowStore, loader *mapping.Loader, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		rows:     rows,
		loader:   loader,
		pageSize: pageSize,
	}
}

// RegisterRoutes registers the aggregation trigger.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/tenants/:tenant_id/aggregations", s.AggregateHandler)
}

// AggregatePeriod totals every row of the tenant reported within [start, end] (whole days).
// Mappings are loaded once per call, so a run sees one consistent mapping set.
func (s *Service) AggregatePeriod(
	ctx context.Context,
	tenantID string,
	start, end time.Time,
) (*coreagg.AggregationResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant_id is required", ErrInvalidPeriod)
	}
	period, err := v1.NewPeriod(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}

	resolver, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result := coreagg.NewAggregationResult()

	var cursor int64
	for {
		rows, err := s.rows.RowsInPeriod(ctx, tenantID, period.Start, period.EndExclusive(), cursor, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to read report rows after %d: %w", cursor, err)
		}

		for _, row := range rows {
			coreagg.Accumulate(result, row, resolver.Resolve(row))
			cursor = row.RowID
		}

		if len(rows) < s.pageSize {
			break
		}
	}

	warnUnknownFields(tenantID, result.UnknownFields)

	slog.Info("[Aggregator] Period aggregated",
		"tenant_id", tenantID,
		"period", period.String(),
		"rows_scanned", result.RowsScanned,
		"rows_mapped", result.RowsMapped,
		"rows_unmapped", result.UnmappedRows(),
		"categories", len(result.Totals),
		"duration_ms", time.Since(started).Milliseconds())
	return result, nil
}

// warnUnknownFields logs each misconfigured source field once per run.
func warnUnknownFields(tenantID string, unknown map[string]int64) {
	if len(unknown) == 0 {
		return
	}
	names := make([]string, 0, len(unknown))
	for name := range unknown {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		slog.Warn("[Aggregator] Mapping references an unknown source field",
			"tenant_id", tenantID,
			"source_field", name,
			"rows", unknown[name])
	}
}
