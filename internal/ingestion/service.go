package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/core/aggregation"
	pipelineerr "github.com/ledgerline/reportsync/internal/core/errors"
	"github.com/ledgerline/reportsync/internal/core/storage"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidRange is returned for an unusable date range or granularity.
	ErrInvalidRange = errors.New("invalid import range")

	// ErrUnknownTenant is returned by ReportAPI implementations for tenants without credentials.
	ErrUnknownTenant = errors.New("unknown tenant")
)

// ImportResult summarizes one import run.
// On failure RowsProcessed still counts the rows committed before the error.
type ImportResult struct {
	RunID         uuid.UUID `json:"run_id"`
	RowsProcessed int       `json:"rows_processed"`
	RowsSkipped   int       `json:"rows_skipped"`
	Windows       int       `json:"windows"`
}

// Options tunes an import Service.
type Options struct {
	BatchSize          int
	WindowConcurrency  int
	DefaultGranularity aggregation.Granularity
}

// Service imports marketplace report rows for a tenant and date range.
type Service struct {
	fetcher *WindowedFetcher
	store   storage.ReportRowStore
	opts    Options
	now     func() time.Time
}

func NewService(api ReportAPI, store storage.ReportRowStore, opts Options) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.WindowConcurrency <= 0 {
		opts.WindowConcurrency = 1
	}
	if opts.DefaultGranularity == 0 {
		opts.DefaultGranularity = aggregation.Daily
	}
	return &Service{
		fetcher: NewWindowedFetcher(api),
		store:   store,
		opts:    opts,
		now:     time.Now,
	}
}

// RegisterRoutes registers the import trigger.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/tenants/:tenant_id/imports", s.ImportHandler)
}

// ImportPeriod fetches, normalizes and upserts every row of [req.DateFrom, req.DateTo].
// The first fetch or write error aborts the run; rows committed before it stay committed.
func (s *Service) ImportPeriod(ctx context.Context, req FetchRequest) (ImportResult, error) {
	if req.TenantID == "" {
		return ImportResult{}, fmt.Errorf("%w: tenant_id is required", ErrInvalidRange)
	}
	if req.Granularity == 0 {
		req.Granularity = s.opts.DefaultGranularity
	}

	windows, err := s.fetcher.Windows(req)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	result := ImportResult{RunID: uuid.New(), Windows: len(windows)}
	start := time.Now()

	slog.Info("[Importer] Import started",
		"tenant_id", req.TenantID,
		"run_id", result.RunID,
		"date_from", req.DateFrom.Format(time.DateOnly),
		"date_to", req.DateTo.Format(time.DateOnly),
		"granularity", req.Granularity.String(),
		"windows", len(windows))

	var processed, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.WindowConcurrency)
	for _, w := range windows {
		g.Go(func() error {
			return s.importWindow(gctx, req, result.RunID, w, &processed, &skipped)
		})
	}
	err = g.Wait()

	result.RowsProcessed = int(processed.Load())
	result.RowsSkipped = int(skipped.Load())

	if err != nil {
		slog.Error("[Importer] Import aborted",
			"tenant_id", req.TenantID,
			"run_id", result.RunID,
			"rows_processed", result.RowsProcessed,
			"rows_skipped", result.RowsSkipped,
			"error", err)
		return result, err
	}

	slog.Info("[Importer] Import completed",
		"tenant_id", req.TenantID,
		"run_id", result.RunID,
		"rows_processed", result.RowsProcessed,
		"rows_skipped", result.RowsSkipped,
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (s *Service) importWindow(
	ctx context.Context,
	req FetchRequest,
	runID uuid.UUID,
	w v1.Window,
	processed, skipped *atomic.Int64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	upserter := NewBatchUpserter(s.store, req.TenantID, w, s.opts.BatchSize)
	defer func() { processed.Add(int64(upserter.Committed())) }()

	for page, err := range s.fetcher.FetchWindow(ctx, req.TenantID, req.Granularity, w) {
		if err != nil {
			var transportErr *pipelineerr.TransportError
			if errors.As(err, &transportErr) && upserter.Pending() > 0 {
				// Rows already fetched are still worth keeping.
				if flushErr := upserter.Flush(ctx); flushErr != nil {
					slog.Warn("[Importer] Could not save fetched rows after transport error",
						"tenant_id", req.TenantID,
						"window", w.String(),
						"error", flushErr)
				}
			}
			return err
		}

		for _, raw := range page.Rows {
			row, err := Normalize(raw, req.TenantID, runID, s.now())
			if err != nil {
				if errors.Is(err, pipelineerr.ErrSkippableRow) {
					skipped.Add(1)
					slog.Warn("[Importer] Skipping report row",
						"tenant_id", req.TenantID,
						"window", w.String(),
						"error", err)
					continue
				}
				return err
			}
			if err := upserter.Add(ctx, row); err != nil {
				return err
			}
		}
	}

	return upserter.Flush(ctx)
}
