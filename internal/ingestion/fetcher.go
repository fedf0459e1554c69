package ingestion

import (
	"context"
	"iter"
	"log/slog"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/core/aggregation"
	pipelineerr "github.com/ledgerline/reportsync/internal/core/errors"
)

// ReportAPI is the remote marketplace report endpoint.
type ReportAPI interface {
	// FetchPage returns the rows of one window with natural id greater than Cursor.
	// An empty slice means the window is exhausted.
	FetchPage(ctx context.Context, req PageRequest) ([]v1.RawRow, error)
}

// PageRequest identifies one page of one window.
type PageRequest struct {
	TenantID    string
	WindowStart time.Time
	WindowEnd   time.Time
	Cursor      int64
	Granularity aggregation.Granularity
}

// FetchRequest is one import run over an inclusive date range.
type FetchRequest struct {
	TenantID    string
	DateFrom    time.Time
	DateTo      time.Time
	Granularity aggregation.Granularity
}

// Page is one non-empty batch of raw rows, together with the cursor it was requested with.
type Page struct {
	Window v1.Window
	Cursor int64
	Rows   []v1.RawRow
}

// WindowedFetcher splits a date range into windows and pages each one by natural row id.
type WindowedFetcher struct {
	api ReportAPI
}

func NewWindowedFetcher(api ReportAPI) *WindowedFetcher {
	if api == nil {
		panic("ingestion: report api must not be nil")
	}
	return &WindowedFetcher{api: api}
}

// Windows returns the fetch windows of a request.
func (f *WindowedFetcher) Windows(req FetchRequest) ([]v1.Window, error) {
	return aggregation.SplitWindows(req.DateFrom, req.DateTo, req.Granularity)
}

// Fetch yields every page of every window in order. The sequence stops after the first error.
func (f *WindowedFetcher) Fetch(ctx context.Context, req FetchRequest) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		windows, err := f.Windows(req)
		if err != nil {
			yield(Page{}, err)
			return
		}

		for _, w := range windows {
			if !f.pageWindow(ctx, req.TenantID, req.Granularity, w, yield) {
				return
			}
		}
	}
}

// FetchWindow yields the pages of a single window.
func (f *WindowedFetcher) FetchWindow(
	ctx context.Context,
	tenantID string,
	g aggregation.Granularity,
	w v1.Window,
) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		f.pageWindow(ctx, tenantID, g, w, yield)
	}
}

// pageWindow walks one window. It returns false when the consumer stopped or an error was yielded.
func (f *WindowedFetcher) pageWindow(
	ctx context.Context,
	tenantID string,
	g aggregation.Granularity,
	w v1.Window,
	yield func(Page, error) bool,
) bool {
	var cursor int64
	pages := 0

	for {
		if err := ctx.Err(); err != nil {
			yield(Page{}, err)
			return false
		}

		rows, err := f.api.FetchPage(ctx, PageRequest{
			TenantID:    tenantID,
			WindowStart: w.Start,
			WindowEnd:   w.End,
			Cursor:      cursor,
			Granularity: g,
		})
		if err != nil {
			yield(Page{}, &pipelineerr.TransportError{
				TenantID: tenantID,
				Window:   w,
				Cursor:   cursor,
				Err:      err,
			})
			return false
		}

		if len(rows) == 0 {
			slog.Debug("[Fetcher] Window exhausted",
				"tenant_id", tenantID,
				"window", w.String(),
				"pages", pages)
			return true
		}
		pages++

		maxID := maxNaturalID(rows)
		if !yield(Page{Window: w, Cursor: cursor, Rows: rows}, nil) {
			return false
		}

		if maxID <= cursor {
			slog.Warn("[Fetcher] Cursor did not advance, stopping window",
				"tenant_id", tenantID,
				"window", w.String(),
				"cursor", cursor,
				"page_max_id", maxID,
				"rows", len(rows))
			return true
		}
		cursor = maxID
	}
}

func maxNaturalID(rows []v1.RawRow) int64 {
	var maxID int64
	for _, raw := range rows {
		if id, ok := raw.NaturalID(); ok && id > maxID {
			maxID = id
		}
	}
	return maxID
}
