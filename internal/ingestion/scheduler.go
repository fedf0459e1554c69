package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/robfig/cron/v3"
)

// Importer is the part of Service the scheduler drives.
type Importer interface {
	ImportPeriod(ctx context.Context, req FetchRequest) (ImportResult, error)
}

// Scheduler re-imports a trailing range of days for every configured tenant on a cron schedule.
// Re-importing overlapping days is safe because rows are upserted by natural id.
type Scheduler struct {
	cron         *cron.Cron
	importer     Importer
	tenants      []string
	lookbackDays int
	now          func() time.Time
}

// NewScheduler parses the schedule (standard 5-field cron or descriptors like "@hourly").
func NewScheduler(schedule string, importer Importer, tenants []string, lookbackDays int) (*Scheduler, error) {
	if lookbackDays <= 0 {
		lookbackDays = 1
	}

	logger := slogCronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		importer:     importer,
		tenants:      tenants,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.runOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid import schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the cron loop until ctx is cancelled, then waits for a running import to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	slog.Info("[Scheduler] Starting import scheduler",
		"tenants", len(s.tenants),
		"lookback_days", s.lookbackDays)

	s.cron.Start()
	<-ctx.Done()

	slog.Info("[Scheduler] Stopping (context cancelled)")
	<-s.cron.Stop().Done()
	slog.Info("[Scheduler] Stopped")
	return nil
}

// runOnce imports [today-lookback, yesterday] for each tenant. One tenant failing does not stop the others.
func (s *Scheduler) runOnce(ctx context.Context) {
	today := v1.TruncateDay(s.now())
	from := today.AddDate(0, 0, -s.lookbackDays)
	to := today.AddDate(0, 0, -1)

	for _, tenantID := range s.tenants {
		if ctx.Err() != nil {
			return
		}
		result, err := s.importer.ImportPeriod(ctx, FetchRequest{
			TenantID: tenantID,
			DateFrom: from,
			DateTo:   to,
		})
		if err != nil {
			slog.Error("[Scheduler] Scheduled import failed",
				"tenant_id", tenantID,
				"rows_processed", result.RowsProcessed,
				"error", err)
			continue
		}
		slog.Info("[Scheduler] Scheduled import finished",
			"tenant_id", tenantID,
			"rows_processed", result.RowsProcessed,
			"rows_skipped", result.RowsSkipped)
	}
}

// slogCronLogger routes cron's internal logging through slog.
type slogCronLogger struct{}

func (slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("[Scheduler] cron: "+msg, keysAndValues...)
}

func (slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("[Scheduler] cron: "+msg, append(keysAndValues, "error", err)...)
}
