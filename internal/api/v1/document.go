package v1

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period is an inclusive range of calendar days.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod normalizes both bounds to midnight UTC.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: TruncateDay(start), End: TruncateDay(end)}
	if p.Start.IsZero() || p.End.IsZero() {
		return Period{}, fmt.Errorf("period start and end are required")
	}
	if p.End.Before(p.Start) {
		return Period{}, fmt.Errorf("period end %s is before start %s",
			p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly))
	}
	return p, nil
}

// EndExclusive is the first instant after the period.
func (p Period) EndExclusive() time.Time {
	return p.End.AddDate(0, 0, 1)
}

func (p Period) String() string {
	return p.Start.Format(time.DateOnly) + ".." + p.End.Format(time.DateOnly)
}

// TruncateDay drops the time-of-day, interpreting t in UTC.
func TruncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FinanceDocument is the durable output of one aggregation run for one tenant and period.
type FinanceDocument struct {
	ID          uuid.UUID      `json:"id"`
	TenantID    string         `json:"tenant_id"`
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	Lines       []DocumentLine `json:"lines"`
	CreatedAt   time.Time      `json:"created_at"`
}

// DocumentLine is the signed total for one category.
type DocumentLine struct {
	Position     int             `json:"position"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
}

// Total sums all line amounts.
func (d *FinanceDocument) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.Amount)
	}
	return total
}

// Window is one fetch sub-range of an import, [Start, End] inclusive, both at midnight UTC.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) String() string {
	return w.Start.Format(time.DateOnly) + ".." + w.End.Format(time.DateOnly)
}
