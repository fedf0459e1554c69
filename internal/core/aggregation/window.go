package aggregation

import (
	"fmt"
	"strings"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
)

// Granularity is the size of one fetch window in days.
type Granularity int

const (
	Daily  Granularity = 1
	Weekly Granularity = 7
)

// ParseGranularity accepts "daily"/"weekly" plus the "Xd" day syntax for 1 and 7 days.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "1d":
		return Daily, nil
	case "weekly", "week", "7d":
		return Weekly, nil
	case "":
		return 0, fmt.Errorf("granularity must not be empty")
	}
	return 0, fmt.Errorf("invalid granularity %q (must be daily or weekly)", s)
}

// Days returns the window length in days.
func (g Granularity) Days() int { return int(g) }

// APIPeriod is the value the marketplace API expects for its "period" parameter.
func (g Granularity) APIPeriod() string {
	if g == Weekly {
		return "weekly"
	}
	return "daily"
}

func (g Granularity) String() string { return g.APIPeriod() }

// SplitWindows partitions [from, to] into contiguous, non-overlapping windows of g days.
// Time-of-day is ignored on both bounds and the last window is clipped to to.
//
// Example: 2024-01-01..2024-01-10 weekly → [01-01,01-07], [01-08,01-10]
func SplitWindows(from, to time.Time, g Granularity) ([]v1.Window, error) {
	if g != Daily && g != Weekly {
		return nil, fmt.Errorf("unsupported granularity %d", int(g))
	}
	from = v1.TruncateDay(from)
	to = v1.TruncateDay(to)
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("date_from and date_to are required")
	}
	if to.Before(from) {
		return nil, fmt.Errorf("date_to %s is before date_from %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	var windows []v1.Window
	for start := from; !start.After(to); start = start.AddDate(0, 0, g.Days()) {
		end := start.AddDate(0, 0, g.Days()-1)
		if end.After(to) {
			end = to
		}
		windows = append(windows, v1.Window{Start: start, End: end})
	}
	return windows, nil
}
