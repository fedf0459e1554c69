package projection

import (
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

func rollupForGranularity(daily map[time.Time]TotalValue, granularity string, period v1.Period) []TotalValue {
	switch granularity {
	case "1d":
		return rollupToDay(daily, period)
	case "1w":
		return rollupToWeek(daily, period)
	default:
		return rollupTotal(daily, period)
	}
}

// rollupTotal sums every day into a single value for the whole period.
func rollupTotal(daily map[time.Time]TotalValue, period v1.Period) []TotalValue {
	total := TotalValue{
		WindowStart: period.Start,
		WindowEnd:   period.EndExclusive(),
		Value:       decimal.Zero,
	}
	for _, b := range daily {
		total.Value = total.Value.Add(b.Value)
		total.RowCount += b.RowCount
	}
	return []TotalValue{total}
}

// rollupToDay emits one bucket per day of the period, zero-valued where no row contributed.
func rollupToDay(daily map[time.Time]TotalValue, period v1.Period) []TotalValue {
	var results []TotalValue
	for current := period.Start; current.Before(period.EndExclusive()); current = current.Add(day) {
		b := daily[current]
		results = append(results, TotalValue{
			WindowStart: current,
			WindowEnd:   current.Add(day),
			Value:       b.Value,
			RowCount:    b.RowCount,
		})
	}
	return results
}

// rollupToWeek groups days into 7-day buckets aligned to the period start.
// The last bucket is clipped to the period end.
func rollupToWeek(daily map[time.Time]TotalValue, period v1.Period) []TotalValue {
	end := period.EndExclusive()

	var results []TotalValue
	for weekStart := period.Start; weekStart.Before(end); weekStart = weekStart.Add(7 * day) {
		weekEnd := weekStart.Add(7 * day)
		if weekEnd.After(end) {
			weekEnd = end
		}

		bucket := TotalValue{WindowStart: weekStart, WindowEnd: weekEnd, Value: decimal.Zero}
		for current := weekStart; current.Before(weekEnd); current = current.Add(day) {
			b := daily[current]
			bucket.Value = bucket.Value.Add(b.Value)
			bucket.RowCount += b.RowCount
		}
		results = append(results, bucket)
	}
	return results
}
