package projection

import (
	"time"

	"github.com/shopspring/decimal"
)

// TotalsQueryRequest asks for one category's signed totals over [Start, End] (whole days).
type TotalsQueryRequest struct {
	TenantID    string
	CategoryID  int64
	Start       time.Time
	End         time.Time
	Granularity string // total | 1d | 1w, default total
}

// TotalValue is one bucket of the series.
type TotalValue struct {
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	Value       decimal.Decimal `json:"value"`
	RowCount    int64           `json:"row_count"`
}

// TotalsQueryResponse is the category timeline.
type TotalsQueryResponse struct {
	TenantID     string       `json:"tenant_id"`
	CategoryID   int64        `json:"category_id"`
	CategoryName string       `json:"category_name"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	Granularity  string       `json:"granularity"`
	Values       []TotalValue `json:"values"`
}
