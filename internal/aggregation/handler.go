package aggregation

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	coreagg "github.com/ledgerline/reportsync/internal/core/aggregation"
	httperr "github.com/ledgerline/reportsync/internal/core/errors"
	"github.com/shopspring/decimal"
)

type aggregateRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

// AggregateResponse is what the aggregation trigger returns.
// Totals can be posted back unchanged to the document trigger.
type AggregateResponse struct {
	TenantID    string                    `json:"tenant_id"`
	PeriodStart string                    `json:"period_start"`
	PeriodEnd   string                    `json:"period_end"`
	Totals      map[int64]decimal.Decimal `json:"totals"`
	Unmapped    []coreagg.UnmappedGroup   `json:"unmapped"`
	RowsScanned int64                     `json:"rows_scanned"`
	RowsMapped  int64                     `json:"rows_mapped"`
}

// AggregateHandler aggregates a period and returns the totals without persisting anything.
func (s *Service) AggregateHandler(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	var body aggregateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		slog.Warn("[Aggregator] Invalid aggregation request", "tenant_id", tenantID, "error", err)
		writeError(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, "Invalid JSON body")
		return
	}

	start, end, err := ParsePeriod(body.PeriodStart, body.PeriodEnd)
	if err != nil {
		writeError(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, err.Error())
		return
	}

	result, err := s.AggregatePeriod(c.Request.Context(), tenantID, start, end)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			writeError(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, err.Error())
			return
		}
		slog.Error("[Aggregator] Aggregation failed", "tenant_id", tenantID, "error", err)
		writeError(c, http.StatusInternalServerError, httperr.HttpInternalError, "Failed to aggregate period")
		return
	}

	c.JSON(http.StatusOK, AggregateResponse{
		TenantID:    tenantID,
		PeriodStart: body.PeriodStart,
		PeriodEnd:   body.PeriodEnd,
		Totals:      result.Totals,
		Unmapped:    result.Unmapped(),
		RowsScanned: result.RowsScanned,
		RowsMapped:  result.RowsMapped,
	})
}

// ParsePeriod parses a YYYY-MM-DD pair.
func ParsePeriod(start, end string) (time.Time, time.Time, error) {
	from, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("period_start must be YYYY-MM-DD")
	}
	to, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("period_end must be YYYY-MM-DD")
	}
	return from, to, nil
}

func writeError(c *gin.Context, status int, errorType, message string) {
	c.JSON(status, httperr.ErrorResponse{
		ErrorType: errorType,
		Message:   message,
	})
}
