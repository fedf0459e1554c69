package document

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	coreagg "github.com/ledgerline/reportsync/internal/core/aggregation"
	httperr "github.com/ledgerline/reportsync/internal/core/errors"
	"github.com/ledgerline/reportsync/internal/core/storage"
	"github.com/shopspring/decimal"
)

// Aggregator computes totals when a document request does not carry them.
type Aggregator interface {
	AggregatePeriod(ctx context.Context, tenantID string, start, end time.Time) (*coreagg.AggregationResult, error)
}

// Handler exposes document generation over HTTP.
type Handler struct {
	generator  *Generator
	aggregator Aggregator
}

func NewHandler(generator *Generator, aggregator Aggregator) *Handler {
	return &Handler{generator: generator, aggregator: aggregator}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/tenants/:tenant_id/documents", h.CreateDocument)
}

type createDocumentRequest struct {
	PeriodStart string                    `json:"period_start" binding:"required"`
	PeriodEnd   string                    `json:"period_end" binding:"required"`
	Totals      map[int64]decimal.Decimal `json:"totals"`
}

// CreateDocument generates a document from the posted totals, or aggregates the period first when totals is omitted.
func (h *Handler) CreateDocument(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	ctx := c.Request.Context()

	var body createDocumentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		slog.Warn("[Documents] Invalid document request", "tenant_id", tenantID, "error", err)
		writeError(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, "Invalid JSON body")
		return
	}

	period, err := parsePeriod(body.PeriodStart, body.PeriodEnd)
	if err != nil {
		writeError(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, err.Error())
		return
	}

	totals := body.Totals
	if totals == nil {
		result, err := h.aggregator.AggregatePeriod(ctx, tenantID, period.Start, period.End)
		if err != nil {
			slog.Error("[Documents] Aggregation before generation failed", "tenant_id", tenantID, "error", err)
			writeError(c, http.StatusInternalServerError, httperr.HttpInternalError, "Failed to aggregate period")
			return
		}
		totals = result.Totals
	}

	doc, err := h.generator.Generate(ctx, tenantID, period, totals)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, doc)
	case errors.Is(err, httperr.ErrEmptyAggregation):
		writeError(c, http.StatusUnprocessableEntity, httperr.HttpNothingToGenerate, "No category totals to put in a document")
	case errors.Is(err, storage.ErrDuplicate):
		writeError(c, http.StatusConflict, httperr.HttpDuplicateDocumentErr, "A document already exists for this period")
	default:
		slog.Error("[Documents] Document generation failed", "tenant_id", tenantID, "error", err)
		writeError(c, http.StatusInternalServerError, httperr.HttpPersistenceError, "Failed to store finance document")
	}
}

func parsePeriod(start, end string) (v1.Period, error) {
	from, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return v1.Period{}, errors.New("period_start must be YYYY-MM-DD")
	}
	to, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return v1.Period{}, errors.New("period_end must be YYYY-MM-DD")
	}
	return v1.NewPeriod(from, to)
}

func writeError(c *gin.Context, status int, errorType, message string) {
	c.JSON(status, httperr.ErrorResponse{
		ErrorType: errorType,
		Message:   message,
	})
}
