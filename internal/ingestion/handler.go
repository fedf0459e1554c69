package ingestion

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerline/reportsync/internal/core/aggregation"
	httperr "github.com/ledgerline/reportsync/internal/core/errors"
)

const (
	msgInvalidJSON     = "Invalid JSON body"
	msgUnknownTenant   = "Tenant is not configured for imports"
	msgUpstreamFailed  = "Marketplace report API failed"
	msgPersistFailed   = "Failed to persist report rows"
	msgImportCancelled = "Import cancelled"
)

type importRequest struct {
	DateFrom    string `json:"date_from" binding:"required"`
	DateTo      string `json:"date_to" binding:"required"`
	Granularity string `json:"granularity"`
}

// ImportHandler runs one import synchronously and reports how many rows were committed.
func (s *Service) ImportHandler(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	var body importRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		slog.Warn("[Importer] Invalid import request", "tenant_id", tenantID, "error", err)
		writeError(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, msgInvalidJSON, nil)
		return
	}

	req, err := body.toFetchRequest(tenantID)
	if err != nil {
		writeError(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, err.Error(), nil)
		return
	}

	result, err := s.ImportPeriod(c.Request.Context(), req)
	if err != nil {
		details := map[string]interface{}{
			"run_id":         result.RunID,
			"rows_processed": result.RowsProcessed,
			"rows_skipped":   result.RowsSkipped,
		}

		var transportErr *httperr.TransportError
		var persistErr *httperr.PersistenceError
		switch {
		case errors.Is(err, ErrInvalidRange):
			writeError(c, http.StatusBadRequest, httperr.HttpInvalidRequestError, err.Error(), nil)
		case errors.Is(err, ErrUnknownTenant):
			writeError(c, http.StatusNotFound, httperr.HttpInvalidRequestError, msgUnknownTenant, nil)
		case errors.As(err, &transportErr):
			details["window"] = transportErr.Window.String()
			details["cursor"] = transportErr.Cursor
			writeError(c, http.StatusBadGateway, httperr.HttpUpstreamError, msgUpstreamFailed, details)
		case errors.As(err, &persistErr):
			details["window"] = persistErr.Window.String()
			writeError(c, http.StatusInternalServerError, httperr.HttpPersistenceError, msgPersistFailed, details)
		default:
			writeError(c, http.StatusServiceUnavailable, httperr.HttpInternalError, msgImportCancelled, details)
		}
		return
	}

	c.JSON(http.StatusAccepted, result)
}

func (b importRequest) toFetchRequest(tenantID string) (FetchRequest, error) {
	from, err := time.Parse(time.DateOnly, b.DateFrom)
	if err != nil {
		return FetchRequest{}, errors.New("date_from must be YYYY-MM-DD")
	}
	to, err := time.Parse(time.DateOnly, b.DateTo)
	if err != nil {
		return FetchRequest{}, errors.New("date_to must be YYYY-MM-DD")
	}

	req := FetchRequest{TenantID: tenantID, DateFrom: from, DateTo: to}
	if b.Granularity != "" {
		g, err := aggregation.ParseGranularity(b.Granularity)
		if err != nil {
			return FetchRequest{}, err
		}
		req.Granularity = g
	}
	return req, nil
}

func writeError(c *gin.Context, status int, errorType, message string, details interface{}) {
	c.JSON(status, httperr.ErrorResponse{
		ErrorType: errorType,
		Message:   message,
		Details:   details,
	})
}
