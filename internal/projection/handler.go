package projection

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httperr "github.com/ledgerline/reportsync/internal/core/errors"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/tenants/:tenant_id/categories/:category_id/totals", s.HandleQueryTotals)
}

// HandleQueryTotals handles GET /v1/tenants/:tenant_id/categories/:category_id/totals
// Query parameters: start, end (YYYY-MM-DD), granularity
func (s *Service) HandleQueryTotals(c *gin.Context) {
	var uri struct {
		TenantID   string `uri:"tenant_id" binding:"required"`
		CategoryID int64  `uri:"category_id" binding:"required"`
	}
	var query struct {
		Start       time.Time `form:"start" binding:"required" time_format:"2006-01-02" time_utc:"1"`
		End         time.Time `form:"end" binding:"required" time_format:"2006-01-02" time_utc:"1"`
		Granularity string    `form:"granularity"`
	}

	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.QueryTotals(c.Request.Context(), TotalsQueryRequest{
		TenantID:    uri.TenantID,
		CategoryID:  uri.CategoryID,
		Start:       query.Start,
		End:         query.End,
		Granularity: query.Granularity,
	})
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "Category not found",
				Details:   err.Error(),
			})
			return
		}
		if errors.Is(err, ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidRequestError,
				Message:   "Invalid totals query",
				Details:   err.Error(),
			})
			return
		}

		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to query totals",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
