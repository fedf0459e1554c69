package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/catalog"
	coreagg "github.com/ledgerline/reportsync/internal/core/aggregation"
	httperr "github.com/ledgerline/reportsync/internal/core/errors"
	"github.com/ledgerline/reportsync/internal/core/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAggregator struct {
	result *coreagg.AggregationResult
	err    error
	calls  int
}

func (s *stubAggregator) AggregatePeriod(ctx context.Context, tenantID string, start, end time.Time) (*coreagg.AggregationResult, error) {
	s.calls++
	return s.result, s.err
}

func newRouter(store *memory.Store, agg Aggregator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	gen := NewGenerator(catalog.New(store, 10, time.Minute), store, NewQueueRecomputer(store))
	r := gin.New()
	NewHandler(gen, agg).RegisterRoutes(r)
	return r
}

func postDocument(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants/"+tenant+"/documents", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateDocument_WithTotals(t *testing.T) {
	store := newStore()
	agg := &stubAggregator{}
	r := newRouter(store, agg)

	resp := postDocument(r, `{"period_start":"2024-01-01","period_end":"2024-01-31","totals":{"100":"150.25","200":"-3"}}`)

	require.Equal(t, http.StatusCreated, resp.Code)
	var doc v1.FinanceDocument
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "147.25", doc.Total().String())
	assert.Zero(t, agg.calls)
	assert.Len(t, store.RecomputeRequests(), 1)
}

func TestCreateDocument_AggregatesWhenTotalsOmitted(t *testing.T) {
	result := coreagg.NewAggregationResult()
	result.Totals[100] = decimal.RequireFromString("42")
	agg := &stubAggregator{result: result}
	r := newRouter(newStore(), agg)

	resp := postDocument(r, `{"period_start":"2024-01-01","period_end":"2024-01-31"}`)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, 1, agg.calls)
}

func TestCreateDocument_Errors(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(store *memory.Store) Aggregator
		body      string
		status    int
		errorType string
	}{
		{
			name:      "malformed json",
			body:      `{"period_start":`,
			status:    http.StatusBadRequest,
			errorType: httperr.HttpInvalidRequestError,
		},
		{
			name:      "reversed period",
			body:      `{"period_start":"2024-02-01","period_end":"2024-01-01","totals":{"100":"1"}}`,
			status:    http.StatusBadRequest,
			errorType: httperr.HttpInvalidRequestError,
		},
		{
			name: "nothing to generate",
			prepare: func(*memory.Store) Aggregator {
				return &stubAggregator{result: coreagg.NewAggregationResult()}
			},
			body:      `{"period_start":"2024-01-01","period_end":"2024-01-31"}`,
			status:    http.StatusUnprocessableEntity,
			errorType: httperr.HttpNothingToGenerate,
		},
		{
			name: "duplicate period",
			prepare: func(store *memory.Store) Aggregator {
				require.NoError(t, store.CreateDocument(context.Background(), &v1.FinanceDocument{
					TenantID:    tenant,
					PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					PeriodEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
				}))
				return &stubAggregator{}
			},
			body:      `{"period_start":"2024-01-01","period_end":"2024-01-31","totals":{"100":"1"}}`,
			status:    http.StatusConflict,
			errorType: httperr.HttpDuplicateDocumentErr,
		},
		{
			name: "aggregation failure",
			prepare: func(*memory.Store) Aggregator {
				return &stubAggregator{err: errors.New("db down")}
			},
			body:      `{"period_start":"2024-01-01","period_end":"2024-01-31"}`,
			status:    http.StatusInternalServerError,
			errorType: httperr.HttpInternalError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore()
			var agg Aggregator = &stubAggregator{}
			if tc.prepare != nil {
				agg = tc.prepare(store)
			}
			r := newRouter(store, agg)

			resp := postDocument(r, tc.body)

			require.Equal(t, tc.status, resp.Code)
			var errResp httperr.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
			assert.Equal(t, tc.errorType, errResp.ErrorType)
		})
	}
}
