// Package marketplace is the HTTP client for the marketplace's detailed sales report API.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/ingestion"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultPageLimit = 100000
	reportPath       = "/api/v5/supplier/reportDetailByPeriod"
	maxErrorBody     = 512
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	PageLimit int
	// Tokens maps tenant id to its API token.
	Tokens map[string]string
}

// Client fetches report pages. It implements ingestion.ReportAPI.
type Client struct {
	baseURL    string
	pageLimit  int
	tokens     map[string]string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := cfg.PageLimit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		pageLimit: limit,
		tokens:    cfg.Tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchPage requests the rows of one window after the cursor.
// HTTP 204 and empty or null bodies are an empty page.
func (c *Client) FetchPage(ctx context.Context, req ingestion.PageRequest) ([]v1.RawRow, error) {
	token, ok := c.tokens[req.TenantID]
	if !ok || token == "" {
		return nil, fmt.Errorf("%w: %s", ingestion.ErrUnknownTenant, req.TenantID)
	}

	query := url.Values{}
	query.Set("dateFrom", req.WindowStart.Format(time.DateOnly))
	query.Set("dateTo", req.WindowEnd.Format(time.DateOnly))
	query.Set("rrdid", strconv.FormatInt(req.Cursor, 10))
	query.Set("limit", strconv.Itoa(c.pageLimit))
	query.Set("period", req.Granularity.APIPeriod())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+reportPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", token)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(body, maxErrorBody)}
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, err
	}

	slog.Debug("[Marketplace] Report page fetched",
		"tenant_id", req.TenantID,
		"date_from", req.WindowStart.Format(time.DateOnly),
		"date_to", req.WindowEnd.Format(time.DateOnly),
		"rrdid", req.Cursor,
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds())
	return rows, nil
}

// decodeRows keeps numbers as json.Number so money and ids are parsed from their exact text.
// Each row also keeps its element bytes verbatim for the audit payload.
func decodeRows(body []byte) ([]v1.RawRow, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, fmt.Errorf("failed to parse report page: %w", err)
	}

	rows := make([]v1.RawRow, 0, len(elements))
	for i, element := range elements {
		dec := json.NewDecoder(bytes.NewReader(element))
		dec.UseNumber()

		var fields v1.RawFields
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("failed to parse report row %d: %w", i, err)
		}
		rows = append(rows, v1.RawRow{Fields: fields, Source: element})
	}
	return rows, nil
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("marketplace API returned status %d: %s", e.StatusCode, e.Body)
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}

var _ ingestion.ReportAPI = (*Client)(nil)
