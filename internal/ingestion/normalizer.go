package ingestion

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/core/aggregation"
	pipelineerr "github.com/ledgerline/reportsync/internal/core/errors"
)

// Raw row keys of the marketplace report.
const (
	keyReportRunID      = "realizationreport_id"
	keySaleAt           = "sale_dt"
	keyReportedAt       = "rr_dt"
	keyOrderAt          = "order_dt"
	keyOperationName    = "supplier_oper_name"
	keyDocumentTypeName = "doc_type_name"
	keyCountryCode      = "site_country"
	keyBarcode          = "barcode"
	keySupplierArticle  = "sa_name"
	keyProductID        = "nm_id"
	keyQuantity         = "quantity"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Normalize maps one raw row to a ReportRow. The audit payload is the row as received.
// Rows without a usable natural id return ErrSkippableRow.
func Normalize(raw v1.RawRow, tenantID string, runID uuid.UUID, now time.Time) (*v1.ReportRow, error) {
	id, ok := raw.NaturalID()
	if !ok {
		return nil, fmt.Errorf("%w: missing or invalid %s", pipelineerr.ErrSkippableRow, v1.NaturalIDKey)
	}

	payload, err := raw.Payload()
	if err != nil {
		return nil, fmt.Errorf("%w: row %d payload: %v", pipelineerr.ErrSkippableRow, id, err)
	}

	f := raw.Fields
	now = now.UTC()
	row := &v1.ReportRow{
		TenantID:         tenantID,
		RowID:            id,
		ReportRunID:      stringValue(f[keyReportRunID]),
		ImportRunID:      runID,
		SaleAt:           parseTimestamp(f[keySaleAt]),
		ReportedAt:       parseTimestamp(f[keyReportedAt]),
		OrderAt:          parseTimestamp(f[keyOrderAt]),
		OperationName:    stringValue(f[keyOperationName]),
		DocumentTypeName: stringValue(f[keyDocumentTypeName]),
		CountryCode:      stringValue(f[keyCountryCode]),
		Barcode:          stringValue(f[keyBarcode]),
		SupplierArticle:  stringValue(f[keySupplierArticle]),
		ProductID:        stringValue(f[keyProductID]),
		Quantity:         intValue(f[keyQuantity]),
		RawPayload:       payload,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	for _, field := range v1.MoneyFields() {
		row.SetMoney(field, moneyValue(f[field]))
	}

	return row, nil
}

// moneyValue renders numbers as fixed 2-decimal strings and keeps non-numeric placeholders as-is.
// Absent, null and blank values stay nil.
func moneyValue(v interface{}) *string {
	if v == nil {
		return nil
	}
	if d, ok := aggregation.DecimalFrom(v); ok {
		s := d.StringFixed(2)
		return &s
	}

	s := stringValue(v)
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func intValue(v interface{}) *int64 {
	d, ok := aggregation.DecimalFrom(v)
	if !ok || !d.IsInteger() {
		return nil
	}
	n := d.IntPart()
	return &n
}

func parseTimestamp(v interface{}) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
