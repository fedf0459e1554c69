package v1

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NaturalIDKey is the key the marketplace uses for its per-tenant row identifier.
const NaturalIDKey = "rrd_id"

// RawFields are the decoded keys of one report row.
// Numbers are decoded as json.Number so no precision is lost before normalization.
type RawFields map[string]interface{}

// RawRow is one row as returned by the marketplace report API.
// Source holds the element's bytes exactly as received; it is empty for rows built in code.
type RawRow struct {
	Fields RawFields
	Source json.RawMessage
}

// NaturalID extracts the marketplace-assigned row id.
func (r RawRow) NaturalID() (int64, bool) {
	return r.Fields.NaturalID()
}

// Payload returns the row for audit storage: the received bytes when present,
// otherwise the fields encoded as JSON.
func (r RawRow) Payload() (json.RawMessage, error) {
	if len(r.Source) > 0 {
		return r.Source, nil
	}
	return json.Marshal(r.Fields)
}

// NaturalID extracts the marketplace-assigned row id.
// Returns false when the key is missing, null, or not a positive integer.
func (r RawFields) NaturalID() (int64, bool) {
	v, ok := r[NaturalIDKey]
	if !ok || v == nil {
		return 0, false
	}

	var id int64
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, false
		}
		id = n
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		id = int64(val)
	case int:
		id = int64(val)
	case int64:
		id = val
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	default:
		return 0, false
	}

	if id <= 0 {
		return 0, false
	}
	return id, true
}

// ReportRow is the canonical, flattened form of one marketplace report line.
//
// (TenantID, RowID) is the identity. Everything else is mutable and is overwritten
// whenever the same natural id is ingested again; CreatedAt is kept from the first insert.
type ReportRow struct {
	TenantID    string    `json:"tenant_id"`
	RowID       int64     `json:"row_id"`
	ReportRunID string    `json:"report_run_id,omitempty"`
	ImportRunID uuid.UUID `json:"import_run_id"`

	SaleAt     *time.Time `json:"sale_at,omitempty"`
	ReportedAt *time.Time `json:"reported_at,omitempty"`
	OrderAt    *time.Time `json:"order_at,omitempty"`

	OperationName    string `json:"operation_name"`
	DocumentTypeName string `json:"document_type_name,omitempty"`
	CountryCode      string `json:"country_code,omitempty"`
	Barcode          string `json:"barcode,omitempty"`
	SupplierArticle  string `json:"supplier_article,omitempty"`
	ProductID        string `json:"product_id,omitempty"`
	Quantity         *int64 `json:"quantity,omitempty"`

	// Monetary fields. nil means the source did not report a value, which is not the same as 0.
	// Numeric values are fixed 2-decimal strings; placeholders from the source are kept verbatim.
	RetailPrice         *string `json:"retail_price,omitempty"`
	RetailAmount        *string `json:"retail_amount,omitempty"`
	RetailPriceWithDisc *string `json:"retail_price_withdisc_rub,omitempty"`
	SalesCommission     *string `json:"ppvz_sales_commission,omitempty"`
	CommissionVAT       *string `json:"ppvz_vw_nds,omitempty"`
	ForPay              *string `json:"ppvz_for_pay,omitempty"`
	DeliveryFee         *string `json:"delivery_rub,omitempty"`
	Penalty             *string `json:"penalty,omitempty"`
	AdditionalPayment   *string `json:"additional_payment,omitempty"`
	StorageFee          *string `json:"storage_fee,omitempty"`
	Deduction           *string `json:"deduction,omitempty"`
	AcceptanceFee       *string `json:"acceptance,omitempty"`

	// RawPayload is the original row, kept for audit and replay.
	RawPayload json.RawMessage `json:"raw_payload"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures the row carries its identity and resolution key.
func (r *ReportRow) Validate() error {
	if r.TenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	if r.RowID <= 0 {
		return fmt.Errorf("row_id must be positive")
	}
	if len(r.RawPayload) == 0 {
		return fmt.Errorf("raw_payload is required")
	}
	return nil
}
