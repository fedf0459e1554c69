package aggregation

import (
	"encoding/json"
	"strings"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/shopspring/decimal"
)

// FieldRead describes the outcome of reading a monetary field off a row.
type FieldRead int

const (
	FieldValue   FieldRead = iota // value present and numeric
	FieldEmpty                    // registered field, no numeric value
	FieldUnknown                  // name not in the accessor registry
)

// DecimalFrom converts a decoded JSON value to an exact decimal.
// json.Number and numeric strings are parsed from their text, so no float rounding creeps in.
// Returns false for nil, bools, placeholders and anything else non-numeric.
func DecimalFrom(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case int32:
		return decimal.NewFromInt(int64(val)), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Zero, false
}

// ExtractDecimal reads a monetary field from the row through the fixed field registry.
// A stored placeholder that does not parse is reported as FieldEmpty, never as zero.
func ExtractDecimal(row *v1.ReportRow, field string) (decimal.Decimal, FieldRead) {
	value, known := row.Money(field)
	if !known {
		return decimal.Zero, FieldUnknown
	}
	if value == nil {
		return decimal.Zero, FieldEmpty
	}
	d, ok := DecimalFrom(*value)
	if !ok {
		return decimal.Zero, FieldEmpty
	}
	return d, FieldValue
}
