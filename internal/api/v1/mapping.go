package v1

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CategoryMapping routes report rows to a financial category.
//
// OperationName is required. The resolver compares DocumentTypeName and CountryCode only in
// its more specific tiers, so the same mapping can also apply at a relaxed tier.
type CategoryMapping struct {
	ID               int64           `json:"id"`
	TenantID         string          `json:"tenant_id"`
	OperationName    string          `json:"operation_name"`
	DocumentTypeName string          `json:"document_type_name,omitempty"`
	CountryCode      string          `json:"country_code,omitempty"`
	CategoryID       int64           `json:"category_id"`
	SourceField      string          `json:"source_field"`
	SignMultiplier   decimal.Decimal `json:"sign_multiplier"`
	IsActive         bool            `json:"is_active"`
}

// Validate checks the fields every mapping needs regardless of where it was loaded from.
// An unregistered SourceField is not rejected here; it resolves to "no value" at aggregation time.
func (m *CategoryMapping) Validate() error {
	if m.TenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	if m.OperationName == "" {
		return fmt.Errorf("operation_name is required")
	}
	if m.CategoryID <= 0 {
		return fmt.Errorf("category_id must be positive")
	}
	if m.SourceField == "" {
		return fmt.Errorf("source_field is required")
	}
	if m.SignMultiplier.IsZero() {
		return fmt.Errorf("sign_multiplier must not be zero")
	}
	return nil
}

// Instruction tells the aggregator which field of a row to read, how to sign it,
// and which category total receives it.
type Instruction struct {
	MappingID      int64
	Tier           string
	CategoryID     int64
	SourceField    string
	SignMultiplier decimal.Decimal
}

// Category is a catalog entry a finance document line can reference.
type Category struct {
	ID       int64  `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Kind     string `json:"kind,omitempty"` // income | expense
}
