package v1

import "sort"

// Monetary field names. They match the marketplace API keys and are the values
// category mappings use as their source_field.
const (
	FieldRetailPrice         = "retail_price"
	FieldRetailAmount        = "retail_amount"
	FieldRetailPriceWithDisc = "retail_price_withdisc_rub"
	FieldSalesCommission     = "ppvz_sales_commission"
	FieldCommissionVAT       = "ppvz_vw_nds"
	FieldForPay              = "ppvz_for_pay"
	FieldDeliveryFee         = "delivery_rub"
	FieldPenalty             = "penalty"
	FieldAdditionalPayment   = "additional_payment"
	FieldStorageFee          = "storage_fee"
	FieldDeduction           = "deduction"
	FieldAcceptanceFee       = "acceptance"
)

// moneyFields is the fixed registry of numeric accessors.
// Adding a monetary column means adding one entry here.
var moneyFields = map[string]func(r *ReportRow) **string{
	FieldRetailPrice:         func(r *ReportRow) **string { return &r.RetailPrice },
	FieldRetailAmount:        func(r *ReportRow) **string { return &r.RetailAmount },
	FieldRetailPriceWithDisc: func(r *ReportRow) **string { return &r.RetailPriceWithDisc },
	FieldSalesCommission:     func(r *ReportRow) **string { return &r.SalesCommission },
	FieldCommissionVAT:       func(r *ReportRow) **string { return &r.CommissionVAT },
	FieldForPay:              func(r *ReportRow) **string { return &r.ForPay },
	FieldDeliveryFee:         func(r *ReportRow) **string { return &r.DeliveryFee },
	FieldPenalty:             func(r *ReportRow) **string { return &r.Penalty },
	FieldAdditionalPayment:   func(r *ReportRow) **string { return &r.AdditionalPayment },
	FieldStorageFee:          func(r *ReportRow) **string { return &r.StorageFee },
	FieldDeduction:           func(r *ReportRow) **string { return &r.Deduction },
	FieldAcceptanceFee:       func(r *ReportRow) **string { return &r.AcceptanceFee },
}

// MoneyFields returns the registered monetary field names in sorted order.
func MoneyFields() []string {
	names := make([]string, 0, len(moneyFields))
	for name := range moneyFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsMoneyField reports whether name is a registered monetary field.
func IsMoneyField(name string) bool {
	_, ok := moneyFields[name]
	return ok
}

// Money returns the stored value of a monetary field.
// known is false for names outside the registry; value is nil when the source reported nothing.
func (r *ReportRow) Money(name string) (value *string, known bool) {
	accessor, ok := moneyFields[name]
	if !ok {
		return nil, false
	}
	return *accessor(r), true
}

// SetMoney stores a monetary field value. Returns false for unknown names.
func (r *ReportRow) SetMoney(name string, value *string) bool {
	accessor, ok := moneyFields[name]
	if !ok {
		return false
	}
	*accessor(r) = value
	return true
}
