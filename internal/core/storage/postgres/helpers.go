package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/core/partition"
)

// reportRowArgs flattens a row into bind arguments in reportRowColumns order.
// Nil pointers become SQL NULL; the payload goes in as JSON text.
func reportRowArgs(row *v1.ReportRow) []interface{} {
	args := []interface{}{
		row.TenantID,
		row.RowID,
		partition.For(row.TenantID),
		nullString(row.ReportRunID),
		row.ImportRunID,
		nullTime(row.SaleAt),
		nullTime(row.ReportedAt),
		nullTime(row.OrderAt),
		row.OperationName,
		nullString(row.DocumentTypeName),
		nullString(row.CountryCode),
		nullString(row.Barcode),
		nullString(row.SupplierArticle),
		nullString(row.ProductID),
		nullInt64(row.Quantity),
	}
	for _, field := range moneyColumns {
		value, _ := row.Money(field)
		args = append(args, nullStringPtr(value))
	}
	return append(args, string(row.RawPayload), row.CreatedAt, row.UpdatedAt)
}

// moneyColumns is the column order of monetary fields in reportRowColumns.
var moneyColumns = []string{
	v1.FieldRetailPrice, v1.FieldRetailAmount, v1.FieldRetailPriceWithDisc,
	v1.FieldSalesCommission, v1.FieldCommissionVAT, v1.FieldForPay,
	v1.FieldDeliveryFee, v1.FieldPenalty, v1.FieldAdditionalPayment,
	v1.FieldStorageFee, v1.FieldDeduction, v1.FieldAcceptanceFee,
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanReportRow scans one row of queryRowsInPeriod.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanReportRow(s scanner) (*v1.ReportRow, error) {
	var (
		row                           v1.ReportRow
		reportRunID, docType, country sql.NullString
		barcode, article, productID   sql.NullString
		saleAt, reportedAt, orderAt   sql.NullTime
		quantity                      sql.NullInt64
		payload                       []byte
	)
	money := make([]sql.NullString, len(moneyColumns))

	dest := []interface{}{
		&row.TenantID, &row.RowID, &reportRunID, &row.ImportRunID,
		&saleAt, &reportedAt, &orderAt,
		&row.OperationName, &docType, &country,
		&barcode, &article, &productID, &quantity,
	}
	for i := range money {
		dest = append(dest, &money[i])
	}
	dest = append(dest, &payload, &row.CreatedAt, &row.UpdatedAt)

	if err := s.Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to scan report row: %w", err)
	}

	row.ReportRunID = reportRunID.String
	row.DocumentTypeName = docType.String
	row.CountryCode = country.String
	row.Barcode = barcode.String
	row.SupplierArticle = article.String
	row.ProductID = productID.String
	row.SaleAt = timePtr(saleAt)
	row.ReportedAt = timePtr(reportedAt)
	row.OrderAt = timePtr(orderAt)
	if quantity.Valid {
		q := quantity.Int64
		row.Quantity = &q
	}
	for i, field := range moneyColumns {
		if money[i].Valid {
			v := money[i].String
			row.SetMoney(field, &v)
		}
	}
	if len(payload) > 0 {
		row.RawPayload = json.RawMessage(payload)
	}

	return &row, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
