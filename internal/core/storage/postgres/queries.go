package postgres

import (
	"fmt"
	"strings"
)

// reportRowColumns is the insert column order used by the batch upsert.
var reportRowColumns = []string{
	"tenant_id", "row_id", "partition_id", "report_run_id", "import_run_id",
	"sale_at", "reported_at", "order_at",
	"operation_name", "document_type_name", "country_code",
	"barcode", "supplier_article", "product_id", "quantity",
	"retail_price", "retail_amount", "retail_price_withdisc_rub",
	"ppvz_sales_commission", "ppvz_vw_nds", "ppvz_for_pay",
	"delivery_rub", "penalty", "additional_payment",
	"storage_fee", "deduction", "acceptance",
	"payload", "created_at", "updated_at",
}

// upsertImmutableColumns are never touched on conflict: the identity and the first-seen marker.
var upsertImmutableColumns = map[string]bool{
	"tenant_id":  true,
	"row_id":     true,
	"created_at": true,
}

// maxUpsertRows keeps one statement under the 65535 bind parameter limit of the protocol.
var maxUpsertRows = 65535 / len(reportRowColumns)

// buildUpsertRowsQuery renders a multi-row INSERT ... ON CONFLICT DO UPDATE for n rows.
// The whole batch is one statement, so it commits or fails as a unit.
func buildUpsertRowsQuery(n int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO report_rows (")
	b.WriteString(strings.Join(reportRowColumns, ", "))
	b.WriteString(") VALUES ")

	cols := len(reportRowColumns)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := 0; j < cols; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*cols+j+1)
		}
		b.WriteString(")")
	}

	b.WriteString(" ON CONFLICT (tenant_id, row_id) DO UPDATE SET ")
	first := true
	for _, col := range reportRowColumns {
		if upsertImmutableColumns[col] {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s = EXCLUDED.%s", col, col)
	}
	return b.String()
}

const (
	// queryRowsInPeriod pages a tenant's rows by reported_at with a row_id cursor.
	// Rows without reported_at are not part of any period.
	queryRowsInPeriod = `
		SELECT
			tenant_id, row_id, report_run_id, import_run_id,
			sale_at, reported_at, order_at,
			operation_name, document_type_name, country_code,
			barcode, supplier_article, product_id, quantity,
			retail_price, retail_amount, retail_price_withdisc_rub,
			ppvz_sales_commission, ppvz_vw_nds, ppvz_for_pay,
			delivery_rub, penalty, additional_payment,
			storage_fee, deduction, acceptance,
			payload, created_at, updated_at
		FROM report_rows
		WHERE tenant_id = $1
		  AND reported_at >= $2
		  AND reported_at < $3
		  AND row_id > $4
		ORDER BY row_id ASC
		LIMIT $5
	`

	queryActiveMappings = `
		SELECT
			id, tenant_id, operation_name,
			COALESCE(document_type_name, ''), COALESCE(country_code, ''),
			category_id, source_field, sign_multiplier::text, is_active
		FROM category_mappings
		WHERE tenant_id = $1
		  AND is_active
		ORDER BY id ASC
	`

	queryGetCategory = `
		SELECT id, tenant_id, name, kind
		FROM categories
		WHERE tenant_id = $1
		  AND id = $2
		  AND archived_at IS NULL
	`

	queryGetCategories = `
		SELECT id, tenant_id, name, kind
		FROM categories
		WHERE tenant_id = $1
		  AND id = ANY($2)
		  AND archived_at IS NULL
		ORDER BY id ASC
	`

	// queryInsertDocument relies on the (tenant_id, period_start, period_end) unique index.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for an existing period.
	queryInsertDocument = `
		INSERT INTO finance_documents (id, tenant_id, period_start, period_end, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, period_start, period_end) DO NOTHING
		RETURNING id
	`

	queryInsertDocumentLine = `
		INSERT INTO finance_document_lines (document_id, position, category_id, category_name, amount)
		VALUES ($1, $2, $3, $4, $5)
	`

	queryEnqueueRecompute = `
		INSERT INTO ledger_recompute_requests (document_id, tenant_id, period_start, period_end, requested_at)
		VALUES ($1, $2, $3, $4, $5)
	`
)
