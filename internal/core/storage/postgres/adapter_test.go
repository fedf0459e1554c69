package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/core/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBuildUpsertRowsQuery(t *testing.T) {
	query := buildUpsertRowsQuery(2)

	require.True(t, strings.HasPrefix(query, "INSERT INTO report_rows (tenant_id, row_id, partition_id"))
	require.Contains(t, query, "($1, $2, $3")
	require.Contains(t, query, "$60)")
	require.NotContains(t, query, "$61")
	require.Contains(t, query, "ON CONFLICT (tenant_id, row_id) DO UPDATE SET")
	require.Contains(t, query, "ppvz_for_pay = EXCLUDED.ppvz_for_pay")
	require.Contains(t, query, "updated_at = EXCLUDED.updated_at")
	require.NotContains(t, query, "created_at = EXCLUDED.created_at")
	require.NotContains(t, query, "row_id = EXCLUDED.row_id")
}

func TestMaxUpsertRowsFitsBindLimit(t *testing.T) {
	require.LessOrEqual(t, maxUpsertRows*len(reportRowColumns), 65535)
	require.Greater(t, maxUpsertRows, 800)
}

func TestAdapter_UpsertRows(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		rows       []*v1.ReportRow
		mockResult func(mock sqlmock.Sqlmock)
		assertions func(t *testing.T, written int, err error)
	}{
		{
			name: "empty batch is a no-op",
			assertions: func(t *testing.T, written int, err error) {
				require.NoError(t, err)
				require.Zero(t, written)
			},
		},
		{
			name: "duplicate ids collapse to one row",
			rows: []*v1.ReportRow{
				testRow("tenant-1", 7, now, "1.00"),
				testRow("tenant-1", 3, now, "2.00"),
				testRow("tenant-1", 7, now, "3.00"),
			},
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(buildUpsertRowsQuery(2))).
					WillReturnResult(sqlmock.NewResult(0, 2))
			},
			assertions: func(t *testing.T, written int, err error) {
				require.NoError(t, err)
				require.Equal(t, 2, written)
			},
		},
		{
			name: "statement failure is returned",
			rows: []*v1.ReportRow{testRow("tenant-1", 1, now, "1.00")},
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(buildUpsertRowsQuery(1))).
					WillReturnError(errors.New("deadlock detected"))
			},
			assertions: func(t *testing.T, written int, err error) {
				require.ErrorContains(t, err, "failed to upsert report rows")
				require.ErrorContains(t, err, "deadlock detected")
				require.Zero(t, written)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			if tc.mockResult != nil {
				tc.mockResult(mock)
			}

			written, err := adapter.UpsertRows(context.Background(), tc.rows)
			tc.assertions(t, written, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDedupeRows_LastWinsAndSorted(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	rows := dedupeRows([]*v1.ReportRow{
		testRow("tenant-1", 9, now, "1.00"),
		testRow("tenant-1", 2, now, "2.00"),
		testRow("tenant-1", 9, now, "5.00"),
	})

	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].RowID)
	require.Equal(t, int64(9), rows[1].RowID)
	forPay, _ := rows[1].Money(v1.FieldForPay)
	require.Equal(t, "5.00", *forPay)
}

func TestReportRowArgs_ColumnOrder(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	row := testRow("tenant-1", 42, now, "12.50")

	args := reportRowArgs(row)

	require.Len(t, args, len(reportRowColumns))
	require.Equal(t, "tenant-1", args[0])
	require.Equal(t, int64(42), args[1])
	require.Equal(t, sql.NullString{}, args[indexOfColumn(t, "barcode")])
	require.Equal(t, sql.NullString{String: "12.50", Valid: true}, args[indexOfColumn(t, "ppvz_for_pay")])
	require.Equal(t, sql.NullString{}, args[indexOfColumn(t, "penalty")])
	require.Equal(t, `{"rrd_id":42}`, args[indexOfColumn(t, "payload")])
}

func TestAdapter_RowsInPeriod(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	runID := uuid.New()
	reported := from.Add(36 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(queryRowsInPeriod)).
		WithArgs("tenant-1", from, to, int64(100), 2).
		WillReturnRows(sqlmock.NewRows(rowsInPeriodColumns()).
			AddRow(
				"tenant-1", int64(101), "run-7", runID.String(),
				nil, reported, nil,
				"Продажа", "Продажа", "RU",
				"2000000000017", "ART-1", "555", int64(2),
				"100.00", nil, nil,
				nil, nil, "87.50",
				nil, nil, nil,
				nil, nil, nil,
				[]byte(`{"rrd_id":101}`), reported, reported,
			),
		).RowsWillBeClosed()

	rows, err := adapter.RowsInPeriod(context.Background(), "tenant-1", from, to, 100, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Equal(t, int64(101), row.RowID)
	require.Equal(t, runID, row.ImportRunID)
	require.Equal(t, "run-7", row.ReportRunID)
	require.Nil(t, row.SaleAt)
	require.NotNil(t, row.ReportedAt)
	require.True(t, reported.Equal(*row.ReportedAt))
	require.Equal(t, "RU", row.CountryCode)
	require.Equal(t, int64(2), *row.Quantity)

	forPay, known := row.Money(v1.FieldForPay)
	require.True(t, known)
	require.Equal(t, "87.50", *forPay)
	penalty, _ := row.Money(v1.FieldPenalty)
	require.Nil(t, penalty)
	require.JSONEq(t, `{"rrd_id":101}`, string(row.RawPayload))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_ActiveMappings(t *testing.T) {
	tests := []struct {
		name       string
		rows       *sqlmock.Rows
		assertions func(t *testing.T, mappings []v1.CategoryMapping, err error)
	}{
		{
			name: "parses sign multiplier",
			rows: sqlmock.NewRows(mappingColumns()).
				AddRow(int64(1), "tenant-1", "Продажа", "", "", int64(10), "ppvz_for_pay", "1", true).
				AddRow(int64(2), "tenant-1", "Возврат", "Возврат", "RU", int64(11), "ppvz_for_pay", "-1.000000", true),
			assertions: func(t *testing.T, mappings []v1.CategoryMapping, err error) {
				require.NoError(t, err)
				require.Len(t, mappings, 2)
				require.True(t, mappings[0].SignMultiplier.Equal(decimal.NewFromInt(1)))
				require.True(t, mappings[1].SignMultiplier.Equal(decimal.NewFromInt(-1)))
				require.Equal(t, "RU", mappings[1].CountryCode)
				require.Equal(t, "", mappings[0].DocumentTypeName)
			},
		},
		{
			name: "bad sign is an error",
			rows: sqlmock.NewRows(mappingColumns()).
				AddRow(int64(3), "tenant-1", "Продажа", "", "", int64(10), "ppvz_for_pay", "abc", true),
			assertions: func(t *testing.T, mappings []v1.CategoryMapping, err error) {
				require.ErrorContains(t, err, "mapping 3: parse sign_multiplier")
				require.Nil(t, mappings)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta(queryActiveMappings)).
				WithArgs("tenant-1").
				WillReturnRows(tc.rows)

			mappings, err := adapter.ActiveMappings(context.Background(), "tenant-1")
			tc.assertions(t, mappings, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_GetCategory(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryGetCategory)).
		WithArgs("tenant-1", int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "kind"}).
			AddRow(int64(10), "tenant-1", "Revenue", "income"))
	mock.ExpectQuery(regexp.QuoteMeta(queryGetCategory)).
		WithArgs("tenant-1", int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "kind"}))

	category, err := adapter.GetCategory(context.Background(), "tenant-1", 10)
	require.NoError(t, err)
	require.Equal(t, "Revenue", category.Name)
	require.Equal(t, "income", category.Kind)

	_, err = adapter.GetCategory(context.Background(), "tenant-1", 99)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_GetCategories(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryGetCategories)).
		WithArgs("tenant-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "kind"}).
			AddRow(int64(10), "tenant-1", "Revenue", nil).
			AddRow(int64(11), "tenant-1", "Commission", "expense"))

	categories, err := adapter.GetCategories(context.Background(), "tenant-1", []int64{10, 11, 12})
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, "", categories[0].Kind)
	require.Equal(t, "Commission", categories[1].Name)

	empty, err := adapter.GetCategories(context.Background(), "tenant-1", nil)
	require.NoError(t, err)
	require.Nil(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CreateDocument(t *testing.T) {
	created := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	newDoc := func() *v1.FinanceDocument {
		return &v1.FinanceDocument{
			ID:          uuid.MustParse("2b0f4c3e-3b8e-4a6f-9a1f-0d5c6b7a8e91"),
			TenantID:    "tenant-1",
			PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			CreatedAt:   created,
			Lines: []v1.DocumentLine{
				{Position: 1, CategoryID: 10, CategoryName: "Revenue", Amount: decimal.RequireFromString("1000.00")},
				{Position: 2, CategoryID: 11, CategoryName: "Refunds", Amount: decimal.RequireFromString("-12.50")},
			},
		}
	}

	tests := []struct {
		name       string
		mockResult func(mock sqlmock.Sqlmock, doc *v1.FinanceDocument)
		assertions func(t *testing.T, err error)
	}{
		{
			name: "header and lines commit together",
			mockResult: func(mock sqlmock.Sqlmock, doc *v1.FinanceDocument) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(queryInsertDocument)).
					WithArgs(doc.ID, doc.TenantID, doc.PeriodStart, doc.PeriodEnd, doc.CreatedAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(doc.ID.String()))
				mock.ExpectPrepare(regexp.QuoteMeta(queryInsertDocumentLine))
				mock.ExpectExec(regexp.QuoteMeta(queryInsertDocumentLine)).
					WithArgs(doc.ID, 1, int64(10), "Revenue", "1000").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta(queryInsertDocumentLine)).
					WithArgs(doc.ID, 2, int64(11), "Refunds", "-12.5").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name: "amounts are written at full precision",
			mockResult: func(mock sqlmock.Sqlmock, doc *v1.FinanceDocument) {
				doc.Lines = []v1.DocumentLine{
					{Position: 1, CategoryID: 10, CategoryName: "Revenue", Amount: decimal.RequireFromString("33.33663333")},
				}
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(queryInsertDocument)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(doc.ID.String()))
				mock.ExpectPrepare(regexp.QuoteMeta(queryInsertDocumentLine))
				mock.ExpectExec(regexp.QuoteMeta(queryInsertDocumentLine)).
					WithArgs(doc.ID, 1, int64(10), "Revenue", "33.33663333").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name: "existing period maps to ErrDuplicate",
			mockResult: func(mock sqlmock.Sqlmock, doc *v1.FinanceDocument) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(queryInsertDocument)).
					WithArgs(doc.ID, doc.TenantID, doc.PeriodStart, doc.PeriodEnd, doc.CreatedAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectRollback()
			},
			assertions: func(t *testing.T, err error) {
				require.ErrorIs(t, err, storage.ErrDuplicate)
			},
		},
		{
			name: "line failure rolls back",
			mockResult: func(mock sqlmock.Sqlmock, doc *v1.FinanceDocument) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(queryInsertDocument)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(doc.ID.String()))
				mock.ExpectPrepare(regexp.QuoteMeta(queryInsertDocumentLine))
				mock.ExpectExec(regexp.QuoteMeta(queryInsertDocumentLine)).
					WillReturnError(errors.New("foreign key violation"))
				mock.ExpectRollback()
			},
			assertions: func(t *testing.T, err error) {
				require.ErrorContains(t, err, "failed to insert document line 1")
				require.False(t, errors.Is(err, storage.ErrDuplicate))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			doc := newDoc()
			tc.mockResult(mock, doc)

			err := adapter.CreateDocument(context.Background(), doc)
			tc.assertions(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_EnqueueRecompute(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	doc := &v1.FinanceDocument{
		ID:          uuid.New(),
		TenantID:    "tenant-1",
		PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta(queryEnqueueRecompute)).
		WithArgs(doc.ID, "tenant-1", doc.PeriodStart, doc.PeriodEnd, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.EnqueueRecompute(context.Background(), doc))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_PrepareFailsWithoutSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	adapter := &Adapter{db: db}
	err = adapter.Prepare()
	require.ErrorContains(t, err, "did you run migrations?")
	require.ErrorContains(t, err, "expected 4 pipeline tables, found 2")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CloseReturnsDBCloseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dbCloseErr := errors.New("db close failed")

	mock.ExpectPrepare(regexp.QuoteMeta(queryRowsInPeriod)).WillBeClosed()
	stmtRows, err := db.Prepare(queryRowsInPeriod)
	require.NoError(t, err)

	mock.ExpectClose().WillReturnError(dbCloseErr)

	adapter := &Adapter{db: db, stmtRowsInPeriod: stmtRows}

	err = adapter.Close()
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to close database")
	require.ErrorIs(t, err, dbCloseErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	adapter := &Adapter{
		db:                 db,
		stmtRowsInPeriod:   mustPrepareStmt(t, db, mock, queryRowsInPeriod),
		stmtActiveMappings: mustPrepareStmt(t, db, mock, queryActiveMappings),
		stmtGetCategory:    mustPrepareStmt(t, db, mock, queryGetCategory),
	}

	return adapter, mock, db
}

func mustPrepareStmt(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock, query string) *sql.Stmt {
	t.Helper()

	mock.ExpectPrepare(regexp.QuoteMeta(query))
	stmt, err := db.Prepare(query)
	require.NoError(t, err)

	return stmt
}

func testRow(tenantID string, rowID int64, at time.Time, forPay string) *v1.ReportRow {
	row := &v1.ReportRow{
		TenantID:      tenantID,
		RowID:         rowID,
		ImportRunID:   uuid.New(),
		ReportedAt:    &at,
		OperationName: "Продажа",
		RawPayload:    json.RawMessage(`{"rrd_id":` + jsonInt(rowID) + `}`),
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	row.SetMoney(v1.FieldForPay, &forPay)
	return row
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func indexOfColumn(t *testing.T, name string) int {
	t.Helper()
	for i, col := range reportRowColumns {
		if col == name {
			return i
		}
	}
	t.Fatalf("unknown column %s", name)
	return -1
}

func rowsInPeriodColumns() []string {
	cols := make([]string, 0, len(reportRowColumns)-1)
	for _, col := range reportRowColumns {
		if col != "partition_id" {
			cols = append(cols, col)
		}
	}
	return cols
}

func mappingColumns() []string {
	return []string{
		"id",
		"tenant_id",
		"operation_name",
		"document_type_name",
		"country_code",
		"category_id",
		"source_field",
		"sign_multiplier",
		"is_active",
	}
}
