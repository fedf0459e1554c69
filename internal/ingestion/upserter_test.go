package ingestion

import (
	"context"
	"errors"
	"testing"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	pipelineerr "github.com/ledgerline/reportsync/internal/core/errors"
	storagemocks "github.com/ledgerline/reportsync/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBatchUpserter_FlushesFullBatches(t *testing.T) {
	store := storagemocks.NewReportRowStore(t)
	store.EXPECT().
		UpsertRows(mock.Anything, mock.MatchedBy(func(rows []*v1.ReportRow) bool { return len(rows) == 3 })).
		Return(3, nil).
		Twice()
	store.EXPECT().
		UpsertRows(mock.Anything, mock.MatchedBy(func(rows []*v1.ReportRow) bool { return len(rows) == 1 })).
		Return(1, nil).
		Once()

	window := v1.Window{Start: day("2024-01-01"), End: day("2024-01-01")}
	upserter := NewBatchUpserter(store, "tenant-1", window, 3)
	ctx := context.Background()

	for i := int64(1); i <= 7; i++ {
		require.NoError(t, upserter.Add(ctx, &v1.ReportRow{TenantID: "tenant-1", RowID: i}))
	}
	require.Equal(t, 6, upserter.Committed())
	require.Equal(t, 1, upserter.Pending())

	require.NoError(t, upserter.Flush(ctx))
	require.Equal(t, 7, upserter.Committed())
	require.Zero(t, upserter.Pending())

	require.NoError(t, upserter.Flush(ctx), "empty flush is a no-op")
}

func TestBatchUpserter_FailureKeepsEarlierBatches(t *testing.T) {
	dbErr := errors.New("connection reset")

	store := storagemocks.NewReportRowStore(t)
	store.EXPECT().UpsertRows(mock.Anything, mock.Anything).Return(2, nil).Once()
	store.EXPECT().UpsertRows(mock.Anything, mock.Anything).Return(0, dbErr).Once()

	window := v1.Window{Start: day("2024-01-01"), End: day("2024-01-07")}
	upserter := NewBatchUpserter(store, "tenant-1", window, 2)
	ctx := context.Background()

	require.NoError(t, upserter.Add(ctx, &v1.ReportRow{TenantID: "tenant-1", RowID: 1}))
	require.NoError(t, upserter.Add(ctx, &v1.ReportRow{TenantID: "tenant-1", RowID: 2}))
	require.NoError(t, upserter.Add(ctx, &v1.ReportRow{TenantID: "tenant-1", RowID: 3}))
	err := upserter.Add(ctx, &v1.ReportRow{TenantID: "tenant-1", RowID: 4})

	var persistErr *pipelineerr.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	require.ErrorIs(t, err, dbErr)
	require.Equal(t, 2, persistErr.Rows)
	require.Equal(t, window, persistErr.Window)
	require.Equal(t, 2, upserter.Committed())
}

func TestNewBatchUpserter_DefaultBatchSize(t *testing.T) {
	upserter := NewBatchUpserter(storagemocks.NewReportRowStore(t), "tenant-1", v1.Window{}, 0)
	require.Equal(t, DefaultBatchSize, upserter.batchSize)
}
