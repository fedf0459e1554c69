package ingestion

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
)

// fakeReportAPI serves each window's rows by natural id, pageSize at a time.
type fakeReportAPI struct {
	mu       sync.Mutex
	rows     map[string][]v1.RawRow // keyed by window start date
	pageSize int
	failOn   map[string]error // window start -> error returned on the first call
	stuck    bool             // always return the first page regardless of cursor
	calls    []PageRequest
}

func newFakeReportAPI(pageSize int) *fakeReportAPI {
	return &fakeReportAPI{
		rows:     make(map[string][]v1.RawRow),
		pageSize: pageSize,
		failOn:   make(map[string]error),
	}
}

func (f *fakeReportAPI) add(windowStart string, rows ...v1.RawRow) {
	f.rows[windowStart] = append(f.rows[windowStart], rows...)
	sort.Slice(f.rows[windowStart], func(i, j int) bool {
		a, _ := f.rows[windowStart][i].NaturalID()
		b, _ := f.rows[windowStart][j].NaturalID()
		return a < b
	})
}

func (f *fakeReportAPI) FetchPage(ctx context.Context, req PageRequest) ([]v1.RawRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	key := req.WindowStart.Format(time.DateOnly)
	if err, ok := f.failOn[key]; ok {
		return nil, err
	}

	var page []v1.RawRow
	for _, raw := range f.rows[key] {
		id, ok := raw.NaturalID()
		if !ok && req.Cursor > 0 {
			continue
		}
		if ok && !f.stuck && id <= req.Cursor {
			continue
		}
		page = append(page, raw)
		if len(page) == f.pageSize {
			break
		}
	}
	return page, nil
}

func (f *fakeReportAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func rawRow(id int64, operation, forPay, reportedAt string) v1.RawRow {
	fields := v1.RawFields{
		"rrd_id":             json.Number(strconv.FormatInt(id, 10)),
		"supplier_oper_name": operation,
		"doc_type_name":      operation,
		"rr_dt":              reportedAt,
	}
	if forPay != "" {
		fields["ppvz_for_pay"] = json.Number(forPay)
	}
	return v1.RawRow{Fields: fields}
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}
