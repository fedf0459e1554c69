package aggregation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnmappedKey groups rows no mapping could route.
type UnmappedKey struct {
	OperationName    string
	DocumentTypeName string
}

// UnmappedGroup is one line of the operator review report.
// DocumentTypeName is nil when the rows carried no document type.
type UnmappedGroup struct {
	OperationName    string  `json:"operation_name"`
	DocumentTypeName *string `json:"doc_type_name"`
	RowsCount        int64   `json:"rows_count"`
}

// AggregationResult is the in-memory accumulator of one aggregation pass.
// A run owns its result; it is not safe for concurrent use.
type AggregationResult struct {
	Totals        map[int64]decimal.Decimal
	unmapped      map[UnmappedKey]int64
	RowsScanned   int64
	RowsMapped    int64
	UnknownFields map[string]int64
}

// NewAggregationResult returns an empty accumulator.
func NewAggregationResult() *AggregationResult {
	return &AggregationResult{
		Totals:        make(map[int64]decimal.Decimal),
		unmapped:      make(map[UnmappedKey]int64),
		UnknownFields: make(map[string]int64),
	}
}

// Unmapped returns the unmapped report sorted by operation then document type.
func (r *AggregationResult) Unmapped() []UnmappedGroup {
	groups := make([]UnmappedGroup, 0, len(r.unmapped))
	for key, count := range r.unmapped {
		g := UnmappedGroup{OperationName: key.OperationName, RowsCount: count}
		if key.DocumentTypeName != "" {
			doc := key.DocumentTypeName
			g.DocumentTypeName = &doc
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].OperationName != groups[j].OperationName {
			return groups[i].OperationName < groups[j].OperationName
		}
		return docName(groups[i]) < docName(groups[j])
	})
	return groups
}

// UnmappedRows returns the total number of rows that resolved to no mapping.
func (r *AggregationResult) UnmappedRows() int64 {
	var n int64
	for _, count := range r.unmapped {
		n += count
	}
	return n
}

// CategoryIDs returns the categories with a total, ascending.
func (r *AggregationResult) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(r.Totals))
	for id := range r.Totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func docName(g UnmappedGroup) string {
	if g.DocumentTypeName == nil {
		return ""
	}
	return *g.DocumentTypeName
}
