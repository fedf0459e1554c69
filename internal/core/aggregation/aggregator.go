package aggregation

import (
	v1 "github.com/ledgerline/reportsync/internal/api/v1"
)

// Accumulate folds one row into result using the instructions resolved for it.
//
// Each instruction contributes value × sign to its category. A field with no value is
// skipped, and so is a field name outside the registry (counted in UnknownFields so a
// misconfigured mapping is visible). A row with no instructions is counted as unmapped
// and leaves every total untouched.
func Accumulate(result *AggregationResult, row *v1.ReportRow, instructions []v1.Instruction) {
	result.RowsScanned++

	if len(instructions) == 0 {
		key := UnmappedKey{OperationName: row.OperationName, DocumentTypeName: row.DocumentTypeName}
		result.unmapped[key]++
		return
	}
	result.RowsMapped++

	for _, ins := range instructions {
		value, read := ExtractDecimal(row, ins.SourceField)
		switch read {
		case FieldUnknown:
			result.UnknownFields[ins.SourceField]++
			continue
		case FieldEmpty:
			continue
		}

		result.Totals[ins.CategoryID] = result.Totals[ins.CategoryID].Add(value.Mul(ins.SignMultiplier))
	}
}
