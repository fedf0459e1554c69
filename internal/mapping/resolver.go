// Package mapping resolves report rows to category instructions.
package mapping

import (
	"sort"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
)

// Tier is one specificity level of the lookup. Every tier already implies an equal operation name.
type Tier struct {
	Name  string
	Match func(m *v1.CategoryMapping, row *v1.ReportRow) bool
}

// Tiers are tried in order; the first one with any match wins.
// Each tier relaxes one more key: country first, then document type.
var Tiers = []Tier{
	{
		Name: "exact",
		Match: func(m *v1.CategoryMapping, row *v1.ReportRow) bool {
			return m.DocumentTypeName == row.DocumentTypeName && m.CountryCode == row.CountryCode
		},
	},
	{
		Name: "operation+document",
		Match: func(m *v1.CategoryMapping, row *v1.ReportRow) bool {
			return m.DocumentTypeName == row.DocumentTypeName
		},
	},
	{
		Name: "operation",
		Match: func(*v1.CategoryMapping, *v1.ReportRow) bool {
			return true
		},
	},
}

// Resolver is an immutable index of a tenant's active mappings. Safe for concurrent use.
type Resolver struct {
	byOperation map[string][]v1.CategoryMapping
	tiers       []Tier
	size        int
}

// NewResolver indexes the active mappings by operation name. Inactive ones are dropped here.
func NewResolver(mappings []v1.CategoryMapping) *Resolver {
	r := &Resolver{
		byOperation: make(map[string][]v1.CategoryMapping),
		tiers:       Tiers,
	}
	for _, m := range mappings {
		if !m.IsActive {
			continue
		}
		r.byOperation[m.OperationName] = append(r.byOperation[m.OperationName], m)
		r.size++
	}
	for _, group := range r.byOperation {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}
	return r
}

// Resolve returns the instructions of the most specific tier that matches the row,
// ordered by mapping id. An empty result means the row is unmapped.
func (r *Resolver) Resolve(row *v1.ReportRow) []v1.Instruction {
	candidates := r.byOperation[row.OperationName]
	if len(candidates) == 0 {
		return nil
	}

	for _, tier := range r.tiers {
		var out []v1.Instruction
		for i := range candidates {
			m := &candidates[i]
			if !tier.Match(m, row) {
				continue
			}
			out = append(out, v1.Instruction{
				MappingID:      m.ID,
				Tier:           tier.Name,
				CategoryID:     m.CategoryID,
				SourceField:    m.SourceField,
				SignMultiplier: m.SignMultiplier,
			})
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// Len is the number of active mappings indexed.
func (r *Resolver) Len() int {
	return r.size
}
