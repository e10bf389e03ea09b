// Package aggregate recomputes every derived quantity of a report from its
// resource buckets. Derived values are never persisted independently or
// hand-edited; each pass rebuilds them from source data so they cannot
// drift stale.
package aggregate

import (
	"github.com/orestack/minereport/internal/model"
)

// Run returns an updated copy of the report with per-bucket contained
// metal and report-level totals recomputed. The input is not mutated.
func Run(report *model.CanonicalReport) *model.CanonicalReport {
	out := report.Clone()

	var totalTonnage, totalMetal float64
	for i := range out.ResourceEstimates {
		b := &out.ResourceEstimates[i]
		b.ContainedMetal = b.Tonnage * b.Grade
		totalTonnage += b.Tonnage
		totalMetal += b.ContainedMetal
	}

	if len(out.ResourceEstimates) == 0 {
		out.TotalTonnage = nil
		out.WeightedAvgGrade = nil
		return out
	}

	out.TotalTonnage = &totalTonnage
	if totalTonnage == 0 {
		// Zero total tonnage would divide to NaN; absent is the honest answer.
		out.WeightedAvgGrade = nil
		return out
	}
	avg := totalMetal / totalTonnage
	out.WeightedAvgGrade = &avg
	return out
}
