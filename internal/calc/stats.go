package calc

import (
	"github.com/montanaflynn/stats"

	"markbook/internal/shared"
)

// ============================================================================
// Pure Statistics Computation
// ============================================================================
// Aggregation rules: No Mark cells (nil) are excluded from every aggregate.
// Explicit zeros count as real scores of 0. Assessments with out_of <= 0 are
// excluded from percent-based aggregates.

// columnStats computes per-assessment aggregates over one column of the
// grid. values holds one entry per roster row; nil means No Mark.
func columnStats(assessment shared.Assessment, values []*float64) shared.AssessmentStats {
	result := shared.AssessmentStats{
		AssessmentID: assessment.ID,
		Idx:          assessment.Idx,
	}

	var raws, percents []float64
	for _, v := range values {
		if v == nil {
			result.NoMarkCount++
			continue
		}
		if *v == 0 {
			result.ZeroCount++
		} else {
			result.ScoredCount++
		}

		raws = append(raws, *v)
		if assessment.OutOf > 0 {
			percents = append(percents, *v/assessment.OutOf*100)
		}
	}

	if avg, err := stats.Mean(raws); err == nil {
		result.AvgRaw = &avg
	}
	if avg, err := stats.Mean(percents); err == nil {
		result.AvgPercent = &avg
	}
	if med, err := stats.Median(percents); err == nil {
		result.MedianPercent = &med
	}

	return result
}

// finalMark computes the weighted percent mark for one student row.
// cells holds one entry per assessment column; nil cells and zero-weight or
// unweighable assessments contribute nothing. Returns nil when no cell
// counts.
func finalMark(assessments []shared.Assessment, cells []*float64) *float64 {
	var weightedSum, totalWeight float64

	for i, a := range assessments {
		if i >= len(cells) || cells[i] == nil {
			continue
		}
		if a.OutOf <= 0 || a.Weight <= 0 {
			continue
		}

		weightedSum += *cells[i] / a.OutOf * a.Weight
		totalWeight += a.Weight
	}

	if totalWeight == 0 {
		return nil
	}

	mark := weightedSum / totalWeight * 100
	return &mark
}
