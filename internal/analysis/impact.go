package analysis

import (
	"github.com/smartcity/transit-optimizer/internal/domain"
	"github.com/smartcity/transit-optimizer/pkg/utils"
)

// ExpectedWait is the average wait in minutes for a headway, assuming uniform arrivals
func ExpectedWait(headwayMin int) float64 {
	return float64(headwayMin) / 2.0
}

// EvaluateImpact sums the wait-time reduction over recommendations that change the headway.
// A negative total means the changes lengthen waits overall.
func EvaluateImpact(recs []domain.Recommendation) domain.Impact {
	var impact domain.Impact
	for _, r := range recs {
		if !r.Changed() {
			continue
		}
		impact.TotalWaitReductionMin += ExpectedWait(r.CurrentFrequencyMin) - ExpectedWait(r.RecommendedFrequencyMin)
		impact.LinesChanged++
	}

	if avg, ok := utils.SafeRatio(impact.TotalWaitReductionMin, float64(impact.LinesChanged)); ok {
		impact.AveragePerChangedLine = &avg
	}
	return impact
}
