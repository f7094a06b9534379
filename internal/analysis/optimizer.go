package analysis

import (
	"fmt"
	"sort"

	"github.com/smartcity/transit-optimizer/internal/domain"
	"github.com/smartcity/transit-optimizer/pkg/utils"
)

// Optimization is the output of the frequency optimizer
type Optimization struct {
	Recommendations []domain.Recommendation
	Excluded        []domain.NoDataError
}

// Optimize joins line-level aggregates with the catalog and recommends a headway per line.
// Catalog lines without a defined occupancy ratio are listed in Excluded instead.
// A line with a non-positive frequency fails the whole call with domain.ErrDivisionGuard.
func Optimize(aggregates []domain.OccupancyAggregate, lines []domain.Line, s Settings) (Optimization, error) {
	for _, line := range lines {
		if line.CurrentFrequencyMin <= 0 {
			return Optimization{}, fmt.Errorf("analysis: failed to optimize line %d: %w", line.ID, domain.ErrDivisionGuard)
		}
	}

	idx := byLine(aggregates)
	result := Optimization{
		Recommendations: make([]domain.Recommendation, 0, len(lines)),
		Excluded:        make([]domain.NoDataError, 0),
	}

	for _, line := range lines {
		agg, ok := idx[line.ID]
		if !ok {
			result.Excluded = append(result.Excluded, domain.NoDataError{
				LineID: line.ID, LineName: line.Name, Reason: domain.ReasonNoRecords,
			})
			continue
		}
		ratio, defined := agg.Ratio()
		if !defined {
			result.Excluded = append(result.Excluded, domain.NoDataError{
				LineID: line.ID, LineName: line.Name, Reason: domain.ReasonNoCapacity,
			})
			continue
		}
		result.Recommendations = append(result.Recommendations, Recommend(line, ratio, s))
	}

	sort.Slice(result.Recommendations, func(i, j int) bool {
		return result.Recommendations[i].LineID < result.Recommendations[j].LineID
	})
	sort.Slice(result.Excluded, func(i, j int) bool {
		return result.Excluded[i].LineID < result.Excluded[j].LineID
	})
	return result, nil
}

// Recommend applies the three-band policy to one line.
// The caller guarantees line.CurrentFrequencyMin > 0.
func Recommend(line domain.Line, ratio float64, s Settings) domain.Recommendation {
	f := line.CurrentFrequencyMin

	var (
		rationale domain.Rationale
		target    int
	)
	switch {
	case ratio > s.OverloadCutoff:
		rationale = domain.RationaleOverloaded
		target = f - s.StepMin
	case ratio < s.UnderuseCutoff:
		rationale = domain.RationaleUnderused
		target = f + s.StepMin
	default:
		rationale = domain.RationaleOptimal
		target = f
	}
	recommended := utils.Clamp(target, s.MinFrequencyMin, s.MaxFrequencyMin)

	action := domain.ActionKeep
	switch {
	case recommended < f:
		action = domain.ActionDecreaseHeadway
	case recommended > f:
		action = domain.ActionIncreaseHeadway
	}

	return domain.Recommendation{
		LineID:                  line.ID,
		LineName:                line.Name,
		CurrentFrequencyMin:     f,
		RecommendedFrequencyMin: recommended,
		MeanOccupancyRatio:      ratio,
		EfficiencyGain:          float64(utils.Abs(f-recommended)) / float64(f),
		Rationale:               rationale,
		Action:                  action,
	}
}
