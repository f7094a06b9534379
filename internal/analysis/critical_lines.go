package analysis

import (
	"sort"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

// CriticalLines returns catalog lines whose mean occupancy ratio is at or above threshold,
// busiest first. Ties keep the order of the aggregate input.
// Lines without a defined ratio are never critical.
func CriticalLines(aggregates []domain.OccupancyAggregate, lines []domain.Line, threshold float64) []domain.CriticalLine {
	catalog := make(map[int]domain.Line, len(lines))
	for _, l := range lines {
		catalog[l.ID] = l
	}

	critical := make([]domain.CriticalLine, 0)
	for _, agg := range aggregates {
		if agg.Bucket != "" {
			continue
		}
		ratio, ok := agg.Ratio()
		if !ok || ratio < threshold {
			continue
		}
		line, known := catalog[agg.LineID]
		if !known {
			continue
		}
		critical = append(critical, domain.CriticalLine{
			LineID:             line.ID,
			LineName:           line.Name,
			MeanOccupancyRatio: ratio,
		})
	}

	sort.SliceStable(critical, func(i, j int) bool {
		return critical[i].MeanOccupancyRatio > critical[j].MeanOccupancyRatio
	})
	return critical
}
