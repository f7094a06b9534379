package analysis

import (
	"sort"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

// HourlyTotals sums boardings and alightings per hour across all lines, sorted by hour
func HourlyTotals(records []domain.RidershipRecord) []domain.HourTotal {
	totals := make(map[int]*domain.HourTotal)
	for _, rec := range records {
		t, ok := totals[rec.Hour]
		if !ok {
			t = &domain.HourTotal{Hour: rec.Hour}
			totals[rec.Hour] = t
		}
		t.Boardings += rec.Boardings
		t.Alightings += rec.Alightings
	}

	out := make([]domain.HourTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// PeakWindows ranks the k busiest hours by boardings and, separately, by alightings.
// Ties go to the earlier hour. When fewer than k distinct hours exist the rankings
// hold every available hour and an *domain.InsufficientDataError is returned alongside.
func PeakWindows(records []domain.RidershipRecord, k int) (domain.PeakHours, error) {
	hourly := HourlyTotals(records)
	peaks := domain.PeakHours{
		ByBoardings:  topK(hourly, k, func(t domain.HourTotal) int { return t.Boardings }),
		ByAlightings: topK(hourly, k, func(t domain.HourTotal) int { return t.Alightings }),
		Hourly:       hourly,
	}

	if len(hourly) < k {
		return peaks, &domain.InsufficientDataError{What: "peak hours", Needed: k, Got: len(hourly)}
	}
	return peaks, nil
}

// topK returns at most k totals, descending by metric then ascending by hour
func topK(hourly []domain.HourTotal, k int, metric func(domain.HourTotal) int) []domain.HourTotal {
	ranked := make([]domain.HourTotal, len(hourly))
	copy(ranked, hourly)

	sort.SliceStable(ranked, func(i, j int) bool {
		mi, mj := metric(ranked[i]), metric(ranked[j])
		if mi != mj {
			return mi > mj
		}
		return ranked[i].Hour < ranked[j].Hour
	})

	if k < 0 {
		k = 0
	}
	return ranked[:min(k, len(ranked))]
}
