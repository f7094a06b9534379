package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

func TestCriticalLines(t *testing.T) {
	lines := []domain.Line{line(1, 10), line(2, 10), line(3, 10), line(4, 10), line(5, 10), line(6, 10)}
	records := []domain.RidershipRecord{
		withRatio(1, 75), // exactly at threshold
		withRatio(2, 92),
		withRatio(3, 40),
		withRatio(4, 92), // ties with line 2
		rec(5, 8, 1, 1, 99, 0),
		withRatio(7, 99), // not in catalog
		// line 6 has no ridership
	}

	critical := CriticalLines(Aggregate(records, PartitionLine), lines, 0.75)
	require.Len(t, critical, 3)

	assert.Equal(t, 2, critical[0].LineID)
	assert.Equal(t, 4, critical[1].LineID)
	assert.Equal(t, 1, critical[2].LineID)
	assert.Equal(t, line(2, 10).Name, critical[0].LineName)
	assert.InDelta(t, 0.92, critical[0].MeanOccupancyRatio, 1e-12)
	assert.InDelta(t, 0.75, critical[2].MeanOccupancyRatio, 1e-12)
}

func TestCriticalLines_StableOnTies(t *testing.T) {
	lines := []domain.Line{line(1, 10), line(2, 10), line(3, 10)}
	ratio := 0.9
	aggs := []domain.OccupancyAggregate{
		{LineID: 3, MeanOccupancyRatio: &ratio},
		{LineID: 1, MeanOccupancyRatio: &ratio},
		{LineID: 2, MeanOccupancyRatio: &ratio},
	}

	critical := CriticalLines(aggs, lines, 0.75)
	require.Len(t, critical, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{critical[0].LineID, critical[1].LineID, critical[2].LineID})
}

func TestCriticalLines_NoneAboveThreshold(t *testing.T) {
	critical := CriticalLines(Aggregate([]domain.RidershipRecord{withRatio(1, 10)}, PartitionLine), []domain.Line{line(1, 10)}, 0.75)
	assert.NotNil(t, critical)
	assert.Empty(t, critical)
}
