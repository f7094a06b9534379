package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

func TestAnalyze_EndToEnd(t *testing.T) {
	now := time.Date(2024, 3, 13, 6, 0, 0, 0, time.UTC)
	lines := []domain.Line{line(1, 10), line(2, 10), line(3, 20), line(4, 15)}
	records := []domain.RidershipRecord{
		rec(1, 7, 120, 20, 85, 100),
		rec(1, 8, 140, 30, 85, 100),
		rec(2, 12, 10, 10, 30, 100),
		rec(3, 17, 60, 90, 60, 100),
		rec(3, 18, 40, 70, 60, 100),
		rec(2, 25, 1, 1, 1, 1), // rejected
	}

	report, err := Analyze(lines, records, DefaultSettings(), now)
	require.NoError(t, err)

	assert.Equal(t, now, report.GeneratedAt)
	assert.Len(t, report.LineAggregates, 3)
	assert.NotEmpty(t, report.BucketAggregates)

	require.Len(t, report.Recommendations, 3)
	assert.Equal(t, 5, report.Recommendations[0].RecommendedFrequencyMin)
	assert.Equal(t, 15, report.Recommendations[1].RecommendedFrequencyMin)
	assert.Equal(t, 20, report.Recommendations[2].RecommendedFrequencyMin)

	require.Len(t, report.ExcludedLines, 1)
	assert.Equal(t, 4, report.ExcludedLines[0].LineID)
	assert.Equal(t, domain.ReasonNoRecords, report.ExcludedLines[0].Reason)

	require.Len(t, report.CriticalLines, 1)
	assert.Equal(t, 1, report.CriticalLines[0].LineID)

	assert.Equal(t, []int{8, 7, 17}, hoursOf(report.PeakHours.ByBoardings))
	assert.Equal(t, []int{17, 18, 8}, hoursOf(report.PeakHours.ByAlightings))

	// 10 -> 5 saves 2.5 min, 10 -> 15 costs 2.5 min
	assert.Equal(t, 0.0, report.Impact.TotalWaitReductionMin)
	assert.Equal(t, 2, report.Impact.LinesChanged)

	assert.Equal(t, 1, report.Validation.RejectedRecords)
	assert.Empty(t, report.Warnings)
}

func TestAnalyze_WarnsOnFewPeakHours(t *testing.T) {
	report, err := Analyze([]domain.Line{line(1, 10)}, []domain.RidershipRecord{withRatio(1, 50)}, DefaultSettings(), testDate)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "peak hours")
	assert.Len(t, report.PeakHours.ByBoardings, 1)
}

func TestAnalyze_FailsOnEmptyBatch(t *testing.T) {
	report, err := Analyze([]domain.Line{line(1, 10)}, nil, DefaultSettings(), testDate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyRidership))
	assert.Equal(t, 1, report.Validation.AcceptedLines)
}

func TestAnalyze_ParallelPathMatchesSequential(t *testing.T) {
	lines := []domain.Line{line(1, 10), line(2, 12), line(3, 20)}
	records := make([]domain.RidershipRecord, 0, 3000)
	for i := 0; i < 3000; i++ {
		records = append(records, rec(1+i%3, i%24, i%17, i%19, 20+i%70, 100))
	}

	seq := DefaultSettings()
	seq.Workers = 1
	par := DefaultSettings()
	par.Workers = 4
	par.ParallelThreshold = 100

	a, err := Analyze(lines, records, seq, testDate)
	require.NoError(t, err)
	b, err := Analyze(lines, records, par, testDate)
	require.NoError(t, err)

	assertAggregatesClose(t, a.LineAggregates, b.LineAggregates)
	assertAggregatesClose(t, a.BucketAggregates, b.BucketAggregates)
	assert.Equal(t, len(a.Recommendations), len(b.Recommendations))
	for i := range a.Recommendations {
		assert.Equal(t, a.Recommendations[i].RecommendedFrequencyMin, b.Recommendations[i].RecommendedFrequencyMin)
	}
}

func TestSettings_Validate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{name: "cutoffs inverted", mutate: func(s *Settings) { s.OverloadCutoff, s.UnderuseCutoff = 0.3, 0.6 }},
		{name: "clamps inverted", mutate: func(s *Settings) { s.MinFrequencyMin, s.MaxFrequencyMin = 20, 10 }},
		{name: "zero step", mutate: func(s *Settings) { s.StepMin = 0 }},
		{name: "zero threshold", mutate: func(s *Settings) { s.CriticalThreshold = 0 }},
		{name: "no workers", mutate: func(s *Settings) { s.Workers = 0 }},
		{name: "top-k too large", mutate: func(s *Settings) { s.PeakTopK = 25 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}
