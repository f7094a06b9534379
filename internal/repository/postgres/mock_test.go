package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

func TestMockRepository_DemoNetwork(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()

	lines, err := repo.ListLines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 5)

	to := time.Now().UTC()
	records, err := repo.ListRidership(ctx, to.AddDate(0, 0, -30), to)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	perLine := map[int]int{}
	for _, rec := range records {
		perLine[rec.LineID]++
		assert.GreaterOrEqual(t, rec.Hour, 0)
		assert.LessOrEqual(t, rec.Hour, 23)
		assert.LessOrEqual(t, rec.Occupancy, rec.Capacity)
	}
	assert.Zero(t, perLine[5], "line 5 has no demo ridership")
	assert.Equal(t, perLine[1], perLine[2])
}

func TestMockRepository_FiltersByDate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	repo := NewMockRepositoryWith(
		[]domain.Line{{ID: 1, Name: "Ligne 1", CurrentFrequencyMin: 10}},
		[]domain.RidershipRecord{
			{LineID: 1, Date: day(1), Hour: 8},
			{LineID: 1, Date: day(4), Hour: 8},
			{LineID: 1, Date: day(9), Hour: 8},
		},
	)

	got, err := repo.ListRidership(context.Background(), day(2), day(9))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMockRepository_SaveAnalysisRun(t *testing.T) {
	repo := NewMockRepositoryWith(nil, nil)
	require.NoError(t, repo.SaveAnalysisRun(context.Background(), domain.AnalysisRun{LinesAnalyzed: 3}))

	runs := repo.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].LinesAnalyzed)
	assert.NoError(t, repo.Health(context.Background()))
}
