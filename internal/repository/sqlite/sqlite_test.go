package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_LinesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	lines := []domain.Line{
		{ID: 2, Name: "Ligne 2", Origin: "Port", Destination: "Zone Industrielle", DistanceKm: 18.7, TripDurationMin: 55, CurrentFrequencyMin: 15, Status: "active"},
		{ID: 1, Name: "Ligne 1", Origin: "Gare", Destination: "Université", DistanceKm: 14.2, TripDurationMin: 42, CurrentFrequencyMin: 10, Status: "active"},
	}
	require.NoError(t, repo.UpsertLines(ctx, lines))

	got, err := repo.ListLines(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, lines[1], got[0])
	assert.Equal(t, lines[0], got[1])

	// Upsert replaces by id
	updated := lines[1]
	updated.CurrentFrequencyMin = 8
	require.NoError(t, repo.UpsertLines(ctx, []domain.Line{updated}))
	got, err = repo.ListLines(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 8, got[0].CurrentFrequencyMin)
}

func TestRepository_ListRidershipFiltersByDate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	records := []domain.RidershipRecord{
		{LineID: 1, StopID: 10, Date: day(1), Hour: 8, Boardings: 12, Alightings: 3, Occupancy: 40, Capacity: 80},
		{LineID: 1, StopID: 11, Date: day(2), Hour: 9, Boardings: 7, Alightings: 5, Occupancy: 42, Capacity: 80},
		{LineID: 2, StopID: 20, Date: day(3), Hour: 17, Boardings: 20, Alightings: 9, Occupancy: 70, Capacity: 80},
		{LineID: 2, StopID: 21, Date: day(5), Hour: 18, Boardings: 1, Alightings: 1, Occupancy: 0, Capacity: 0},
	}
	require.NoError(t, repo.InsertRidership(ctx, records))

	got, err := repo.ListRidership(ctx, day(2), day(3))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[1], got[0])
	assert.Equal(t, records[2], got[1])

	all, err := repo.ListRidership(ctx, day(1), day(5))
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRepository_SaveAnalysisRun(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	now := time.Date(2024, 3, 8, 6, 0, 0, 0, time.UTC)
	run := domain.AnalysisRun{
		From:                  now.AddDate(0, 0, -7),
		To:                    now,
		LinesAnalyzed:         4,
		RecordsAccepted:       500,
		Recommendations:       3,
		LinesChanged:          2,
		CriticalLines:         1,
		TotalWaitReductionMin: 2.5,
		CreatedAt:             now,
	}
	require.NoError(t, repo.SaveAnalysisRun(ctx, run))
	require.NoError(t, repo.SaveAnalysisRun(ctx, run))

	n, err := repo.CountAnalysisRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRepository_Health(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Health(context.Background()))

	require.NoError(t, repo.Close())
	assert.Error(t, repo.Health(context.Background()))
}

func TestRepository_SatisfiesInterface(t *testing.T) {
	var _ domain.RidershipRepository = newTestRepo(t)
}
