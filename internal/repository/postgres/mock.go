package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

// MockRepository implements domain.RidershipRepository for testing/demo mode.
// It serves a fixed demo network and keeps saved runs in memory.
type MockRepository struct {
	lines   []domain.Line
	records []domain.RidershipRecord

	mu   sync.Mutex
	runs []domain.AnalysisRun
}

// NewMockRepository creates a mock repository with the demo network
func NewMockRepository() *MockRepository {
	lines := demoLines()
	return &MockRepository{
		lines:   lines,
		records: demoRidership(lines, time.Now().UTC().Truncate(24*time.Hour)),
	}
}

// NewMockRepositoryWith creates a mock repository serving the given data
func NewMockRepositoryWith(lines []domain.Line, records []domain.RidershipRecord) *MockRepository {
	return &MockRepository{lines: lines, records: records}
}

// ListLines returns the demo catalog
func (r *MockRepository) ListLines(ctx context.Context) ([]domain.Line, error) {
	out := make([]domain.Line, len(r.lines))
	copy(out, r.lines)
	return out, nil
}

// ListRidership returns demo records whose service date falls in [from, to]
func (r *MockRepository) ListRidership(ctx context.Context, from, to time.Time) ([]domain.RidershipRecord, error) {
	from, to = domain.ServiceDate(from), domain.ServiceDate(to)

	var out []domain.RidershipRecord
	for _, rec := range r.records {
		day := domain.ServiceDate(rec.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveAnalysisRun keeps the run in memory
func (r *MockRepository) SaveAnalysisRun(ctx context.Context, run domain.AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

// Runs returns the runs saved so far
func (r *MockRepository) Runs() []domain.AnalysisRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AnalysisRun, len(r.runs))
	copy(out, r.runs)
	return out
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

func demoLines() []domain.Line {
	return []domain.Line{
		{ID: 1, Name: "Ligne 1", Origin: "Gare Centrale", Destination: "Université", DistanceKm: 14.2, TripDurationMin: 42, CurrentFrequencyMin: 10, Status: "active"},
		{ID: 2, Name: "Ligne 2", Origin: "Port", Destination: "Zone Industrielle", DistanceKm: 18.7, TripDurationMin: 55, CurrentFrequencyMin: 15, Status: "active"},
		{ID: 3, Name: "Ligne 3", Origin: "Hôpital", Destination: "Centre Commercial", DistanceKm: 9.4, TripDurationMin: 28, CurrentFrequencyMin: 20, Status: "active"},
		{ID: 4, Name: "Ligne 4", Origin: "Aéroport", Destination: "Gare Centrale", DistanceKm: 22.1, TripDurationMin: 48, CurrentFrequencyMin: 12, Status: "active"},
		{ID: 5, Name: "Ligne 5", Origin: "Stade", Destination: "Vieille Ville", DistanceKm: 7.8, TripDurationMin: 25, CurrentFrequencyMin: 25, Status: "suspended"},
	}
}

// demoLoad is the base occupancy ratio per line, in percent
var demoLoad = map[int]int{1: 88, 2: 30, 3: 60, 4: 78}

// demoRidership builds a week of hourly observations ending at today.
// Line 5 has no observations, so it shows up as excluded.
func demoRidership(lines []domain.Line, today time.Time) []domain.RidershipRecord {
	const capacity = 80
	var records []domain.RidershipRecord

	for day := 6; day >= 0; day-- {
		date := today.AddDate(0, 0, -day)
		for _, l := range lines {
			load, ok := demoLoad[l.ID]
			if !ok {
				continue
			}
			for hour := 5; hour <= 23; hour++ {
				boost := rushBoost(hour)
				occupancy := capacity * load * boost / 10000
				records = append(records, domain.RidershipRecord{
					LineID:     l.ID,
					StopID:     l.ID*100 + hour%4,
					Date:       date,
					Hour:       hour,
					Boardings:  occupancy / 2 * boost / 100,
					Alightings: occupancy / 3 * rushBoost((hour+15)%24) / 100,
					Occupancy:  min(occupancy, capacity),
					Capacity:   capacity,
				})
			}
		}
	}
	return records
}

// rushBoost returns a percentage multiplier peaking at the morning and evening rush
func rushBoost(hour int) int {
	switch {
	case hour >= 7 && hour <= 9:
		return 120
	case hour >= 17 && hour <= 19:
		return 115
	case hour >= 12 && hour <= 14:
		return 100
	case hour >= 22 || hour <= 5:
		return 50
	default:
		return 90
	}
}
