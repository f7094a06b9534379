package analysis

import (
	"time"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

var testDate = time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

func rec(lineID, hour, boardings, alightings, occupancy, capacity int) domain.RidershipRecord {
	return domain.RidershipRecord{
		LineID:     lineID,
		StopID:     100 + hour,
		Date:       testDate,
		Hour:       hour,
		Boardings:  boardings,
		Alightings: alightings,
		Occupancy:  occupancy,
		Capacity:   capacity,
	}
}

func line(id, freq int) domain.Line {
	return domain.Line{
		ID:                  id,
		Name:                "Ligne " + string(rune('A'+id-1)),
		Origin:              "Gare Centrale",
		Destination:         "Campus",
		DistanceKm:          12.5,
		TripDurationMin:     40,
		CurrentFrequencyMin: freq,
		Status:              "active",
	}
}

// withRatio returns a single record whose occupancy ratio is occupancy/100
func withRatio(lineID, occupancy int) domain.RidershipRecord {
	return rec(lineID, 8, 10, 10, occupancy, 100)
}
