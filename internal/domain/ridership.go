package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// Line is a bus line of the network catalog
type Line struct {
	ID                  int     `json:"id" validate:"gt=0"`
	Name                string  `json:"name"`
	Origin              string  `json:"origin"`
	Destination         string  `json:"destination"`
	DistanceKm          float64 `json:"distance_km" validate:"gte=0"`
	TripDurationMin     int     `json:"trip_duration_min" validate:"gte=0"`
	CurrentFrequencyMin int     `json:"current_frequency_min" validate:"gt=0"`
	Status              string  `json:"status"`
}

// RidershipRecord is one stop-visit observation.
// Hour is already normalized to 0-23 by the loader.
type RidershipRecord struct {
	LineID     int       `json:"line_id" validate:"gt=0"`
	StopID     int       `json:"stop_id" validate:"gte=0"`
	Date       time.Time `json:"date"`
	Hour       int       `json:"hour" validate:"gte=0,lte=23"`
	Boardings  int       `json:"boardings" validate:"gte=0"`
	Alightings int       `json:"alightings" validate:"gte=0"`
	Occupancy  int       `json:"occupancy" validate:"gte=0"`
	Capacity   int       `json:"capacity" validate:"gte=0"`

	dateErr error
}

// DateLayout is the service-date format used by loaders and repositories
const DateLayout = "2006-01-02"

// ErrInvalidDate marks a record whose date is neither YYYY-MM-DD nor RFC3339
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD or RFC3339")

// ServiceDate returns the calendar day of t as midnight UTC
func ServiceDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts a service date (YYYY-MM-DD) or an RFC3339 timestamp
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// UnmarshalJSON decodes a record, keeping an unparseable date as a per-record
// error so one bad record does not fail the whole batch.
func (r *RidershipRecord) UnmarshalJSON(data []byte) error {
	type plain RidershipRecord
	aux := struct {
		*plain
		Date json.RawMessage `json:"date"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Date, r.dateErr = time.Time{}, nil
	if len(aux.Date) == 0 || string(aux.Date) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(aux.Date, &raw); err != nil {
		r.dateErr = ErrInvalidDate
		return nil
	}
	r.Date, r.dateErr = ParseDate(raw)
	return nil
}

// DateError reports a date that failed to decode, or nil
func (r RidershipRecord) DateError() error {
	return r.dateErr
}

// HasCapacity reports whether the record can contribute to an occupancy ratio
func (r RidershipRecord) HasCapacity() bool {
	return r.Capacity > 0
}

// OccupancyRatio returns occupancy/capacity, or false when capacity is zero
func (r RidershipRecord) OccupancyRatio() (float64, bool) {
	if !r.HasCapacity() {
		return 0, false
	}
	return float64(r.Occupancy) / float64(r.Capacity), true
}

// TimeOfDayBucket groups hours of the day into service periods
type TimeOfDayBucket string

const (
	BucketMorning   TimeOfDayBucket = "morning"
	BucketMidday    TimeOfDayBucket = "midday"
	BucketAfternoon TimeOfDayBucket = "afternoon"
	BucketEvening   TimeOfDayBucket = "evening"
	BucketNight     TimeOfDayBucket = "night"
)

// Buckets lists every bucket in day order
var Buckets = []TimeOfDayBucket{
	BucketMorning,
	BucketMidday,
	BucketAfternoon,
	BucketEvening,
	BucketNight,
}

// BucketForHour maps an hour of the day to its bucket.
// Hours outside 0-23 are folded into the day first, so the mapping is total.
func BucketForHour(hour int) TimeOfDayBucket {
	hour = ((hour % 24) + 24) % 24

	switch {
	case hour >= 6 && hour <= 9: // Morning rush
		return BucketMorning
	case hour >= 10 && hour <= 13:
		return BucketMidday
	case hour >= 14 && hour <= 16:
		return BucketAfternoon
	case hour >= 17 && hour <= 21: // Evening rush and return trips
		return BucketEvening
	default: // 22-05
		return BucketNight
	}
}

// Order returns the position of the bucket in day order, or len(Buckets) if unknown
func (b TimeOfDayBucket) Order() int {
	for i, known := range Buckets {
		if known == b {
			return i
		}
	}
	return len(Buckets)
}
