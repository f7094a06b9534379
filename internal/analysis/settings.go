// Package analysis turns ridership batches into occupancy statistics,
// per-line headway recommendations and a network impact estimate.
//
// Every function in this package is a pure reduction over its inputs:
// nothing is cached between calls and inputs are never mutated.
package analysis

import (
	"fmt"
	"runtime"
)

// Settings holds the tunable thresholds of the engine
type Settings struct {
	// CriticalThreshold is the mean occupancy at or above which a line is critical
	CriticalThreshold float64 `yaml:"critical_threshold" validate:"gt=0"`

	// OverloadCutoff and UnderuseCutoff bound the inclusive "Optimal" band
	OverloadCutoff float64 `yaml:"overload_cutoff" validate:"gt=0,gtfield=UnderuseCutoff"`
	UnderuseCutoff float64 `yaml:"underuse_cutoff" validate:"gte=0"`

	// StepMin is how far a single recommendation moves the headway
	StepMin int `yaml:"step_min" validate:"gt=0"`

	// Recommended headways are clamped to [MinFrequencyMin, MaxFrequencyMin]
	MinFrequencyMin int `yaml:"min_frequency_min" validate:"gt=0"`
	MaxFrequencyMin int `yaml:"max_frequency_min" validate:"gtefield=MinFrequencyMin"`

	// PeakTopK is the length of each peak-hour ranking
	PeakTopK int `yaml:"peak_top_k" validate:"gt=0,lte=24"`

	// Aggregation switches to sharded workers at ParallelThreshold records
	Workers           int `yaml:"workers" validate:"gte=1"`
	ParallelThreshold int `yaml:"parallel_threshold" validate:"gte=0"`
}

// DefaultSettings returns the engine defaults
func DefaultSettings() Settings {
	return Settings{
		CriticalThreshold: 0.75,
		OverloadCutoff:    0.80,
		UnderuseCutoff:    0.40,
		StepMin:           5,
		MinFrequencyMin:   5,
		MaxFrequencyMin:   30,
		PeakTopK:          3,
		Workers:           runtime.NumCPU(),
		ParallelThreshold: 50_000,
	}
}

// Validate checks the settings are internally consistent
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("analysis: invalid settings: %w", err)
	}
	return nil
}
