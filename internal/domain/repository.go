package domain

import (
	"context"
	"time"
)

// RidershipRepository defines the interface for ridership persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type RidershipRepository interface {
	// ListLines returns the line catalog
	ListLines(ctx context.Context) ([]Line, error)

	// ListRidership returns records observed between from and to, inclusive
	ListRidership(ctx context.Context, from, to time.Time) ([]RidershipRecord, error)

	// SaveAnalysisRun persists the summary of a run
	SaveAnalysisRun(ctx context.Context, run AnalysisRun) error

	// Health checks database connectivity
	Health(ctx context.Context) error
}
