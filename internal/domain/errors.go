package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog means no usable line was provided
	ErrEmptyCatalog = errors.New("line catalog is empty")

	// ErrEmptyRidership means no usable ridership record was provided
	ErrEmptyRidership = errors.New("ridership batch is empty")

	// ErrDivisionGuard rejects a computation that would divide by a zero headway
	ErrDivisionGuard = errors.New("division guard: frequency must be positive")
)

// ValidationError describes one malformed input entity
type ValidationError struct {
	Entity string `json:"entity"` // "line" or "record"
	Index  int    `json:"index"`
	ID     int    `json:"id"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s #%d (id %d): %s %s", e.Entity, e.Index, e.ID, e.Field, e.Reason)
}

// InsufficientDataError means a ranking or statistic had too few distinct groups
type InsufficientDataError struct {
	What   string
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d groups, got %d", e.What, e.Needed, e.Got)
}

// NoDataError marks a catalog line skipped because it has no usable ridership
type NoDataError struct {
	LineID   int    `json:"line_id"`
	LineName string `json:"line_name"`
	Reason   string `json:"reason"`
}

func (e NoDataError) Error() string {
	return fmt.Sprintf("line %d (%s): %s", e.LineID, e.LineName, e.Reason)
}

// Reasons for excluding a line from the recommendation set
const (
	ReasonNoRecords  = "no ridership records"
	ReasonNoCapacity = "no records with positive capacity"
)
