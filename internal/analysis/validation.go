package analysis

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

// maxReportedErrors caps the per-entity errors kept in a summary; counts stay exact
const maxReportedErrors = 100

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so errors match what loaders send
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateBatch checks lines and records at the engine boundary.
// Malformed entities are dropped and reported in the summary instead of aborting the run.
// It fails only when no line or no record survives.
func ValidateBatch(lines []domain.Line, records []domain.RidershipRecord) (domain.AnalysisBatch, domain.ValidationSummary, error) {
	summary := domain.ValidationSummary{RejectionCounts: map[string]int{}}
	batch := domain.AnalysisBatch{
		Lines:   make([]domain.Line, 0, len(lines)),
		Records: make([]domain.RidershipRecord, 0, len(records)),
	}

	seen := make(map[int]bool, len(lines))
	for i, line := range lines {
		errs := entityErrors("line", i, line.ID, line)
		if len(errs) == 0 && seen[line.ID] {
			errs = append(errs, domain.ValidationError{
				Entity: "line", Index: i, ID: line.ID, Field: "id", Reason: "duplicate line id",
			})
		}
		if len(errs) > 0 {
			summary.RejectedLines++
			recordErrors(&summary, errs)
			continue
		}
		seen[line.ID] = true
		batch.Lines = append(batch.Lines, line)
	}

	for i, rec := range records {
		errs := entityErrors("record", i, rec.LineID, rec)
		if err := rec.DateError(); err != nil {
			errs = append(errs, domain.ValidationError{
				Entity: "record", Index: i, ID: rec.LineID, Field: "date", Reason: err.Error(),
			})
		}
		if len(errs) > 0 {
			summary.RejectedRecords++
			recordErrors(&summary, errs)
			continue
		}
		if !seen[rec.LineID] {
			summary.OrphanRecords++
		}
		batch.Records = append(batch.Records, rec)
	}

	summary.AcceptedLines = len(batch.Lines)
	summary.AcceptedRecords = len(batch.Records)
	if len(summary.RejectionCounts) == 0 {
		summary.RejectionCounts = nil
	}

	if len(batch.Lines) == 0 {
		return batch, summary, fmt.Errorf("analysis: failed to validate batch: %w", domain.ErrEmptyCatalog)
	}
	if len(batch.Records) == 0 {
		return batch, summary, fmt.Errorf("analysis: failed to validate batch: %w", domain.ErrEmptyRidership)
	}
	return batch, summary, nil
}

func recordErrors(summary *domain.ValidationSummary, errs []domain.ValidationError) {
	for _, e := range errs {
		summary.RejectionCounts[e.Entity+"."+e.Field]++
		if len(summary.Errors) < maxReportedErrors {
			summary.Errors = append(summary.Errors, e)
		}
	}
}

func entityErrors(entity string, index, id int, v any) []domain.ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []domain.ValidationError{{Entity: entity, Index: index, ID: id, Reason: err.Error()}}
	}

	out := make([]domain.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, domain.ValidationError{
			Entity: entity,
			Index:  index,
			ID:     id,
			Field:  fe.Field(),
			Reason: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
