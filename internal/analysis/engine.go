package analysis

import (
	"errors"
	"time"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

// Diagnostics is the output of the diagnostic branch
type Diagnostics struct {
	BucketAggregates []domain.OccupancyAggregate
	CriticalLines    []domain.CriticalLine
	PeakHours        domain.PeakHours
	Warnings         []string
}

// Decision is the output of the decision branch
type Decision struct {
	Optimization
	Impact domain.Impact
}

// AggregateLines builds line-level aggregates, sharding large batches across workers
func AggregateLines(records []domain.RidershipRecord, s Settings) []domain.OccupancyAggregate {
	return aggregate(records, PartitionLine, s)
}

func aggregate(records []domain.RidershipRecord, p Partition, s Settings) []domain.OccupancyAggregate {
	if s.Workers > 1 && len(records) >= s.ParallelThreshold {
		return AggregateConcurrently(records, p, s.Workers)
	}
	return Aggregate(records, p)
}

// Diagnose runs the critical-line detector and the peak-window analyzer
func Diagnose(batch domain.AnalysisBatch, lineAggregates []domain.OccupancyAggregate, s Settings) Diagnostics {
	d := Diagnostics{
		BucketAggregates: aggregate(batch.Records, PartitionLineBucket, s),
		CriticalLines:    CriticalLines(lineAggregates, batch.Lines, s.CriticalThreshold),
	}

	peaks, err := PeakWindows(batch.Records, s.PeakTopK)
	var insufficient *domain.InsufficientDataError
	if errors.As(err, &insufficient) {
		d.Warnings = append(d.Warnings, insufficient.Error())
	}
	d.PeakHours = peaks
	return d
}

// Decide runs the frequency optimizer and the impact evaluator
func Decide(lines []domain.Line, lineAggregates []domain.OccupancyAggregate, s Settings) (Decision, error) {
	opt, err := Optimize(lineAggregates, lines, s)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Optimization: opt,
		Impact:       EvaluateImpact(opt.Recommendations),
	}, nil
}

// Analyze validates a batch and runs both branches sequentially
func Analyze(lines []domain.Line, records []domain.RidershipRecord, s Settings, now time.Time) (domain.AnalysisReport, error) {
	batch, summary, err := ValidateBatch(lines, records)
	if err != nil {
		return domain.AnalysisReport{Validation: summary, GeneratedAt: now}, err
	}

	lineAggs := AggregateLines(batch.Records, s)
	diag := Diagnose(batch, lineAggs, s)
	dec, err := Decide(batch.Lines, lineAggs, s)
	if err != nil {
		return domain.AnalysisReport{Validation: summary, GeneratedAt: now}, err
	}
	return Assemble(lineAggs, diag, dec, summary, now), nil
}

// Assemble gathers branch outputs into one report
func Assemble(lineAggs []domain.OccupancyAggregate, diag Diagnostics, dec Decision, summary domain.ValidationSummary, now time.Time) domain.AnalysisReport {
	return domain.AnalysisReport{
		LineAggregates:   lineAggs,
		BucketAggregates: diag.BucketAggregates,
		CriticalLines:    diag.CriticalLines,
		PeakHours:        diag.PeakHours,
		Recommendations:  dec.Recommendations,
		ExcludedLines:    dec.Excluded,
		Impact:           dec.Impact,
		Validation:       summary,
		Warnings:         diag.Warnings,
		GeneratedAt:      now,
	}
}
