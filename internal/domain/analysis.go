package domain

import "time"

// OccupancyAggregate summarizes ridership for one line, optionally restricted to a bucket.
// MeanOccupancyRatio is nil when no record of the group had a positive capacity.
type OccupancyAggregate struct {
	LineID             int             `json:"line_id"`
	Bucket             TimeOfDayBucket `json:"bucket,omitempty"`
	MeanOccupancyRatio *float64        `json:"mean_occupancy_ratio"`
	TotalBoardings     int             `json:"total_boardings"`
	TotalAlightings    int             `json:"total_alightings"`
	RecordCount        int             `json:"record_count"`
	RatioSampleCount   int             `json:"ratio_sample_count"`
}

// Ratio returns the mean occupancy ratio and whether it is defined
func (a OccupancyAggregate) Ratio() (float64, bool) {
	if a.MeanOccupancyRatio == nil {
		return 0, false
	}
	return *a.MeanOccupancyRatio, true
}

// CriticalLine is a line whose mean occupancy meets the critical threshold
type CriticalLine struct {
	LineID             int     `json:"line_id"`
	LineName           string  `json:"line_name"`
	MeanOccupancyRatio float64 `json:"mean_occupancy_ratio"`
}

// HourTotal holds network-wide boardings and alightings for one hour of the day
type HourTotal struct {
	Hour       int `json:"hour"`
	Boardings  int `json:"boardings"`
	Alightings int `json:"alightings"`
}

// PeakHours holds the busiest hours ranked by boardings and by alightings
type PeakHours struct {
	ByBoardings  []HourTotal `json:"by_boardings"`
	ByAlightings []HourTotal `json:"by_alightings"`
	Hourly       []HourTotal `json:"hourly"`
}

// Rationale is the category behind a frequency recommendation
type Rationale string

const (
	RationaleOverloaded Rationale = "Surcharge"
	RationaleUnderused  Rationale = "Sous-utilisation"
	RationaleOptimal    Rationale = "Optimal"
)

// Action tells machine consumers which way the headway moves
type Action string

const (
	ActionDecreaseHeadway Action = "decrease_headway"
	ActionIncreaseHeadway Action = "increase_headway"
	ActionKeep            Action = "keep"
)

// Recommendation is the proposed headway for one line
type Recommendation struct {
	LineID                  int       `json:"line_id"`
	LineName                string    `json:"line_name"`
	CurrentFrequencyMin     int       `json:"current_frequency_min"`
	RecommendedFrequencyMin int       `json:"recommended_frequency_min"`
	MeanOccupancyRatio      float64   `json:"mean_occupancy_ratio"`
	EfficiencyGain          float64   `json:"efficiency_gain"`
	Rationale               Rationale `json:"rationale"`
	Action                  Action    `json:"action"`
}

// Changed reports whether the recommendation moves the headway
func (r Recommendation) Changed() bool {
	return r.RecommendedFrequencyMin != r.CurrentFrequencyMin
}

// Impact is the network-wide estimated wait-time reduction, in minutes.
// AveragePerChangedLine is nil when no line changed.
type Impact struct {
	TotalWaitReductionMin float64  `json:"total_wait_reduction_min"`
	LinesChanged          int      `json:"lines_changed"`
	AveragePerChangedLine *float64 `json:"average_per_changed_line"`
}

// ValidationSummary counts what the batch validator accepted and rejected
type ValidationSummary struct {
	AcceptedLines   int               `json:"accepted_lines"`
	RejectedLines   int               `json:"rejected_lines"`
	AcceptedRecords int               `json:"accepted_records"`
	RejectedRecords int               `json:"rejected_records"`
	OrphanRecords   int               `json:"orphan_records"`
	RejectionCounts map[string]int    `json:"rejection_counts,omitempty"`
	Errors          []ValidationError `json:"errors,omitempty"`
}

// AnalysisReport is the full output of one analysis run
type AnalysisReport struct {
	LineAggregates   []OccupancyAggregate `json:"line_aggregates"`
	BucketAggregates []OccupancyAggregate `json:"bucket_aggregates"`
	CriticalLines    []CriticalLine       `json:"critical_lines"`
	PeakHours        PeakHours            `json:"peak_hours"`
	Recommendations  []Recommendation     `json:"recommendations"`
	ExcludedLines    []NoDataError        `json:"excluded_lines"`
	Impact           Impact               `json:"impact"`
	Validation       ValidationSummary    `json:"validation"`
	Warnings         []string             `json:"warnings,omitempty"`
	GeneratedAt      time.Time            `json:"generated_at"`
}

// AnalysisResponse wraps a report with metadata
type AnalysisResponse struct {
	Data    AnalysisReport `json:"data"`
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
}

// AnalysisBatch is the typed input of a run
type AnalysisBatch struct {
	Lines   []Line            `json:"lines"`
	Records []RidershipRecord `json:"records"`
}

// AnalysisRun is the summary row stored after a run over repository data
type AnalysisRun struct {
	From                  time.Time
	To                    time.Time
	LinesAnalyzed         int
	RecordsAccepted       int
	RecordsRejected       int
	Recommendations       int
	LinesChanged          int
	CriticalLines         int
	TotalWaitReductionMin float64
	CreatedAt             time.Time
}
