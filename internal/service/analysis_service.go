package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smartcity/transit-optimizer/internal/analysis"
	"github.com/smartcity/transit-optimizer/internal/domain"
	"github.com/smartcity/transit-optimizer/internal/logging"
	"github.com/smartcity/transit-optimizer/internal/metrics"
	"github.com/smartcity/transit-optimizer/pkg/utils"
)

// AnalysisService runs the optimization engine over submitted or stored ridership
type AnalysisService struct {
	repo     RidershipRepository
	settings analysis.Settings
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewAnalysisService creates a new analysis service.
// metrics and logger may be nil.
func NewAnalysisService(repo RidershipRepository, settings analysis.Settings, m *metrics.Metrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		repo:     repo,
		settings: settings,
		metrics:  m,
		logger:   logger.With(slog.String("component", "analysis_service")),
		now:      time.Now,
	}
}

// Settings returns the engine settings in use
func (s *AnalysisService) Settings() analysis.Settings {
	return s.settings
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *AnalysisService) WaitBackground() {
	s.wgBg.Wait()
}

// Analyze validates a batch and runs diagnostics and the decision pipeline concurrently
func (s *AnalysisService) Analyze(ctx context.Context, lines []domain.Line, records []domain.RidershipRecord) (domain.AnalysisReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.AnalysisReport{}, err
	}

	logger := s.log(ctx)
	start := time.Now()
	generatedAt := s.now().UTC()

	batch, summary, err := analysis.ValidateBatch(lines, records)
	if err != nil {
		s.metrics.ObserveFailure(summary)
		logging.LogError(logger, "analysis rejected", err,
			slog.Int("rejected_lines", summary.RejectedLines),
			slog.Int("rejected_records", summary.RejectedRecords))
		return domain.AnalysisReport{Validation: summary, GeneratedAt: generatedAt}, err
	}
	if summary.RejectedLines > 0 || summary.RejectedRecords > 0 {
		logger.Warn("invalid entities dropped",
			slog.Int("rejected_lines", summary.RejectedLines),
			slog.Int("rejected_records", summary.RejectedRecords),
			slog.Any("reasons", summary.RejectionCounts))
	}

	lineAggs := analysis.AggregateLines(batch.Records, s.settings)

	var (
		diag        analysis.Diagnostics
		dec         analysis.Decision
		decisionErr error
		wg          sync.WaitGroup
	)

	// Diagnostics and decisions only read the shared batch
	wg.Add(1)
	go func() {
		defer wg.Done()
		diag = analysis.Diagnose(batch, lineAggs, s.settings)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		dec, decisionErr = analysis.Decide(batch.Lines, lineAggs, s.settings)
	}()

	wg.Wait()

	if decisionErr != nil {
		s.metrics.ObserveFailure(summary)
		logging.LogError(logger, "analysis failed", decisionErr)
		return domain.AnalysisReport{Validation: summary, GeneratedAt: generatedAt}, decisionErr
	}

	for _, w := range diag.Warnings {
		logger.Warn("analysis warning", slog.String("warning", w))
	}

	report := analysis.Assemble(lineAggs, diag, dec, summary, generatedAt)
	elapsed := time.Since(start)
	s.metrics.ObserveReport(report, elapsed.Seconds())

	logging.LogOperation(logger, "analysis complete",
		slog.Int("lines", len(batch.Lines)),
		slog.Int("records", len(batch.Records)),
		slog.Int("recommendations", len(report.Recommendations)),
		slog.Int("excluded_lines", len(report.ExcludedLines)),
		slog.Int("critical_lines", len(report.CriticalLines)),
		slog.Int("lines_changed", report.Impact.LinesChanged),
		slog.Float64("wait_reduction_min", utils.RoundTo(report.Impact.TotalWaitReductionMin, 2)),
		slog.Duration("duration", elapsed))

	return report, nil
}

// AnalyzeStored analyzes the ridership stored for the last `days` service dates
// and records a run summary in the background.
func (s *AnalysisService) AnalyzeStored(ctx context.Context, days int) (domain.AnalysisReport, error) {
	from, to := s.window(days)
	report, err := s.analyzeWindow(ctx, from, to)
	if err != nil {
		return report, err
	}

	run := domain.AnalysisRun{
		From:                  from,
		To:                    to,
		LinesAnalyzed:         report.Validation.AcceptedLines,
		RecordsAccepted:       report.Validation.AcceptedRecords,
		RecordsRejected:       report.Validation.RejectedRecords,
		Recommendations:       len(report.Recommendations),
		LinesChanged:          report.Impact.LinesChanged,
		CriticalLines:         len(report.CriticalLines),
		TotalWaitReductionMin: report.Impact.TotalWaitReductionMin,
		CreatedAt:             report.GeneratedAt,
	}

	// Persist the run summary asynchronously (tracked for graceful shutdown)
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveAnalysisRun(bgCtx, run); err != nil {
			logging.LogError(s.logger, "failed to save analysis run", err)
		}
	}()

	return report, nil
}

// PreviewStored analyzes stored ridership like AnalyzeStored without recording a run
func (s *AnalysisService) PreviewStored(ctx context.Context, days int) (domain.AnalysisReport, error) {
	from, to := s.window(days)
	return s.analyzeWindow(ctx, from, to)
}

// CriticalLines lists stored-data critical lines for a custom threshold, without recording a run
func (s *AnalysisService) CriticalLines(ctx context.Context, days int, threshold float64) ([]domain.CriticalLine, error) {
	from, to := s.window(days)
	lines, records, err := s.load(ctx, from, to)
	if err != nil {
		return nil, err
	}

	batch, _, err := analysis.ValidateBatch(lines, records)
	if err != nil {
		return nil, err
	}
	return analysis.CriticalLines(analysis.AggregateLines(batch.Records, s.settings), batch.Lines, threshold), nil
}

// window returns the first and last service date of a `days`-long window ending today
func (s *AnalysisService) window(days int) (from, to time.Time) {
	days = max(days, 1)
	to = domain.ServiceDate(s.now().UTC())
	return to.AddDate(0, 0, -(days - 1)), to
}

func (s *AnalysisService) analyzeWindow(ctx context.Context, from, to time.Time) (domain.AnalysisReport, error) {
	lines, records, err := s.load(ctx, from, to)
	if err != nil {
		return domain.AnalysisReport{}, err
	}
	return s.Analyze(ctx, lines, records)
}

func (s *AnalysisService) load(ctx context.Context, from, to time.Time) ([]domain.Line, []domain.RidershipRecord, error) {
	lines, err := s.repo.ListLines(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("analysis_service: failed to load lines: %w", err)
	}
	records, err := s.repo.ListRidership(ctx, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("analysis_service: failed to load ridership: %w", err)
	}
	return lines, records, nil
}

// log prefers the request-scoped logger carried by ctx
func (s *AnalysisService) log(ctx context.Context) *slog.Logger {
	if logger, ok := logging.Lookup(ctx); ok {
		return logger.With(slog.String("component", "analysis_service"))
	}
	return s.logger
}

// Health checks the repository
func (s *AnalysisService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}
