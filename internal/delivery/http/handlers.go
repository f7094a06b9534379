package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/transit-optimizer/internal/domain"
	"github.com/smartcity/transit-optimizer/internal/logging"
	"github.com/smartcity/transit-optimizer/internal/service"
)

const maxWindowDays = 365

// Handler contains all HTTP handlers
type Handler struct {
	analysisSvc *service.AnalysisService
	windowDays  int
}

// NewHandler creates a new handler
func NewHandler(analysisSvc *service.AnalysisService, windowDays int) *Handler {
	if windowDays < 1 || windowDays > maxWindowDays {
		windowDays = 30
	}
	return &Handler{
		analysisSvc: analysisSvc,
		windowDays:  windowDays,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	code := fiber.StatusOK
	if err := h.analysisSvc.Health(c.UserContext()); err != nil {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"service": "transit-optimizer",
		"version": "1.0.0",
	})
}

// PostAnalysis analyzes the lines and records sent in the request body
func (h *Handler) PostAnalysis(c *fiber.Ctx) error {
	var batch domain.AnalysisBatch
	if err := c.BodyParser(&batch); err != nil {
		logging.LogError(logging.FromContext(c.UserContext()), "malformed analysis request", err)
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	report, err := h.analysisSvc.Analyze(c.UserContext(), batch.Lines, batch.Records)
	if err != nil {
		return analysisError(err)
	}

	return c.JSON(domain.AnalysisResponse{
		Data:    report,
		Success: true,
	})
}

// GetAnalysis analyzes stored ridership within a look-back window
func (h *Handler) GetAnalysis(c *fiber.Ctx) error {
	report, err := h.analysisSvc.AnalyzeStored(c.UserContext(), h.days(c))
	if err != nil {
		return analysisError(err)
	}

	return c.JSON(domain.AnalysisResponse{
		Data:    report,
		Success: true,
	})
}

// GetRecommendations returns only the recommendation set of a stored-data analysis
func (h *Handler) GetRecommendations(c *fiber.Ctx) error {
	report, err := h.analysisSvc.PreviewStored(c.UserContext(), h.days(c))
	if err != nil {
		return analysisError(err)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"data":           report.Recommendations,
		"excluded_lines": report.ExcludedLines,
		"impact":         report.Impact,
		"count":          len(report.Recommendations),
	})
}

// GetCriticalLines returns lines at or above the occupancy threshold
func (h *Handler) GetCriticalLines(c *fiber.Ctx) error {
	threshold := h.analysisSvc.Settings().CriticalThreshold
	if raw := c.Query("threshold"); raw != "" {
		t := c.QueryFloat("threshold", -1)
		if t <= 0 || t > 2 {
			return fiber.NewError(fiber.StatusBadRequest, "threshold must be in (0, 2]")
		}
		threshold = t
	}

	critical, err := h.analysisSvc.CriticalLines(c.UserContext(), h.days(c), threshold)
	if err != nil {
		return analysisError(err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"data":      critical,
		"threshold": threshold,
		"count":     len(critical),
	})
}

// GetPeakHours returns the busiest hours of a stored-data analysis
func (h *Handler) GetPeakHours(c *fiber.Ctx) error {
	report, err := h.analysisSvc.PreviewStored(c.UserContext(), h.days(c))
	if err != nil {
		return analysisError(err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"data":     report.PeakHours,
		"warnings": report.Warnings,
	})
}

func (h *Handler) days(c *fiber.Ctx) int {
	days := c.QueryInt("days", h.windowDays)
	if days < 1 || days > maxWindowDays {
		days = h.windowDays
	}
	return days
}

// analysisError maps engine errors to HTTP errors
func analysisError(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyCatalog),
		errors.Is(err, domain.ErrEmptyRidership),
		errors.Is(err, domain.ErrDivisionGuard):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to analyze ridership")
	}
}

// ErrorHandler renders errors as JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
