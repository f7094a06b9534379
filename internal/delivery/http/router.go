package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartcity/transit-optimizer/internal/metrics"
	"github.com/smartcity/transit-optimizer/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, analysisSvc *service.AnalysisService, m *metrics.Metrics, windowDays int) {
	handler := NewHandler(analysisSvc, windowDays)

	if m != nil {
		app.Use(MetricsMiddleware(m))
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Analysis of a submitted batch or of stored ridership
		api.Post("/analysis", handler.PostAnalysis)
		api.Get("/analysis", handler.GetAnalysis)

		// Report slices over stored ridership
		api.Get("/recommendations", handler.GetRecommendations)
		api.Get("/critical-lines", handler.GetCriticalLines)
		api.Get("/peak-hours", handler.GetPeakHours)
	}
}
