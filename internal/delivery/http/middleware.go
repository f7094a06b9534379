package http

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/transit-optimizer/internal/logging"
	"github.com/smartcity/transit-optimizer/internal/metrics"
)

// MetricsMiddleware records request counts and latencies per route
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		// Route pattern, not raw path, to keep label cardinality bounded
		path := c.Route().Path
		method := c.Method()
		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// RequestLogger attaches a request-scoped logger to the user context
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqLogger := logger.With(
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()))
		c.SetUserContext(logging.WithLogger(c.UserContext(), reqLogger))
		return c.Next()
	}
}
