package middleware

import (
	"errors"
	"myUserCatalog/pkg/metrics"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records a request counter and latency for each route.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			metrics.HTTPInFlight.Inc()
			defer metrics.HTTPInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				// the error handler has not run yet, so Status is still the default
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}

			// route pattern, not the raw path
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			metrics.ObserveHTTPRequest(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}
