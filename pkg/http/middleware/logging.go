package middleware

import (
	"time"

	"DemandCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging emits one structured log line per request.
func RequestLogging(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()
			log.Info("http request",
				logger.String("method", req.Method),
				logger.String("path", req.URL.Path),
				logger.Int("status", res.Status),
				logger.Duration("latency", time.Since(start)),
				logger.String("remote", c.RealIP()),
			)

			return err
		}
	}
}
