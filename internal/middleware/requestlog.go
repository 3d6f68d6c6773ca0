package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-media-api/internal/logging"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = echo.HeaderXRequestID

// RequestLogger assigns a request id (reusing a client-supplied one), puts
// it on the request context for downstream log lines, and logs one line
// per request once the handler has finished.
func RequestLogger(log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, id)
			ctx := logging.WithRequestID(req.Context(), id)
			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			args := []any{
				"method", req.Method,
				"path", c.Path(),
				"uri", req.RequestURI,
				"status", status,
				"latency_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
			}
			switch {
			case status >= 500:
				log.Error(ctx, "request", args...)
			case status >= 400:
				log.Warn(ctx, "request", args...)
			default:
				log.Info(ctx, "request", args...)
			}
			return nil
		}
	}
}
