package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-media-api/internal/logging"
	"github.com/iliyamo/social-media-api/internal/metrics"
	"github.com/iliyamo/social-media-api/internal/queue"
	"github.com/iliyamo/social-media-api/internal/service"
)

// EventPublisher is satisfied by *queue.Publisher. A nil publisher disables
// events.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// errInvalidID is returned by parseID for non-numeric path parameters.
var errInvalidID = errors.New("invalid id")

// parseID reads a numeric path parameter.
func parseID(c echo.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Param(name))
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return n, nil
}

// statusFor maps a service error to an HTTP status and a metrics outcome.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "error"
}

// fail writes err as a JSON error body. Internal failures are logged and
// reported with a generic message.
func fail(c echo.Context, log logging.Logger, op string, err error) error {
	status, outcome := statusFor(err)
	metrics.ObservePolicy(op, outcome)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error(c.Request().Context(), "request failed", "op", op, "err", err)
		msg = "internal error"
	}
	return c.JSON(status, echo.Map{"error": msg})
}

// ok records a successful policy decision.
func ok(op string) { metrics.ObservePolicy(op, "ok") }

// publish sends ev when events are enabled. Failures never reach the client.
func publish(c echo.Context, pub EventPublisher, log logging.Logger, ev queue.Event) {
	if pub == nil {
		return
	}
	ctx := context.WithoutCancel(c.Request().Context())
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn(ctx, "event publish failed", "event", ev.Type, "err", err)
	}
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}
