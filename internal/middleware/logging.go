// Package middleware holds the fiber middleware shared by every route.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"inkpost/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// CorrelationHeader carries the correlation id across service boundaries.
const CorrelationHeader = "X-Correlation-ID"

// ContextMiddleware copies the request id, trace id and correlation id from
// fiber locals and headers into the request context, so loggers in the
// service and repository layers pick them up.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = context.WithValue(ctx, observability.RequestID, rid)
		}
		if tid, ok := c.Locals("traceID").(string); ok && tid != "" {
			ctx = context.WithValue(ctx, observability.TraceID, tid)
		}

		if cid := c.Get(CorrelationHeader); cid != "" {
			ctx = observability.WithCorrelationID(ctx, cid)
		}
		ctx = observability.EnsureCorrelationID(ctx)
		if cid := observability.ExtractCorrelationID(ctx); cid != "" {
			c.Set(CorrelationHeader, cid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware for logging requests using slog.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("correlation_id", observability.ExtractCorrelationID(c.UserContext())),
		}

		logger := observability.GlobalLogger
		switch {
		case err != nil:
			fields = append(fields, slog.String("error", err.Error()))
			logger.ErrorContext(c.UserContext(), "request failed", fields...)
		case status >= fiber.StatusInternalServerError:
			logger.ErrorContext(c.UserContext(), "request failed", fields...)
		case status >= fiber.StatusBadRequest:
			logger.WarnContext(c.UserContext(), "request rejected", fields...)
		default:
			logger.InfoContext(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}
