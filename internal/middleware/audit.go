package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit emits one structured log line per request. keyHeader names the header
// carrying the account's external key; it is logged when present.
func Audit(logger *slog.Logger, keyHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if requestID, _ := c.Locals(RequestIDLocal).(string); requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}
		if key := c.Get(keyHeader); keyHeader != "" && key != "" {
			attrs = append(attrs, slog.String("account_key", key))
		}

		switch {
		case err != nil && status >= fiber.StatusInternalServerError:
			attrs = append(attrs, slog.Any("error", err))
			logger.Error("request failed", attrs...)
		case err != nil:
			attrs = append(attrs, slog.Any("error", err))
			logger.Warn("request rejected", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}
		return err
	}
}
