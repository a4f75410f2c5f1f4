package middleware

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"handoc/internal/logger"
)

// Logger writes one JSON access-log line per request to stdout in UTC.
func Logger() fiber.Handler {
	return LoggerWithWriter(os.Stdout, time.UTC)
}

// LoggerWithWriter is Logger with an explicit destination and timezone for "ts".
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return AccessLog(logger.New(w, loc, "http"))
}

// AccessLog logs each HTTP request through l.
// Fields: request_id, method, path, status, latency (milliseconds) and user_id
// when the request was authenticated.
func AccessLog(l *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		entry := map[string]any{
			"request_id": RequestIDFrom(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		}
		if u := CurrentUser(c); u != nil {
			entry["user_id"] = u.ID
		}
		if status >= fiber.StatusInternalServerError {
			entry["level"] = "error"
		}
		l.Log(entry)

		return err
	}
}
