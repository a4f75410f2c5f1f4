package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ProcessTimeHeader reports how long the server spent on a request, in seconds.
const ProcessTimeHeader = "X-Process-Time"

func ProcessTime() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		c.Set(ProcessTimeHeader, strconv.FormatFloat(time.Since(start).Seconds(), 'f', 6, 64))
		return err
	}
}
