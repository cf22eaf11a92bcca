package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/forecourt/backoffice/pkg/config"
)

// RateLimit throttles clients by IP. Readings are entered by a handful of
// staff, so the limit mostly guards against runaway scripts.
func RateLimit(cfg config.RateLimitingConfig) fiber.Handler {
	max := cfg.MaxRequests
	if max <= 0 {
		max = 100
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		},
	})
}
