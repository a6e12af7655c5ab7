package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const Version = "1.2.0"

var startedAt = time.Now()

// Health is the unauthenticated liveness probe.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "ok",
		"version":        Version,
		"uptime_seconds": int(time.Since(startedAt).Seconds()),
	})
}
