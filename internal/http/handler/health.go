package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ServiceInfo describes the running service for the banner and /api/v1/info.
type ServiceInfo struct {
	Name             string
	Description      string
	Version          string
	MaxFileSize      int64
	AllowedTypes     []string
	FreeMonthlyLimit int
	RateLimitPerHour int
	ExportFormats    []string
	Languages        []string
}

// HealthCheck pings the database and reports 503 when it is unreachable.
//
// @Summary Health check
// @Tags service
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Root is the service banner.
//
// @Summary Service banner
// @Tags service
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func Root(info ServiceInfo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":     info.Name + " API",
			"description": info.Description,
			"version":     info.Version,
			"docs_url":    "/swagger/index.html",
			"api_v1":      apiPrefix,
		})
	}
}

// Info lists features and limits.
//
// @Summary API features and limits
// @Tags service
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/info [get]
func Info(info ServiceInfo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":        info.Name,
			"description": info.Description,
			"version":     info.Version,
			"features": fiber.Map{
				"pdf_processing":       true,
				"ai_analysis":          true,
				"text_cleaning":        true,
				"export_formats":       info.ExportFormats,
				"supported_languages":  info.Languages,
				"max_file_size_mb":     info.MaxFileSize / (1024 * 1024),
				"supported_file_types": info.AllowedTypes,
			},
			"limits": fiber.Map{
				"free_monthly_uploads":    info.FreeMonthlyLimit,
				"premium_monthly_uploads": "unlimited",
				"max_file_size":           info.MaxFileSize,
				"rate_limit_per_hour":     info.RateLimitPerHour,
			},
		})
	}
}
