package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"handoc/internal/http/middleware"
	"handoc/internal/service"
)

const apiPrefix = "/api/v1"

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB        Pinger
	Auth      service.AuthService
	Documents service.DocumentService
	Analyses  service.AnalysisService
	Feedback  service.FeedbackService
	Info      ServiceInfo
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// The /api/v1 tree is throttled per client IP when Info.RateLimitPerHour > 0.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/", Root(d.Info))
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group(apiPrefix)
	if d.Info.RateLimitPerHour > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        d.Info.RateLimitPerHour,
			Expiration: time.Hour,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.ErrTooManyRequests
			},
		}))
	}
	api.Get("/info", Info(d.Info))

	requireAuth := middleware.RequireAuth(d.Auth)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", Register(d.Auth))
	authGroup.Post("/login", Login(d.Auth))
	authGroup.Post("/refresh", Refresh(d.Auth))
	authGroup.Post("/password-reset", PasswordReset(d.Auth))
	authGroup.Post("/password-reset/confirm", PasswordResetConfirm(d.Auth))
	authGroup.Post("/logout", requireAuth, Logout())
	authGroup.Get("/me", requireAuth, Me())
	authGroup.Get("/verify-token", requireAuth, VerifyToken())

	docs := api.Group("/documents", requireAuth)
	docs.Post("/upload", UploadDocument(d.Documents))
	docs.Get("/", ListDocuments(d.Documents))
	docs.Get("/stats/overview", DocumentStats(d.Documents))
	docs.Get("/:id", GetDocument(d.Documents))
	docs.Delete("/:id", DeleteDocument(d.Documents))
	docs.Get("/:id/status", DocumentStatus(d.Documents))
	docs.Post("/:id/reprocess", ReprocessDocument(d.Documents))

	analyses := api.Group("/analyses", requireAuth)
	analyses.Get("/", ListAnalyses(d.Analyses))
	analyses.Get("/stats/overview", AnalysisStats(d.Analyses))
	analyses.Post("/analyze-text", AnalyzeText(d.Analyses))
	analyses.Get("/document/:document_id", AnalysisByDocument(d.Analyses))
	analyses.Post("/document/:document_id/reanalyze", Reanalyze(d.Analyses))
	analyses.Get("/:id", GetAnalysis(d.Analyses))
	analyses.Delete("/:id", DeleteAnalysis(d.Analyses))
	analyses.Get("/:id/summary", AnalysisSummary(d.Analyses))
	analyses.Get("/:id/markdown", AnalysisMarkdown(d.Analyses))
	analyses.Get("/:id/export", ExportAnalysis(d.Analyses))

	api.Post("/feedback", middleware.OptionalAuth(d.Auth), SubmitFeedback(d.Feedback))
}
