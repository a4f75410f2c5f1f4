package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"handoc/docs"
	"handoc/internal/analyzer"
	"handoc/internal/auth"
	"handoc/internal/config"
	"handoc/internal/database"
	"handoc/internal/database/migration"
	handlers "handoc/internal/http/handler"
	"handoc/internal/http/middleware"
	"handoc/internal/logger"
	"handoc/internal/otel"
	"handoc/internal/processing"
	"handoc/internal/report"
	"handoc/internal/repository"
	"handoc/internal/repository/postgres"
	"handoc/internal/service"
	"handoc/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// @title HanDoc AI API
// @version 1.0.0
// @description Korean PDF summary, Q&A, keyword and important-sentence analysis.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		logger.Default("api").Error("startup_failed", err, nil)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	log := logger.New(os.Stdout, cfg.Location(), "api")
	log.SetDebug(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log.With("otel"), "handoc-api")
	if err != nil {
		return err
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log.With("migration"), cfg.Database.Host); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	repos := repository.Repositories{
		Users:     postgres.NewUserPostgres(db),
		Documents: postgres.NewDocumentPostgres(db),
		Analyses:  postgres.NewAnalysisPostgres(db),
		Feedback:  postgres.NewFeedbackPostgres(db),
	}

	ai, err := newAnalyzer(ctx, cfg.AI, log.With("analyzer"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	processor := processing.NewProcessor(repos, objStore, ai, log.With("processor"), cfg.Upload.MaxFileSize)
	pool, err := processing.NewPool(processor, cfg.Worker.Count, cfg.Worker.QueueSize, log, reg)
	if err != nil {
		return err
	}
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	pool.Start(workerCtx)

	tokens := auth.NewTokenManager(cfg.Auth.SecretKey,
		time.Duration(cfg.Auth.AccessTokenExpireMin)*time.Minute,
		time.Duration(cfg.Auth.RefreshTokenExpireDays)*24*time.Hour,
		time.Duration(cfg.Auth.ResetTokenExpireMin)*time.Minute,
	)
	policy := service.UploadPolicy{
		MaxFileSize:      cfg.Upload.MaxFileSize,
		AllowedTypes:     cfg.Upload.AllowedTypes,
		FreeMonthlyLimit: cfg.Upload.FreeMonthlyLimit,
	}
	authSvc := service.NewAuthService(repos.Users, tokens, log.With("auth"))
	docSvc := service.NewDocumentService(objStore, repos, pool, policy, log.With("documents"))
	analysisSvc := service.NewAnalysisService(repos, objStore, ai, processor)
	feedbackSvc := service.NewFeedbackService(repos)

	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handlers.ErrorHandler(),
		// multipart overhead on top of the largest accepted PDF
		BodyLimit: int(cfg.Upload.MaxFileSize) + 1<<20,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.ProcessTime())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.AccessLog(log.With("http")))
	app.Use(promMW.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.CORSOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		ExposeHeaders:    middleware.RequestIDHeader + ", " + middleware.ProcessTimeHeader,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:        db,
		Auth:      authSvc,
		Documents: docSvc,
		Analyses:  analysisSvc,
		Feedback:  feedbackSvc,
		Info: handlers.ServiceInfo{
			Name:             cfg.AppName,
			Description:      "한국어 PDF 문서 AI 분석 서비스",
			Version:          cfg.Version,
			MaxFileSize:      cfg.Upload.MaxFileSize,
			AllowedTypes:     cfg.Upload.AllowedTypes,
			FreeMonthlyLimit: cfg.Upload.FreeMonthlyLimit,
			RateLimitPerHour: cfg.RateLimitPerHour,
			ExportFormats:    []string{string(report.FormatMarkdown), string(report.FormatHTML), string(report.FormatText), string(report.FormatJSON)},
			Languages:        []string{"ko", "en"},
		},
	})

	// Swagger UI with dynamic host and scheme
	docs.SwaggerInfo.Version = cfg.Version
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	listenErr := make(chan error, 1)
	go func() {
		log.Info("server_started", map[string]any{"addr": addr, "workers": cfg.Worker.Count, "ai_provider": cfg.AI.Provider})
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			log.Error("server_failed", err, nil)
		}
	case <-ctx.Done():
		log.Info("shutdown_started", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server_shutdown_failed", err, nil)
	}
	cancelWorkers()
	pool.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing_shutdown_failed", err, nil)
	}
	log.Info("shutdown_completed", nil)
	return nil
}

// newAnalyzer builds the analyzer for AI_PROVIDER. Provider HTTP calls are traced.
func newAnalyzer(ctx context.Context, cfg config.AIConfig, log *logger.Logger) (*analyzer.Analyzer, error) {
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   2 * time.Minute,
	}

	acfg := analyzer.Config{
		DefaultModel:      cfg.DefaultModel,
		PremiumModel:      cfg.PremiumModel,
		MaxTokens:         cfg.MaxTokens,
		Temperature:       cfg.Temperature,
		ChunkTokens:       cfg.ChunkTokens,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}

	var provider analyzer.Provider
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		p, err := analyzer.NewOpenAI(cfg.OpenAIAPIKey, cfg.DefaultModel, cfg.OpenAIBaseURL, httpClient)
		if err != nil {
			return nil, err
		}
		provider = p
	case "gemini":
		p, err := analyzer.NewGemini(ctx, cfg.GeminiAPIKey, httpClient)
		if err != nil {
			return nil, err
		}
		provider = p
		acfg.DefaultModel = cfg.GeminiModel
		acfg.PremiumModel = cfg.GeminiModel
	default:
		return nil, errors.New("unsupported AI_PROVIDER: " + cfg.Provider)
	}

	return analyzer.New(provider, acfg,
		analyzer.WithPrompts(analyzer.DefaultPrompts().With(cfg.Prompts)),
		analyzer.WithTokenCounter(analyzer.NewTokenCounter(acfg.DefaultModel)),
		analyzer.WithLogger(log),
		analyzer.WithLocalFallback(),
	), nil
}
