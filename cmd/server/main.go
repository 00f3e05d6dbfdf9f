package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/config"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/database"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/logging"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/reqctx"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/routes"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/security"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/services"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.AppEnv)

	if missing := cfg.Validate(); missing != "" {
		slog.Error(missing + " environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	store, err := storage.NewS3Store(context.Background(), cfg)
	if err != nil {
		slog.Error("object storage init failed", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Services
	issuer := security.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)

	var google services.IdentityProvider
	if cfg.GoogleClientID != "" {
		googleOAuth := services.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret)
		defer googleOAuth.Close()
		google = googleOAuth
	} else {
		slog.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	authService := services.NewAuthService(database.DB, issuer, google, collector)
	fileService := services.NewFileService(database.DB, store, cfg.S3PresignTTL, collector)
	billService := services.NewBillService(database.DB, fileService, collector)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${respHeader:X-Request-ID}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})
	app.Use(middleware.Timezone(reqctx.LoadTimezone(cfg.DefaultTimezone, time.UTC)))

	routes.Setup(app, issuer, authService, routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Bill:   handlers.NewBillHandler(billService),
		File:   handlers.NewFileHandler(fileService),
		Admin:  handlers.NewAdminHandler(billService),
		Health: handlers.NewHealthHandler(database.Ping),
	}, collector.Handler())

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
