package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusnotes/internal/config"
	"campusnotes/internal/database"
	"campusnotes/internal/database/migration"
	handlers "campusnotes/internal/http/handler"
	"campusnotes/internal/http/middleware"
	"campusnotes/internal/otel"
	"campusnotes/internal/repository/postgres"
	"campusnotes/internal/service"
	"campusnotes/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Initialize tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("failed to shut down tracing: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Bring the notes schema up to date before serving traffic
	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Select the blob store backend: local disk by default, MinIO when configured
	var store storage.BlobStore
	switch cfg.Storage.Driver {
	case "s3":
		store, err = storage.NewMinIO(cfg.MinIO, cfg.Storage)
	default:
		store, err = storage.NewLocal(cfg.Storage)
	}
	if err != nil {
		log.Fatalf("failed to initialize note storage: %v", err)
	}

	// Initialize repositories and services
	noteRepo := postgres.NewNotePostgres(db)
	noteSvc := service.NewNoteService(store, noteRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Trace inbound requests
	app.Use(otelfiber.Middleware())

	// Request metrics, exposed on /metrics
	registry := prometheus.NewRegistry()
	promMW, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// With the local driver, note files are served straight from disk
	if cfg.Storage.Driver != "s3" {
		app.Static("/uploads", cfg.Storage.UploadsDir())
	}

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, store, noteSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
