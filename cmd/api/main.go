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

	"pdfqa/internal/config"
	"pdfqa/internal/database"
	"pdfqa/internal/database/migration"
	"pdfqa/internal/extract"
	handlers "pdfqa/internal/http/handler"
	"pdfqa/internal/http/middleware"
	"pdfqa/internal/otel"
	"pdfqa/internal/qa"
	"pdfqa/internal/repository/postgres"
	"pdfqa/internal/service"
	"pdfqa/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present).
	// Validate fails fast when the provider API key is missing, instead of
	// failing on the first question.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize OTLP tracing (no-op when disabled or the exporter is unreachable)
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// File retention backend: local upload directory by default, MinIO when configured
	var files storage.FileStore
	switch cfg.Upload.StorageBackend {
	case "minio":
		files, err = storage.NewMinIO(cfg.MinIO)
	default:
		files, err = storage.NewLocal(cfg.Upload.Dir)
	}
	if err != nil {
		log.Fatalf("failed to initialize file store: %v", err)
	}

	// External collaborators: PDF text extraction and the retrieval/LLM engine
	extractor := extract.NewPDFToText()

	chatModel, err := qa.NewOpenAIChatModel(ctx, cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel)
	if err != nil {
		log.Fatalf("failed to initialize chat model: %v", err)
	}
	embedder := qa.NewOpenAIEmbedder(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	engine := qa.NewRetrievalEngine(embedder, chatModel)

	// Pipelines
	docRepo := postgres.NewDocumentPostgres(db)
	ingestSvc := service.NewIngestService(files, docRepo, extractor,
		cfg.Upload.MaxSizeBytes, time.Duration(cfg.ExtractTimeoutSec)*time.Second)
	answerSvc := service.NewAnswerService(docRepo, engine,
		time.Duration(cfg.AnswerTimeoutSec)*time.Second)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, ingestSvc, answerSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
