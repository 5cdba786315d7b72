package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"genuverity-backend/cache"
	"genuverity-backend/config"
	"genuverity-backend/fixtures"
	"genuverity-backend/handlers"
	"genuverity-backend/logger"
	"genuverity-backend/middleware"
	"genuverity-backend/models"
	"genuverity-backend/repository"
	"genuverity-backend/service"
	"genuverity-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer func() { _ = zl.Sync() }()

	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Result store, API keys and upload records
	var (
		resultStore service.ResultStore
		keyAuth     middleware.KeyAuthenticator
		recorder    handlers.UploadRecorder
	)
	switch cfg.Store.Type {
	case "postgres":
		db, err := initPostgres(ctx, cfg.Store.DatabaseURL, zl)
		if err != nil {
			zl.Fatal("failed to initialize Postgres", zap.Error(err))
		}
		defer db.Close()

		resultStore = repository.NewFactCheckRepository(db)
		keyAuth = service.NewAPIKeyService(repository.NewAPIKeyRepository(db))
		recorder = repository.NewUploadRepository(db)
	default:
		resultStore = repository.NewMemoryRepository()
		zl.Info("using in-memory result store; API keys and upload records are disabled")
	}

	hotCache, err := cache.New(cfg.Cache.Type, cfg.Cache.RedisURL)
	if err != nil {
		zl.Fatal("failed to initialize cache", zap.Error(err))
	}
	if closer, ok := hotCache.(io.Closer); ok {
		defer closer.Close()
	}
	zl.Info("hot cache initialized", zap.String("cache", hotCache.Name()))

	fileStorage, err := storage.NewStorage(storage.StorageConfig{
		Type:         storage.StorageType(cfg.Storage.Type),
		LocalPath:    cfg.Storage.LocalPath,
		S3Bucket:     cfg.Storage.S3Bucket,
		S3Region:     cfg.Storage.S3Region,
		AWSAccessKey: cfg.Storage.AWSAccessKey,
		AWSSecretKey: cfg.Storage.AWSSecretKey,
	})
	if err != nil {
		// Uploads and snapshots are optional; analysis still works without them
		zl.Warn("storage unavailable, uploads and snapshots disabled", zap.Error(err))
		fileStorage = nil
	} else {
		zl.Info("storage initialized", zap.String("backend", fileStorage.Name()))
	}

	model, embedder, analyzer, closeGemini, err := initGemini(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize Gemini", zap.Error(err))
	}
	defer closeGemini()

	opts := []service.FactCheckServiceOption{
		service.WithResultStore(resultStore),
		service.WithHotCache(hotCache),
		service.WithAnalyzer(analyzer),
		service.WithEmbedder(embedder),
		service.WithSimilarityThreshold(cfg.Lookup.SimilarityThreshold),
		service.WithClaimLengthBounds(cfg.Lookup.ClaimMinLength, cfg.Lookup.ClaimMaxLength),
		service.WithAnalysisTimeout(cfg.Gemini.Timeout),
		service.WithLogger(zl),
	}
	if fileStorage != nil && cfg.Storage.SnapshotsEnabled {
		opts = append(opts, service.WithSnapshotArchive(fileStorage))
	}
	lookup := service.NewFactCheckService(opts...)

	if cfg.Lookup.SeedFixtures {
		if err := lookup.Seed(ctx, fixtures.All()...); err != nil {
			zl.Fatal("failed to seed demo results", zap.Error(err))
		}
		zl.Info("demo results seeded", zap.Int("count", len(fixtures.All())))
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(map[models.Tier]int{
			models.TierAnonymous:     cfg.RateLimit.Anonymous,
			models.TierAuthenticated: cfg.RateLimit.Authenticated,
			models.TierEnterprise:    cfg.RateLimit.Enterprise,
		}, zl)
		go limiter.Run(ctx)
	}

	uploads := handlers.NewUploadHandler(fileStorage, recorder, cfg.Server.MaxUploadBytes)

	factCheckHandler := handlers.NewFactCheckHandler(lookup, model,
		handlers.WithUploads(uploads.WithLogger(zl)),
		handlers.WithDemoFallback(cfg.Lookup.FallbackToDemoOnMiss),
		handlers.WithHandlerLogger(zl),
	)
	systemHandler := handlers.NewSystemHandler(lookup, model, zl)

	r := handlers.NewRouter(handlers.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		KeyAuth:            keyAuth,
		RateLimiter:        limiter,
		Logger:             zl,
	}, factCheckHandler, systemHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("analysis_mode", string(lookup.AnalysisMode())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

func initPostgres(ctx context.Context, connString string, zl *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		zl.Warn("failed to create pgvector extension, it may already be installed or need superuser privileges", zap.Error(err))
	}

	zl.Info("Postgres connection established with pgvector support")
	return pool, nil
}

// initGemini picks the live model stack when an API key is configured and
// the demo fixture stack otherwise.
func initGemini(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*service.GeminiClient, service.Embedder, service.Analyzer, func(), error) {
	if !cfg.Gemini.Live() {
		model := service.NewGeminiClient(
			service.WithModelEnabled(false),
			service.WithModelTimeout(cfg.Gemini.Timeout),
			service.WithClientLogger(zl),
		)
		embedder := service.NewHashEmbedder()
		analyzer, err := service.NewFixtureAnalyzer(ctx, embedder, cfg.Lookup.SimilarityThreshold, fixtures.All()...)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		zl.Info("Gemini disabled, serving demo analyses")
		return model, embedder, analyzer, func() {}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, nil, nil, nil, err
	}

	model := service.NewGeminiClient(
		service.WithGenAIClient(client, cfg.Gemini.Model, cfg.Gemini.VisionModel),
		service.WithModelEnabled(true),
		service.WithModelTimeout(cfg.Gemini.Timeout),
		service.WithClientLogger(zl),
	)
	embedder := service.NewGeminiEmbedder(client, cfg.Gemini.EmbeddingModel)

	zl.Info("Gemini client initialized",
		zap.String("model", cfg.Gemini.Model),
		zap.String("vision_model", cfg.Gemini.VisionModel),
	)
	return model, embedder, service.NewModelAnalyzer(model), func() { _ = client.Close() }, nil
}
