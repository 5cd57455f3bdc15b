package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/ayushsubedi/anonymize-it/internal/anonymizer"
	"github.com/ayushsubedi/anonymize-it/internal/api"
	"github.com/ayushsubedi/anonymize-it/internal/config"
	"github.com/ayushsubedi/anonymize-it/internal/constants"
	"github.com/ayushsubedi/anonymize-it/internal/logger"
	"github.com/ayushsubedi/anonymize-it/internal/pipeline"
	"github.com/ayushsubedi/anonymize-it/internal/runledger"
	"github.com/ayushsubedi/anonymize-it/internal/store"
	"github.com/ayushsubedi/anonymize-it/pkg/health"
	"github.com/ayushsubedi/anonymize-it/pkg/metrics"
	"github.com/ayushsubedi/anonymize-it/pkg/middleware"
	"github.com/ayushsubedi/anonymize-it/pkg/ratelimit"
	"github.com/ayushsubedi/anonymize-it/pkg/tracing"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	job            *config.Job
	runID          string
	anon           *anonymizer.Service
	reader         store.Reader
	writer         store.Writer
	runner         *pipeline.Runner
	ledger         *runledger.Service
	redisClient    *redis.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("anonymizer-service")
	}
	return &App{
		config: cfg,
		logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	job, err := config.ParseJob(a.config.Anonymize)
	if err != nil {
		return err
	}
	a.job = job

	a.runID = a.config.Pipeline.RunID
	if a.runID == "" {
		a.runID = uuid.NewString()
	}

	hashKey, err := a.resolveHashKey(ctx)
	if err != nil {
		return err
	}
	a.anon = anonymizer.NewService(job, hashKey, a.config.Pipeline.Separator, a.logger)

	if err := a.initRunLedger(ctx); err != nil {
		return fmt.Errorf("failed to initialize run ledger: %w", err)
	}

	if err := a.initRunner(); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	tp, err := tracing.Init(a.config.Tracing, "anonymizer-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterAnonymizerMetrics()
	metrics.RegisterStoreMetrics()
	metrics.RegisterAPIMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	if a.config.RunLedger.Enabled {
		metrics.RegisterRunLedgerMetrics()
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.config.Server.WriteTimeoutSeconds,
	}

	return nil
}

// resolveHashKey prefers the configured key; without one it derives the key
// from the source cluster license. The key is a secret: it is never logged
// and never written to any output.
func (a *App) resolveHashKey(ctx context.Context) (string, error) {
	if a.config.Pipeline.HashKey != "" {
		return a.config.Pipeline.HashKey, nil
	}

	if a.job.Source.Type != "elasticsearch" {
		return "", fmt.Errorf("pipeline.hash_key is required for source type %s", a.job.Source.Type)
	}

	client := store.NewElasticClient(a.job.Source.Addr, a.config.Pipeline, a.logger)
	resolver := store.NewHashKeyResolver(client, a.config.CloudAPI, a.logger)
	key, err := resolver.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve hash key: %w", err)
	}

	a.logger.InfowCtx(ctx, "Hash key resolved from cluster license")
	return key, nil
}

func (a *App) initRunLedger(ctx context.Context) error {
	if !a.config.RunLedger.Enabled {
		return nil
	}

	a.redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", a.config.Database.Redis.Host, a.config.Database.Redis.Port),
		Password: a.config.Database.Redis.Password,
		DB:       a.config.Database.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}

	var repo runledger.Repository = runledger.NewRepository(a.redisClient)
	if a.config.CircuitBreaker.Enabled {
		repo = runledger.NewCircuitBreakerRepository(repo, a.config.CircuitBreaker)
	}
	a.ledger = runledger.NewService(repo, a.config.RunLedger, a.runID, a.logger)

	return nil
}

func (a *App) initRunner() error {
	reader, err := store.NewReader(a.job.Source, a.config.Pipeline, a.logger)
	if err != nil {
		return err
	}

	writer, err := store.NewWriter(a.job.Dest, a.config.Pipeline, a.config.Kafka, a.logger)
	if err != nil {
		return err
	}

	a.reader = reader
	a.writer = writer
	a.runner = pipeline.NewRunner(reader, writer, a.anon, a.ledger, a.config.Pipeline, a.runID, a.logger)
	return nil
}

// mongoClient returns the connection backing a mongodb source or dest, if any.
func (a *App) mongoClient() *mongo.Client {
	if r, ok := a.reader.(*store.MongoReader); ok {
		return r.Client()
	}
	if w, ok := a.writer.(*store.MongoWriter); ok {
		return w.Client()
	}
	return nil
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("anonymizer-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.config.API.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.config.API.RateLimit.RPS,
			Burst:           a.config.API.RateLimit.Burst,
			CleanupInterval: time.Duration(a.config.API.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.API.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.logger.Infow("Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	registry := health.NewCheckerRegistry()
	if a.job.Source.Type == "elasticsearch" {
		registry.Register(health.NewHTTPChecker("elasticsearch", a.job.Source.Addr))
	}
	if a.redisClient != nil {
		registry.Register(health.NewRedisChecker(a.redisClient))
	}
	if client := a.mongoClient(); client != nil {
		registry.Register(health.NewMongoDBChecker(client))
	}

	handler := api.NewHandler(a.anon, a.runner, a.job, registry, a.logger)
	handler.RegisterRoutes(router)

	a.router = router
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "HTTP server starting", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	// A failed run leaves the service up so operators can read the status
	// and metrics; only a signal stops the process.
	g.Go(func() error {
		if err := a.runner.Run(gCtx); err != nil && gCtx.Err() == nil {
			a.logger.ErrorwCtx(gCtx, "Run failed", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err == context.Canceled || err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down anonymizer service")

	var errs []error

	if a.ledger != nil {
		a.ledger.Stop()
	}

	// The mongo reader stays connected after its run so /health keeps
	// reporting on the source; it is only disconnected here.
	if r, ok := a.reader.(*store.MongoReader); ok {
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mongodb reader close error: %w", err))
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
		defer cancel()
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
