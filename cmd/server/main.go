package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zfogg/cadence/internal/auth"
	"github.com/zfogg/cadence/internal/cache"
	"github.com/zfogg/cadence/internal/cleanup"
	"github.com/zfogg/cadence/internal/config"
	"github.com/zfogg/cadence/internal/database"
	"github.com/zfogg/cadence/internal/discovery"
	"github.com/zfogg/cadence/internal/handlers"
	"github.com/zfogg/cadence/internal/logger"
	"github.com/zfogg/cadence/internal/middleware"
	"github.com/zfogg/cadence/internal/ranking"
	"github.com/zfogg/cadence/internal/repository"
	"github.com/zfogg/cadence/internal/storage"
	"github.com/zfogg/cadence/internal/telemetry"
	"github.com/zfogg/cadence/internal/validation"
	"go.uber.org/zap"
)

const serviceName = "cadence-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(logger.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Cadence server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	ctx := context.Background()

	tp, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.Telemetry.Endpoint,
		Enabled:      cfg.Telemetry.Enabled,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Log.Warn("Tracing disabled", zap.Error(err))
	}

	if err := database.Initialize(cfg.Database, cfg.IsDevelopment()); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	// Rate limit counters live in Redis when it is configured so every
	// instance shares one window per client
	var counter middleware.WindowCounter = middleware.NewMemoryCounter()
	var redisClient *cache.RedisClient
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password)
		if err != nil {
			logger.Log.Warn("Redis unavailable, using in-process rate limiting", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			counter = redisClient
		}
	}

	s3Store, err := storage.NewS3Store(ctx, cfg.Storage.Region, cfg.Storage.Bucket)
	if err != nil {
		logger.FatalWithFields("Failed to initialize S3 store", err)
	}
	audio := storage.NewBreakerStore(s3Store, storage.DefaultBreakerConfig())

	// Services listed in CADENCE_REQUIRE_* must be reachable; the rest only warn
	validator := validation.NewServiceValidator(validation.RequiredFromEnv(), map[string]validation.Check{
		"database": func(context.Context) error { return database.Health() },
		"s3":       audio.CheckBucketAccess,
		"redis": func(ctx context.Context) error {
			if redisClient == nil {
				return errors.New("redis is not configured or unreachable")
			}
			return redisClient.Ping(ctx)
		},
	})
	if err := validator.ValidateServices(ctx); err != nil {
		logger.FatalWithFields("Required service unavailable", err)
	}
	if err := audio.CheckBucketAccess(ctx); err != nil {
		logger.Log.Warn("S3 bucket access failed, audio streaming and uploads will fail",
			zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
	}

	janitor := cleanup.NewService(database.DB, audio, cfg.Cleanup.Interval, cfg.Cleanup.Grace)
	janitor.Start()
	defer janitor.Stop()

	tieBreak, err := ranking.ParseTieBreak(cfg.Ranking.TieBreak)
	if err != nil {
		logger.FatalWithFields("Invalid RANKING_TIE_BREAK", err)
	}
	engine := ranking.NewEngine(ranking.Config{
		Workers:           cfg.Ranking.Workers,
		ParallelThreshold: cfg.Ranking.ParallelThreshold,
		TieBreak:          tieBreak,
	})

	songs := repository.NewSongRepository(database.DB)
	history := repository.NewHistoryRepository(database.DB)
	authService := auth.NewService([]byte(cfg.JWTSecret), repository.NewUserRepository(database.DB))

	h := handlers.NewHandlers(handlers.Deps{
		Ranker:    discovery.NewService(songs, history, engine),
		Auth:      authService,
		Songs:     songs,
		History:   history,
		Playlists: repository.NewPlaylistRepository(database.DB),
		Audio:     audio,
	})

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingMiddleware(serviceName)...)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "Retry-After"}
	r.Use(cors.New(corsConfig))

	// audio is already compressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`^/api/v1/songs/[^/]+$`})))

	r.GET("/health", func(c *gin.Context) {
		if err := database.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
			"storage":   audio.State(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	h.RegisterRoutes(api,
		auth.RequireAuth(authService),
		middleware.RateLimit(counter, middleware.RateLimitConfig{
			Limit:  cfg.RateLimit.Requests,
			Window: cfg.RateLimit.Window,
		}),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Cadence API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := telemetry.Shutdown(tp, 5*time.Second); err != nil {
		logger.Log.Warn("Tracer shutdown failed", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
