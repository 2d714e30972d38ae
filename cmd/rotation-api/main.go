package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/devmatch/rotation-api/api/swagger"
	"github.com/devmatch/rotation-api/internal/handler"
	"github.com/devmatch/rotation-api/internal/middleware"
	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/repository"
	"github.com/devmatch/rotation-api/internal/service"
	"github.com/devmatch/rotation-api/pkg/cache"
	"github.com/devmatch/rotation-api/pkg/config"
	"github.com/devmatch/rotation-api/pkg/database"
	"github.com/devmatch/rotation-api/pkg/jobs"
	"github.com/devmatch/rotation-api/pkg/logger"
	corsmiddleware "github.com/devmatch/rotation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/devmatch/rotation-api/pkg/middleware/requestid"
)

// @title DevMatch Rotation API
// @version 0.1.0
// @description Candidate batch rotation and assignment lifecycle service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	projectRepo := repository.NewProjectRepository()
	batchRepo := repository.NewBatchRepository()
	candidateRepo := repository.NewCandidateRepository()
	developerRepo := repository.NewDeveloperRepository()
	cursorRepo := repository.NewRotationCursorRepository()
	statsRepo := repository.NewStatsRepository()
	txRunner := repository.NewTxRunner(db)

	validate := validator.New()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, true)
	}

	cursorWrite := service.CursorUpdateHandler(db, cursorRepo)
	cursorQueue := jobs.NewQueue("rotation-cursor", cursorWrite, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 64,
		MaxRetries: cfg.Rotation.CursorRetries,
		RetryDelay: 200 * time.Millisecond,
		Logger:     logr,
		// Queue retries exhausted: one last direct write, then the
		// cursor update is abandoned. Rotation falls back to the
		// recency sort until the next successful write.
		OnDrop: func(job jobs.Job) {
			writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cursorWrite(writeCtx, job); err != nil {
				logr.Sugar().Errorw("cursor update abandoned", "job_id", job.ID, "error", err)
			}
		},
	})
	cursorQueue.Start(ctx)
	defer cursorQueue.Stop()

	rotationSvc := service.NewRotationService(
		db, txRunner,
		projectRepo, batchRepo, candidateRepo, developerRepo, cursorRepo,
		cursorQueue, validate, logr,
		service.RotationConfig{
			DefaultQuotas:       models.Quotas{Fresher: cfg.Rotation.QuotaFresher, Mid: cfg.Rotation.QuotaMid, Expert: cfg.Rotation.QuotaExpert},
			AcceptanceWindow:    cfg.Rotation.AcceptanceWindow,
			PoolFetchMultiplier: cfg.Rotation.PoolFetchMultiplier,
			GenerationAttempts:  cfg.Rotation.GenerationAttempts,
		},
	)
	assignmentSvc := service.NewAssignmentService(db, txRunner, candidateRepo, projectRepo, batchRepo, logr)
	expirySvc := service.NewExpiryService(db, candidateRepo, batchRepo, rotationSvc, logr, service.ExpiryConfig{
		RefreshCap:     cfg.Sweep.RefreshCap,
		RefreshTimeout: cfg.Sweep.RefreshTimeout,
	})
	statsSvc := service.NewStatsService(db, statsRepo, projectRepo, cacheSvc, logr)
	exportSvc := service.NewExportService(db, developerRepo, projectRepo, logr)
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret}, logr)

	// Handlers.
	batchHandler := handler.NewBatchHandler(rotationSvc, statsSvc, metricsSvc)
	candidateHandler := handler.NewCandidateHandler(assignmentSvc, statsSvc, metricsSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	sweepHandler := handler.NewSweepHandler(expirySvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authed := r.Group(cfg.APIPrefix, middleware.JWT(authSvc))
	{
		staff := authed.Group("/", middleware.RequireRoles(models.RoleAdmin, models.RoleClient))
		staff.POST("/projects/:id/batches", batchHandler.Generate)
		staff.POST("/projects/:id/batches/refresh", batchHandler.Refresh)

		developers := authed.Group("/", middleware.RequireRoles(models.RoleDeveloper))
		developers.POST("/candidates/:id/accept", candidateHandler.Accept)
		developers.POST("/candidates/:id/reject", candidateHandler.Reject)

		admins := authed.Group("/", middleware.RequireRoles(models.RoleAdmin))
		admins.GET("/projects/:id/rotation-stats", statsHandler.ProjectStats)
		admins.GET("/projects/:id/assignments/export", exportHandler.AssignmentHistory)
		admins.POST("/internal/sweep", sweepHandler.Run)
	}

	go runSweeper(ctx, expirySvc, metricsSvc, cfg.Sweep.Interval, logr)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Sugar().Warnw("server shutdown", "error", err)
		}
	}()

	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}

// runSweeper drives the periodic expiry sweep until the context is canceled.
func runSweeper(ctx context.Context, expiry *service.ExpiryService, metrics *service.MetricsService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			result, err := expiry.Sweep(ctx)
			if err != nil {
				logr.Sugar().Errorw("expiry sweep failed", "error", err)
				continue
			}
			if metrics != nil {
				metrics.RecordSweep(result.ExpiredCount, result.RefreshedBatchCount, time.Since(start))
			}
			if result.ExpiredCount > 0 || result.RefreshedBatchCount > 0 {
				logr.Sugar().Infow("expiry sweep completed",
					"expired", result.ExpiredCount,
					"refreshed_batches", result.RefreshedBatchCount)
			}
		}
	}
}
