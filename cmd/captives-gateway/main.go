package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/poshuk/captives-gateway/api/swagger"
	"github.com/poshuk/captives-gateway/internal/handler"
	"github.com/poshuk/captives-gateway/internal/middleware"
	"github.com/poshuk/captives-gateway/internal/repository"
	"github.com/poshuk/captives-gateway/internal/service"
	"github.com/poshuk/captives-gateway/internal/upstream"
	"github.com/poshuk/captives-gateway/pkg/cache"
	"github.com/poshuk/captives-gateway/pkg/config"
	"github.com/poshuk/captives-gateway/pkg/export"
	"github.com/poshuk/captives-gateway/pkg/jobs"
	"github.com/poshuk/captives-gateway/pkg/logger"
	corsmiddleware "github.com/poshuk/captives-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/poshuk/captives-gateway/pkg/middleware/requestid"
	"github.com/poshuk/captives-gateway/pkg/storage"
)

// @title Captives Gateway API
// @version 0.1.0
// @description Gateway in front of the captives registry: sections, local filtering, remote search and flyer export
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	registry := upstream.New(cfg.Upstream, logr, metricsSvc)

	workingSets := repository.NewWorkingSetRepository(redisClient, cfg.Search.SessionTTL, logr)

	// A nil client disables the list cache without branching at call sites.
	var cacheClient *redis.Client
	if cfg.Cache.Enabled {
		cacheClient = redisClient
	}
	listCache := repository.NewListCacheRepository(cacheClient, cfg.Cache.ListTTL, logr, metricsSvc)

	captiveSvc := service.NewCaptiveService(registry, workingSets, listCache, logr)
	searchSvc := service.NewSearchService(registry, workingSets, logr)
	sessionSvc := service.NewSessionService(registry, workingSets, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.Session(cfg.Search))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", handler.Metrics(metricsSvc))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	captiveHandler := handler.NewCaptiveHandler(captiveSvc)
	searchHandler := handler.NewSearchHandler(searchSvc)
	authHandler := handler.NewAuthHandler(sessionSvc)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/captives", captiveHandler.List)
		api.GET("/captives/:id", captiveHandler.Get)

		mutations := api.Group("", middleware.RequireAccount(sessionSvc))
		{
			mutations.POST("/captives", captiveHandler.Create)
			mutations.PATCH("/captives/:id", captiveHandler.Update)
			mutations.DELETE("/captives/:id", captiveHandler.Delete)
		}

		api.GET("/search", searchHandler.State)
		api.POST("/search/appearance", searchHandler.ByAppearance)
		api.POST("/search/photo", searchHandler.ByPhoto)
		api.DELETE("/search", searchHandler.Reset)

		api.GET("/auth/me", authHandler.Me)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/register", authHandler.Register)
		api.PATCH("/users/:id", authHandler.UpdateProfile)
		api.DELETE("/users/:id", authHandler.DeleteAccount)

		if cfg.Flyers.Enabled {
			flyerSvc, queue, err := buildFlyers(cfg, redisClient, registry, logr)
			if err != nil {
				logr.Sugar().Fatalw("flyer setup failed", "error", err)
			}
			queue.Start(ctx)
			defer queue.Stop()
			flyerSvc.StartCleanup(ctx)

			flyerHandler := handler.NewFlyerHandler(flyerSvc)
			api.POST("/captives/:id/flyer", middleware.RequireAccount(sessionSvc), flyerHandler.Create)
			api.GET("/flyers/:id", flyerHandler.Status)
			api.GET("/flyers/download/:token", flyerHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)

	server := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		logr.Sugar().Infow("shutting down")
		_ = server.Shutdown(context.Background())
	}()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// buildFlyers wires the flyer vertical: Redis job state, local PDF
// storage, the signed URL scheme and the background render queue.
func buildFlyers(cfg *config.Config, redisClient *redis.Client, registry *upstream.Client, logr *zap.Logger) (*service.FlyerService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Flyers.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Flyers.SignedURLSecret, cfg.Flyers.SignedURLTTL)
	flyerRepo := repository.NewFlyerJobRepository(redisClient)
	worker := service.NewFlyerWorker(flyerRepo, export.NewFlyerRenderer(), files, cfg.Flyers.WorkerRetries, logr)

	queue := jobs.NewQueue("flyers", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Flyers.WorkerConcurrency,
		MaxRetries: cfg.Flyers.WorkerRetries,
		Logger:     logr,
	})

	flyerSvc := service.NewFlyerService(flyerRepo, queue, registry, signer, files, logr, service.FlyerServiceConfig{
		ResultTTL:       cfg.Flyers.SignedURLTTL,
		CleanupInterval: cfg.Flyers.CleanupInterval,
	})
	return flyerSvc, queue, nil
}
