package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/learnverse/auth-api/api/swagger"
	"github.com/learnverse/auth-api/internal/handler"
	"github.com/learnverse/auth-api/internal/middleware"
	"github.com/learnverse/auth-api/internal/models"
	"github.com/learnverse/auth-api/internal/repository"
	"github.com/learnverse/auth-api/internal/service"
	"github.com/learnverse/auth-api/pkg/cache"
	"github.com/learnverse/auth-api/pkg/config"
	"github.com/learnverse/auth-api/pkg/database"
	"github.com/learnverse/auth-api/pkg/jobs"
	"github.com/learnverse/auth-api/pkg/logger"
	corsmiddleware "github.com/learnverse/auth-api/pkg/middleware/cors"
	reqidmiddleware "github.com/learnverse/auth-api/pkg/middleware/requestid"

	"github.com/redis/go-redis/v9"
)

// @title LearnVerse Auth API
// @version 1.0.0
// @description Token-based authentication and session lifecycle service
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis only accelerates revocation lookups; the service runs without it.
	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, revocation checks fall back to postgres", "error", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	blacklistRepo := repository.NewTokenBlacklistRepository(db)
	revocationCache := repository.NewRevocationCache(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	blacklistSvc := service.NewTokenBlacklistService(blacklistRepo, revocationCache, metricsSvc, logr)
	authSvc := service.NewAuthService(userRepo, refreshRepo, blacklistSvc, validator.New(), metricsSvc, logr, service.AuthConfig{
		Secret:        cfg.JWT.Secret,
		Issuer:        cfg.JWT.Issuer,
		AccessExpiry:  cfg.JWT.AccessExpiry,
		RefreshExpiry: cfg.JWT.RefreshExpiry,
	})
	userSvc := service.NewUserService(userRepo, logr)
	cleanupSvc := service.NewTokenCleanupService(refreshRepo, blacklistSvc, metricsSvc, logr)

	if err := userSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logr.Sugar().Warnw("failed to seed bootstrap admin", "error", err)
	}

	if cfg.Cleanup.Enabled {
		queue := jobs.NewQueue("token-cleanup", func(ctx context.Context, _ jobs.Job) error {
			return cleanupSvc.CleanupExpiredTokens(ctx)
		}, jobs.QueueConfig{
			Workers:    1,
			MaxRetries: cfg.Cleanup.MaxRetries,
			RetryDelay: cfg.Cleanup.RetryDelay,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		go queue.RunPeriodic(ctx, "cleanup_expired_tokens", cfg.Cleanup.Interval)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.Authenticate(authSvc))

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh-token", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/logout-all", middleware.RequireAuth(), authHandler.LogoutAll)
		auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
	}
	api.POST("/users/:id/upgrade-tutor", middleware.RequireRoles(models.RoleAdmin), userHandler.UpgradeTutor)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
