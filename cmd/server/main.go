package main

import (
	"context"
	"errors"
	"lessonbook_app_go/config"
	"lessonbook_app_go/db"
	"lessonbook_app_go/handlers"
	"lessonbook_app_go/logger"
	"lessonbook_app_go/middleware"
	"lessonbook_app_go/services"
	"lessonbook_app_go/services/jobs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLogger.Sync()
	zap.ReplaceGlobals(appLogger)

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		zap.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(db.Models()...); err != nil {
		zap.L().Fatal("failed to run migrations", zap.Error(err))
	}

	services.SetSessionSecret(cfg.SessionSecret)

	// Outbound integrations
	mailer, err := services.NewMailer(cfg)
	if err != nil {
		zap.L().Fatal("failed to configure mailer", zap.Error(err))
	}
	services.SetNotifier(services.NewNotifier(mailer))
	services.SetInvoicer(services.NewInvoicer(cfg))

	// Rate limit counters live in Redis when configured
	var store middleware.RateLimitStore = middleware.NewMemoryRateLimitStore()
	if cfg.RedisURL != "" {
		redisStore, err := middleware.NewRedisRateLimitStore(cfg.RedisURL)
		if err != nil {
			zap.L().Fatal("invalid REDIS_URL", zap.Error(err))
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			zap.L().Warn("redis unreachable, rate limits will fail open until it recovers", zap.Error(err))
		}
		cancel()
		defer redisStore.Close()
		store = redisStore
	}
	limiters := middleware.NewLimiters(store)

	// Background jobs
	scheduler, err := jobs.StartScheduler(db.DB, cfg)
	if err != nil {
		zap.L().Fatal("failed to start scheduler", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.Validator = handlers.NewRequestValidator()

	// Middleware
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(appLogger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("2M"))
	e.Use(middleware.InjectConfig(cfg))

	handlers.RegisterRoutes(e, cfg, limiters)

	go func() {
		zap.L().Info("server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down")
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zap.L().Error("graceful shutdown failed", zap.Error(err))
	}
	services.Notifications.Wait()
}
