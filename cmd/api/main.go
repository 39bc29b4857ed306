package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/api/handlers"
	"github.com/patternlog/backend/internal/app"
	"github.com/patternlog/backend/internal/metrics"
	"github.com/patternlog/backend/internal/middleware/ratelimit"
	"github.com/patternlog/backend/internal/middleware/security"
	"github.com/patternlog/backend/internal/middleware/validation"
	"github.com/patternlog/backend/internal/scheduler"
	"github.com/patternlog/backend/pkg/config"
	appLogger "github.com/patternlog/backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting PatternLog API server")
	metrics.Init()

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer a.Close()

	if n, err := a.Store.CountInteractions(context.Background()); err == nil {
		metrics.InteractionsStored.Set(float64(n))
		appLogger.Info("Interaction log opened", zap.String("path", cfg.SQLite.Path), zap.Int("interactions", n))
	}

	sched := scheduler.New(a.Analyzer, cfg.Analysis.Schedule)
	if err := sched.Start(); err != nil {
		appLogger.Fatal("Invalid analysis schedule", zap.String("schedule", cfg.Analysis.Schedule), zap.Error(err))
	}
	defer sched.Stop()

	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Logger:            appLogger.GetLogger(),
	})
	defer limiter.Stop()

	validationCfg := validation.Config{Logger: appLogger.GetLogger()}

	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	fiberApp.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	fiberApp.Get("/metrics", metrics.MetricsHandler())

	interactionHandler := handlers.NewInteractionHandler(a.Interactions)
	queryHandler := handlers.NewQueryHandler(a.Engine)
	patternHandler := handlers.NewPatternHandler(a.Analyzer)
	wsHandler := handlers.NewWebSocketHandler(a.Engine, a.Interactions, a.Analyzer, cfg.Session.HistoryLimit)

	api := fiberApp.Group("/api/v1", limiter.Middleware(), validation.ContentType(validationCfg))

	api.Post("/interactions", validation.Fields(validationCfg, "question", "answer"), interactionHandler.Append)
	api.Get("/interactions", interactionHandler.List)
	api.Post("/ask", validation.Fields(validationCfg, "question"), queryHandler.HandleAsk)
	api.Get("/patterns", patternHandler.Discover)

	if a.Cache != nil {
		api.Delete("/answers/cache", func(c *fiber.Ctx) error {
			if err := a.Cache.InvalidateAnswers(c.UserContext()); err != nil {
				appLogger.Error("Failed to invalidate answer cache", zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to invalidate answer cache",
				})
			}
			return c.SendStatus(fiber.StatusNoContent)
		})
	}

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		if err := a.Store.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	fiberApp.Use("/ws", wsHandler.Upgrade)
	fiberApp.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := fiberApp.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Warn("Server shutdown incomplete", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
