package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/app"
	"alfredoptarigan/skill-scout/internal/config"
	"alfredoptarigan/skill-scout/internal/handlers"
	"alfredoptarigan/skill-scout/internal/logger"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("config loaded", zap.String("env", cfg.Server.Env))

	db, err := config.InitDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx := context.Background()
	container, err := app.New(ctx, cfg, db, zl)
	if err != nil {
		zl.Fatal("failed to initialize services", zap.Error(err))
	}
	zl.Info("services initialized")

	routes := handlers.Routes{
		Upload:    handlers.NewUploadHandler(container.Ingestion, cfg.Storage.MaxFileSize, zl),
		Candidate: handlers.NewCandidateHandler(container.Candidates, zl),
		Match:     handlers.NewMatchHandler(container.Matcher, zl),
	}

	server := fiber.New(fiber.Config{
		AppName:      "Skill Scout API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Limits.MatchTimeout + 10*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := server.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"model":  container.Engine.Model(),
			"time":   time.Now(),
		})
	})

	routes.Register(api)

	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Skill Scout API",
			"version":   "1.0.0",
			"endpoints": append([]string{"GET /api/v1/health"}, routes.Endpoints()...),
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("shutting down server")
		if err := server.Shutdown(); err != nil {
			zl.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("server starting", zap.String("addr", addr))

	if err := server.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
