package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/slotify/slotify/internal/config"
	"github.com/slotify/slotify/internal/database"
	"github.com/slotify/slotify/internal/handler"
	"github.com/slotify/slotify/internal/logger"
	"github.com/slotify/slotify/internal/middleware"
	"github.com/slotify/slotify/internal/queue"
	"github.com/slotify/slotify/internal/repository"
	"github.com/slotify/slotify/internal/router"
	queue_publisher "github.com/slotify/slotify/internal/service"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	zl, err := logger.New()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db, cfg.DBName); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient() // nil when Redis is absent; middleware degrades

	h := handler.NewSlotHandler(
		repository.NewSlotRepo(db),
		repository.NewExceptionRepo(db),
	)
	h.Cache = middleware.NewInvalidator(config.LoadCacheConfig(), rdb)
	h.Events = queue_publisher.Publisher{}

	go func() {
		if err := queue.StartSlotChangeConsumer(zl); err != nil {
			zl.Warn("slot change consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, h, cfg, zl, rdb)

	addr := ":" + cfg.Port
	zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
