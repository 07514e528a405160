package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/dreamlift/admin-gateway/internal/config"
	"github.com/dreamlift/admin-gateway/internal/db"
	"github.com/dreamlift/admin-gateway/internal/events"
	"github.com/dreamlift/admin-gateway/internal/logger"
	"github.com/dreamlift/admin-gateway/internal/realtime"
	"go.uber.org/zap"
)

// Notify Bridge follows the DreamLift real-time channel with the service
// token and republishes notification counts to Redis for the gateways.

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFilePath,
		Production: cfg.IsProduction(),
	})
	defer log.Sync()

	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required for the notify bridge")
	}
	if cfg.RealtimeToken == "" {
		log.Warn("DREAMLIFT_SERVICE_TOKEN not set, connecting without credentials")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	bridge := realtime.NewBridge(events.NewRedisPublisher(rdb, log), log)
	listener := realtime.NewListener(bridge.Options(cfg.RealtimeURL, func() string {
		return cfg.RealtimeToken
	}), log)

	log.Info("notify-bridge started", zap.String("url", cfg.RealtimeURL))

	if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("listener stopped", zap.Error(err))
	}
	log.Info("shutting down notify-bridge")
}
