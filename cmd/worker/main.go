package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamlift/admin-gateway/internal/config"
	"github.com/dreamlift/admin-gateway/internal/db"
	"github.com/dreamlift/admin-gateway/internal/logger"
	"github.com/dreamlift/admin-gateway/internal/repositories"
	"go.uber.org/zap"
)

// Worker runs housekeeping jobs against the gateway's own database.

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFilePath,
		Production: cfg.IsProduction(),
	})
	defer log.Sync()

	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required for the worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	auditRepo := repositories.NewAuditRepo(pool)

	log.Info("worker started", zap.Duration("audit_retention", cfg.AuditRetention))

	pruneTicker := time.NewTicker(time.Hour)
	defer pruneTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	runAuditPrune(ctx, auditRepo, cfg.AuditRetention, log)

	for {
		select {
		case <-pruneTicker.C:
			runAuditPrune(ctx, auditRepo, cfg.AuditRetention, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runAuditPrune(ctx context.Context, auditRepo *repositories.AuditRepo, retention time.Duration, log *zap.Logger) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := auditRepo.PruneOlderThan(ctx, cutoff)
	if err != nil {
		log.Error("failed to prune audit log", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("pruned audit log", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
	}
}
