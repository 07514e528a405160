package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamlift/admin-gateway/internal/admincache"
	"github.com/dreamlift/admin-gateway/internal/config"
	"github.com/dreamlift/admin-gateway/internal/db"
	"github.com/dreamlift/admin-gateway/internal/events"
	apphttp "github.com/dreamlift/admin-gateway/internal/http"
	"github.com/dreamlift/admin-gateway/internal/http/dto"
	"github.com/dreamlift/admin-gateway/internal/http/handlers"
	"github.com/dreamlift/admin-gateway/internal/logger"
	"github.com/dreamlift/admin-gateway/internal/middleware"
	"github.com/dreamlift/admin-gateway/internal/repositories"
	"github.com/dreamlift/admin-gateway/internal/services"
	"github.com/dreamlift/admin-gateway/internal/telemetry"
	"github.com/dreamlift/admin-gateway/migrations"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFilePath,
		Production: cfg.IsProduction(),
	})
	defer log.Sync()

	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    cfg.OTelInsecure,
	}, log)
	if err != nil {
		log.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = shutdownTracing(sctx)
	}()

	checks := map[string]handlers.Check{}

	// Database (optional: the audit trail is off without it)
	var (
		pool  *pgxpool.Pool
		audit services.AuditStore
	)
	if cfg.PostgresDSN != "" {
		pool, err = db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
		if err != nil {
			log.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, pool, migrationFS(cfg), log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		audit = repositories.NewAuditRepo(pool)
		checks["postgres"] = pool.Ping
	} else {
		log.Warn("POSTGRES_DSN not set, audit trail disabled")
	}

	// Redis (optional: events stay in-process and rate limiting is off without it)
	var (
		rdb        *redis.Client
		publisher  events.Publisher
		subscriber events.Subscriber
	)
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()

		publisher = events.NewRedisPublisher(rdb, log)
		subscriber = events.NewRedisSubscriber(rdb, log)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn("REDIS_URL not set, using in-process event bus")
		bus := events.NewMemoryBus()
		publisher, subscriber = bus, bus
	}

	// Upstream
	upstream := services.NewDreamLiftClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, nil, log)

	// Services
	registry := services.NewSessionRegistry(upstream, admincache.Options{
		FreshnessWindow: cfg.FreshnessWindow,
	}, cfg.SessionIdleTTL, log)
	if err := registry.Listen(ctx, subscriber); err != nil {
		log.Fatal("failed to subscribe to admin events", zap.Error(err))
	}

	adminService := services.NewAdminService(registry, audit, publisher, log)

	var intents services.PaymentIntents
	if cfg.StripeSecretKey != "" {
		intents = client.New(cfg.StripeSecretKey, nil).PaymentIntents
	}
	campaigns := upstream.WithTokens(services.NewStaticToken(cfg.RealtimeToken))
	donationService := services.NewDonationService(intents, campaigns, publisher, cfg.StripeCurrency, cfg.MinDonationAmount, log)

	// Handlers
	wsHub := handlers.NewWSHub(cfg, subscriber, log)
	if err := wsHub.Start(ctx); err != nil {
		log.Fatal("failed to start ws hub", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName: cfg.ServiceName,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			reqID, _ := c.Locals(middleware.CtxRequestID).(string)
			return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: reqID})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, apphttp.Handlers{
		Auth:     handlers.NewAuthHandler(upstream, log),
		User:     handlers.NewUserHandler(upstream, log),
		Admin:    handlers.NewAdminHandler(adminService, log),
		Donation: handlers.NewDonationHandler(donationService, log),
		Health:   handlers.NewHealthHandler(registry, checks),
		WS:       wsHub,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting admin gateway",
		zap.String("addr", addr),
		zap.String("upstream", cfg.UpstreamBaseURL),
		zap.Duration("freshness_window", cfg.FreshnessWindow),
	)
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

// migrationFS prefers MIGRATIONS_DIR when set so operators can ship
// migrations without rebuilding.
func migrationFS(cfg *config.Config) fs.FS {
	if cfg.MigrationsDir == "" {
		return migrations.FS
	}
	return os.DirFS(cfg.MigrationsDir)
}
