package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Environment string

	// Storage
	PostgresDSN    string // empty disables the audit trail
	RedisURL       string // empty keeps events in-process
	MigrationsDir  string // overrides the embedded migrations
	AuditRetention time.Duration

	// Upstream DreamLift API
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	RealtimeURL     string
	RealtimeToken   string // service token used by the notify bridge

	// Admin cache
	FreshnessWindow time.Duration
	SessionIdleTTL  time.Duration

	// Payments
	StripeSecretKey   string
	StripeCurrency    string
	MinDonationAmount int64 // minor units

	// Auth
	JWTSecret string

	// Server
	APIPort            string
	CORSAllowedOrigins string
	RateLimitPerMinute int

	// Observability
	LogLevel     string
	LogFilePath  string
	OTelEndpoint string
	OTelInsecure bool
	ServiceName  string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),

		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", ""),
		AuditRetention: getEnvDuration("AUDIT_RETENTION", 90*24*time.Hour),

		UpstreamBaseURL: strings.TrimRight(getEnv("DREAMLIFT_API_URL", "http://localhost:5000"), "/"),
		UpstreamTimeout: getEnvDuration("DREAMLIFT_API_TIMEOUT", 15*time.Second),
		RealtimeURL:     getEnv("DREAMLIFT_WS_URL", "ws://localhost:5000/ws"),
		RealtimeToken:   getEnv("DREAMLIFT_SERVICE_TOKEN", ""),

		FreshnessWindow: getEnvDuration("ADMIN_CACHE_FRESHNESS", 5*time.Minute),
		SessionIdleTTL:  getEnvDuration("ADMIN_SESSION_IDLE_TTL", time.Hour),

		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		StripeCurrency:    strings.ToLower(getEnv("STRIPE_CURRENCY", "usd")),
		MinDonationAmount: int64(getEnvInt("MIN_DONATION_AMOUNT", 100)),

		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),

		APIPort:            getEnv("API_PORT", "3000"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFilePath:  getEnv("LOG_FILE", ""),
		OTelEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),
		OTelInsecure: getEnvBool("OTEL_EXPORTER_INSECURE", true),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "dreamlift-admin-gateway"),
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Validate(log *zap.Logger) {
	if c.JWTSecret == defaultJWTSecret {
		log.Warn("JWT_SECRET is default, change in production")
	}
	if c.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set, donation intents are disabled")
	}
	if c.PostgresDSN == "" {
		log.Warn("POSTGRES_DSN is not set, audit trail is disabled")
	}
	if c.IsProduction() && c.CORSAllowedOrigins == "*" {
		log.Warn("CORS_ALLOWED_ORIGINS allows any origin in production")
	}
	if c.FreshnessWindow <= 0 {
		log.Warn("ADMIN_CACHE_FRESHNESS must be positive, using 5m")
		c.FreshnessWindow = 5 * time.Minute
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
