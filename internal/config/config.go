package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServiceName  string
	LogLevel     string
	HTTPAddr     string
	MetricsAddr  string
	Storage      string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
	JWTSecret    string

	TokenPrice        decimal.Decimal
	OperationTimeout  time.Duration
	PendingTimeout    time.Duration
	ReconcileInterval time.Duration
	ReconcileBatch    int
	ReconcileWorkers  int
	CacheTTL          time.Duration

	// SeedProperties creates inventory rows at startup, "id:total" comma separated.
	SeedProperties map[string]int64
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using default values", "error", err)
	}

	cfg := &Config{
		ServiceName:  getString("OTEL_SERVICE_NAME", "prop-token-ledger"),
		LogLevel:     getString("LOG_LEVEL", "info"),
		HTTPAddr:     getString("HTTP_ADDR", ":8080"),
		MetricsAddr:  getString("METRICS_ADDR", ":9090"),
		Storage:      getString("STORAGE", StoragePostgres),
		PostgresDSN:  getString("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=ledger sslmode=disable"),
		RedisAddr:    getString("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: splitList(getString("KAFKA_BROKER", "localhost:9092")),
		KafkaTopic:   getString("KAFKA_TOPIC", "ledger-transactions"),
		KafkaGroupID: getString("KAFKA_GROUP_ID", "ledger-auditor"),
		JWTSecret:    getString("JWT_SECRET", "supersecret"),

		TokenPrice:        getDecimal("TOKEN_PRICE", decimal.NewFromInt(1000)),
		OperationTimeout:  getDuration("OPERATION_TIMEOUT", 10*time.Second),
		PendingTimeout:    getDuration("PENDING_TIMEOUT", 15*time.Minute),
		ReconcileInterval: getDuration("RECONCILE_INTERVAL", time.Minute),
		ReconcileBatch:    getInt("RECONCILE_BATCH", 100),
		ReconcileWorkers:  getInt("RECONCILE_WORKERS", 4),
		CacheTTL:          getDuration("CACHE_TTL", 5*time.Minute),
		SeedProperties:    parseSeedProperties(getString("SEED_PROPERTIES", "")),
	}

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		slog.Warn("unknown storage backend, using postgres", "storage", cfg.Storage)
		cfg.Storage = StoragePostgres
	}

	// A row younger than two operation timeouts may still belong to a live call.
	if minPending := 2 * cfg.OperationTimeout; cfg.PendingTimeout <= minPending {
		slog.Warn("pending timeout too short for operation timeout, clamping",
			"pending_timeout", cfg.PendingTimeout,
			"operation_timeout", cfg.OperationTimeout,
			"clamped_to", 3*cfg.OperationTimeout)
		cfg.PendingTimeout = 3 * cfg.OperationTimeout
	}

	slog.Info("config loaded",
		"storage", cfg.Storage,
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
		"token_price", cfg.TokenPrice.String(),
		"pending_timeout", cfg.PendingTimeout)
	return cfg
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || !d.IsPositive() {
		slog.Warn("invalid decimal, using default", "key", key, "value", v, "default", def.String())
		return def
	}
	return d
}

func parseSeedProperties(v string) map[string]int64 {
	out := make(map[string]int64)
	for _, entry := range splitList(v) {
		id, total, ok := strings.Cut(entry, ":")
		n, err := strconv.ParseInt(strings.TrimSpace(total), 10, 64)
		if !ok || err != nil || n < 0 || strings.TrimSpace(id) == "" {
			slog.Warn("invalid property seed, skipping", "entry", entry)
			continue
		}
		out[strings.TrimSpace(id)] = n
	}
	return out
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
