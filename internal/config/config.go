package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	TelegramToken  string
	DBDSN          string
	Environment    string
	LogLevel       string
	HTTPAddr       string
	RedisAddr      string
	RedisPassword  string
	SessionTTL     time.Duration
	MigrationsPath string
	Storage        string

	// RateLimitRPS of 0 turns the HTTP rate limit off.
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy keys the rate limit on X-Forwarded-For. Set it only behind a
	// proxy that overwrites the header.
	TrustProxy bool

	// EnvFileLoaded is false when no .env was found and only the process environment was used.
	EnvFileLoaded bool
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	envLoaded := godotenv.Load(".env") == nil

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    getenv("ENVIRONMENT", "development"),
		LogLevel:       strings.ToLower(os.Getenv("LOG_LEVEL")),
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "migrations"),
		Storage:        strings.ToLower(getenv("STORAGE", StoragePostgres)),
		EnvFileLoaded:  envLoaded,
	}

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "30m"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration, got %q", os.Getenv("SESSION_TTL"))
	}
	cfg.SessionTTL = ttl

	rps, err := strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "0"), 64)
	if err != nil || rps < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a non-negative number, got %q", os.Getenv("RATE_LIMIT_RPS"))
	}
	burst, err := strconv.Atoi(getenv("RATE_LIMIT_BURST", "20"))
	if err != nil || burst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer, got %q", os.Getenv("RATE_LIMIT_BURST"))
	}
	cfg.RateLimitRPS = rps
	cfg.RateLimitBurst = burst

	trust, err := strconv.ParseBool(getenv("TRUST_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("TRUST_PROXY must be a boolean, got %q", os.Getenv("TRUST_PROXY"))
	}
	cfg.TrustProxy = trust

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
