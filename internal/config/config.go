// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	LogLevel    string

	// Product form behaviour
	NoticeTTL         time.Duration
	SessionIdleTTL    time.Duration
	KeyMaxAttempts    int64
	KeyAttemptsWindow time.Duration
}

// Load reads configuration with defaults suitable for local development.
// Call godotenv.Load before this if a .env file should be honoured.
func Load() Config {
	return Config{
		Port:              getEnv("PORT", "3000"),
		DatabaseURL:       databaseURL(),
		RedisAddr:         os.Getenv("REDIS_ADDRESS"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		NoticeTTL:         getEnvDuration("FORM_NOTICE_TTL", 4*time.Second),
		SessionIdleTTL:    getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
		KeyMaxAttempts:    int64(getEnvInt("STOCK_KEY_MAX_ATTEMPTS", 5)),
		KeyAttemptsWindow: getEnvDuration("STOCK_KEY_ATTEMPT_WINDOW", 15*time.Minute),
	}
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "pos_inventory"),
		getEnv("DB_PORT", "5432"),
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("4s", "30m").
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
