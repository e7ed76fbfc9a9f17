package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStoreDatabase = "database"
	SessionStoreRedis    = "redis"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv        string
	LogLevel      string
	LogFormat     string
	EncryptionKey string

	// Local store
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	// Session
	SessionStore string
	RedisURL     string

	// Backend
	APIBaseURL string
	APITimeout time.Duration

	// Circuit breaker around the backend
	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration

	// Sync
	SyncInterval time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", ""),
		EncryptionKey: getEnv("TASKSYNC_ENCRYPTION_KEY", ""),

		DatabaseDriver: getEnv("DATABASE_DRIVER", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", DefaultSQLitePath()),

		SessionStore: getEnv("SESSION_STORE", SessionStoreDatabase),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),

		APIBaseURL: getEnv("API_BASE_URL", "http://10.0.2.2:3000/"),
		APITimeout: getDurationEnv("API_TIMEOUT", 15*time.Second),

		BreakerFailureThreshold: uint32(getIntEnv("BREAKER_FAILURE_THRESHOLD", 3)),
		BreakerOpenTimeout:      getDurationEnv("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		SyncInterval: getDurationEnv("SYNC_INTERVAL", 5*time.Minute),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesRedisSessions reports whether session values live in Redis.
func (c *Config) UsesRedisSessions() bool {
	return c.SessionStore == SessionStoreRedis
}

// DefaultSQLitePath returns the default location of the local store.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tasksync", "tasks.db")
	}
	return filepath.Join(home, ".tasksync", "tasks.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil && i >= 0 {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
