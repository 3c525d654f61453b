package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for ats-engine
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	AI        AIConfig
	Upload    UploadConfig
	Reconcile ReconcileConfig
	Seed      SeedConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Driver        string
	DSN           string
	MigrationsDir string
	MaxOpenConns  int
	MaxIdleConns  int
}

// RedisConfig holds Redis configuration. An empty address disables Redis.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// CacheConfig holds analysis cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// AIConfig holds generative AI configuration
type AIConfig struct {
	APIKey         string
	Model          string
	Timeout        time.Duration
	MaxAttempts    int
	RequestsPerMin float64
	RequestsPerDay float64
}

// UploadConfig holds resume upload configuration
type UploadConfig struct {
	MaxBytes          int64
	Dir               string
	ExtractionTimeout time.Duration
}

// ReconcileConfig holds the candidate counter reconciler configuration.
// An empty schedule disables the worker.
type ReconcileConfig struct {
	Schedule string
}

// SeedConfig holds sample data configuration
type SeedConfig struct {
	Dir string
}

// Load loads configuration from .env files and environment variables.
// Variables already set in the environment take precedence over the files.
func Load() (*Config, error) {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to load env file", "file", file, "error", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 120*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("DATABASE_MIGRATIONS_DIR", "./migrations"),
			MaxOpenConns:  getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", 24*time.Hour),
		},
		AI: AIConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:        getEnvAsDuration("AI_TIMEOUT", 60*time.Second),
			MaxAttempts:    getEnvAsInt("AI_MAX_ATTEMPTS", 1),
			RequestsPerMin: getEnvAsFloat("AI_RPM", 0),
			RequestsPerDay: getEnvAsFloat("AI_RPD", 0),
		},
		Upload: UploadConfig{
			MaxBytes:          int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
			Dir:               getEnv("UPLOAD_DIR", os.TempDir()),
			ExtractionTimeout: getEnvAsDuration("EXTRACTION_TIMEOUT", 20*time.Second),
		},
		Reconcile: ReconcileConfig{
			Schedule: getEnv("RECONCILE_SCHEDULE", "@every 10m"),
		},
		Seed: SeedConfig{
			Dir: getEnv("SEED_DIR", "./seeds"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}
	if c.AI.MaxAttempts < 1 {
		return fmt.Errorf("AI max attempts must be at least 1")
	}
	if c.Upload.ExtractionTimeout <= 0 {
		return fmt.Errorf("extraction timeout must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}

	return nil
}

// SlogLevel parses the configured log level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	return level, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
