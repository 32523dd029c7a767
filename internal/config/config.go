package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	Database  Database
	Redis     Redis
	Storage   Storage
	Ranking   Ranking
	RateLimit RateLimit
	Telemetry Telemetry
	Cleanup   Cleanup

	JWTSecret string
}

// Database selects and addresses the catalog store
type Database struct {
	Driver string // "postgres" or "sqlite"
	URL    string // postgres DSN
	Path   string // sqlite file
}

type Redis struct {
	Host     string
	Port     string
	Password string
}

type Storage struct {
	Region string
	Bucket string
}

// Ranking tunes the ranking engine
type Ranking struct {
	Workers           int
	ParallelThreshold int
	TieBreak          string
}

type RateLimit struct {
	Requests int
	Window   time.Duration
}

type Telemetry struct {
	Enabled      bool
	Endpoint     string
	SamplingRate float64
}

// Cleanup schedules purging of deleted songs
type Cleanup struct {
	Interval time.Duration
	Grace    time.Duration
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	// .env is optional; system environment wins either way
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8787"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("LOG_FILE", "cadence.log"),
		Database: Database{
			Driver: getEnvOrDefault("DB_DRIVER", "postgres"),
			URL:    os.Getenv("DATABASE_URL"),
			Path:   getEnvOrDefault("SQLITE_PATH", "cadence.db"),
		},
		Redis: Redis{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Storage: Storage{
			Region: getEnvOrDefault("AWS_REGION", "us-east-1"),
			Bucket: os.Getenv("AWS_BUCKET"),
		},
		Ranking: Ranking{
			TieBreak: getEnvOrDefault("RANKING_TIE_BREAK", "reverse-scan"),
		},
		Telemetry: Telemetry{
			Endpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnvOrDefault("DB_HOST", "localhost"),
			getEnvOrDefault("DB_PORT", "5432"),
			getEnvOrDefault("DB_USER", "postgres"),
			getEnvOrDefault("DB_PASSWORD", ""),
			getEnvOrDefault("DB_NAME", "cadence"),
			getEnvOrDefault("DB_SSLMODE", "disable"),
		)
	}

	var err error
	if cfg.Ranking.Workers, err = getEnvInt("RANKING_WORKERS", 0); err != nil {
		return nil, err
	}
	if cfg.Ranking.ParallelThreshold, err = getEnvInt("RANKING_PARALLEL_THRESHOLD", 2048); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Requests, err = getEnvInt("RATE_LIMIT_REQUESTS", 120); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Window, err = getEnvDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.Telemetry.Enabled, err = getEnvBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Telemetry.SamplingRate, err = getEnvFloat("OTEL_SAMPLING_RATE", 1.0); err != nil {
		return nil, err
	}

	if cfg.Cleanup.Interval, err = getEnvDuration("CLEANUP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.Cleanup.Grace, err = getEnvDuration("CLEANUP_GRACE", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.Database.Driver)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
