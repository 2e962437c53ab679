package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type envConfig struct {
	APP_PORT      string
	LOG_FILE_PATH string

	// STORAGE_DRIVER selects the record store: postgres, datastore or memory.
	STORAGE_DRIVER string

	DB_HOST              string
	DB_PORT              string
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_MAX_OPEN_CONNS    int
	DB_MAX_IDLE_CONNS    int
	DB_CONN_MAX_LIFETIME time.Duration

	ELASTIC_URL   string
	ELASTIC_INDEX string

	GCP_PROJECT_ID string

	REMINDER_POLL_INTERVAL time.Duration

	EXPORT_CONFIG_PATH string
}

// DefaultEnvConfig holds the configuration loaded by LoadEnvConfig.
var DefaultEnvConfig envConfig

// LoadEnvConfig reads .env (if present) and the process environment.
// Missing keys fall back to defaults suitable for local development.
func LoadEnvConfig() error {
	// .env is optional; env vars win either way.
	_ = godotenv.Load()

	DefaultEnvConfig = envConfig{
		APP_PORT:      getEnv("APP_PORT", "8080"),
		LOG_FILE_PATH: getEnv("LOG_FILE_PATH", ""),

		STORAGE_DRIVER: getEnv("STORAGE_DRIVER", "postgres"),

		DB_HOST:              getEnv("DB_HOST", "localhost"),
		DB_PORT:              getEnv("DB_PORT", "5432"),
		DB_USER:              getEnv("DB_USER", "postgres"),
		DB_PASSWORD:          getEnv("DB_PASSWORD", "postgres"),
		DB_NAME:              getEnv("DB_NAME", "todoplanner"),
		DB_SSL_MODE:          getEnv("DB_SSL_MODE", "disable"),
		DB_MAX_OPEN_CONNS:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DB_MAX_IDLE_CONNS:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DB_CONN_MAX_LIFETIME: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		ELASTIC_URL:   getEnv("ELASTIC_URL", ""),
		ELASTIC_INDEX: getEnv("ELASTIC_INDEX", "todos"),

		GCP_PROJECT_ID: getEnv("GCP_PROJECT_ID", ""),

		REMINDER_POLL_INTERVAL: getEnvDuration("REMINDER_POLL_INTERVAL", 30*time.Second),

		EXPORT_CONFIG_PATH: getEnv("EXPORT_CONFIG_PATH", "report_config.yaml"),
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
