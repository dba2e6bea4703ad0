// Package cli provides common initialization for the command entrypoints:
// logging, .env loading, config validation, and the local store.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/kvstore"
	"fintrack/internal/log"
)

// SetupLogger initializes structured logging at the configured level and
// sets it as the default logger.
func SetupLogger(level string) *log.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	logger := log.New(log.Config{Level: l, Component: log.ComponentApp})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it. Exits the
// process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitStore opens the SQLite-backed local store. Exits the process on
// failure.
func InitStore(logger *log.Logger, dbPath string) *kvstore.SQLite {
	store, err := kvstore.NewSQLite(dbPath)
	if err != nil {
		logger.Error("Failed to initialize local store", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return store
}
