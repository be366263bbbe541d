// Package cli provides common initialization shared by cmd/despesas and
// cmd/receipts-worker: env loading, logging, config validation and the
// receipt store backend switch.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"despesas/internal/config"
	applog "despesas/internal/log"
	"despesas/internal/receipts"
	"despesas/internal/receipts/disk"
	"despesas/internal/receipts/drive"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging for the given component and
// sets it as the default logger.
func SetupLogger(component, level string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: component,
	})
	applog.SetDefault(logger)
	return logger
}

// ValidateConfig validates the loaded configuration, exiting the process on
// failure. Loading happens before logger setup so the log level can come
// from the config itself.
func ValidateConfig(logger *applog.Logger, cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
}

// NewReceiptStore builds the configured receipt store backend. The second
// return value is the local uploads directory, empty unless the disk
// backend is selected. Exits the process on failure.
func NewReceiptStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) (receipts.Store, string) {
	switch cfg.ReceiptsBackend {
	case "drive":
		driveStore, err := drive.NewStore(ctx, drive.Options{
			FolderID:        cfg.DriveFolderID,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Drive receipt store", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Initialized Drive receipts backend")
		return driveStore, ""
	default:
		diskStore, err := disk.NewStore(cfg.ReceiptsDir, cfg.ReceiptsBasePath)
		if err != nil {
			logger.Error("Failed to initialize disk receipt store", applog.FieldError, err, "dir", cfg.ReceiptsDir)
			os.Exit(1)
		}
		logger.Info("Initialized disk receipts backend", "dir", cfg.ReceiptsDir)
		return diskStore, diskStore.Dir()
	}
}
