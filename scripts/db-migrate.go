package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/filacost/config"
	"github.com/filacost/database"
)

// Copies a local SQLite install into a Postgres database.
func main() {
	config.LoadEnv()
	slog.Info("Starting database migration...")

	sourcePath := config.GetEnv("SOURCE_DATABASE_PATH", filepath.Join(config.DataDir(), "calculator.sqlite3"))

	targetDBURL := os.Getenv("TARGET_DATABASE_URL")
	if targetDBURL == "" {
		slog.Error("TARGET_DATABASE_URL must be set")
		os.Exit(1)
	}

	sourceDB, err := database.NewDBConnection("source", database.DriverSQLite, sourcePath)
	if err != nil {
		slog.Error("Failed to connect to source database", "error", err)
		os.Exit(1)
	}

	targetDB, err := database.NewDBConnection("target", database.DriverPostgres, targetDBURL)
	if err != nil {
		slog.Error("Failed to connect to target database", "error", err)
		os.Exit(1)
	}

	// Ensure target database schema is migrated
	if err := targetDB.Migrate(); err != nil {
		slog.Error("Failed to migrate target database schema", "error", err)
		os.Exit(1)
	}

	if err := database.MigrateDataBetweenDatabases(sourceDB, targetDB); err != nil {
		slog.Error("Data migration failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Database migration completed successfully!")
}
