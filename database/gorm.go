package database

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/filacost/config"
	"github.com/filacost/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Initialize sets up the GORM database connection
func Initialize() {
	driver := config.GetEnv("DB_DRIVER", "")
	dsn := os.Getenv("DATABASE_URL")
	if driver == "" {
		if dsn != "" {
			driver = DriverPostgres
		} else {
			driver = DriverSQLite
		}
	}
	if driver == DriverSQLite {
		dsn = config.GetEnv("DATABASE_PATH", filepath.Join(config.DataDir(), "calculator.sqlite3"))
	}

	db, err := Open(driver, dsn, logger.Warn)
	if err != nil {
		slog.Error("Failed to connect to database", "driver", driver, "error", err)
		os.Exit(1)
	}

	if err := Migrate(db); err != nil {
		slog.Error("Failed to auto migrate", "error", err)
		os.Exit(1)
	}

	DB = db
	slog.Info("Connected to database", "driver", driver)
}

// Open connects to a sqlite file or a postgres URL and configures the pool
func Open(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s: database DSN cannot be empty", driver)
	}

	// Configure GORM logger
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	// Get and configure the underlying SQL DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB for %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One writer at a time; stock updates stay serialized
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates or updates the schema for every model
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Filament{},
		&models.Project{},
		&models.Sale{},
		&models.PricingSettings{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
