package database

import (
	"fmt"
	"log/slog"

	"github.com/filacost/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DBConnection represents a database connection
type DBConnection struct {
	DB     *gorm.DB
	Name   string
	Driver string
}

// NewDBConnection creates a new database connection
func NewDBConnection(name, driver, dsn string) (*DBConnection, error) {
	db, err := Open(driver, dsn, logger.Warn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", name, err)
	}
	slog.Info("Connected to database", "name", name, "driver", driver)

	return &DBConnection{
		DB:     db,
		Name:   name,
		Driver: driver,
	}, nil
}

// Migrate migrates the database schema
func (c *DBConnection) Migrate() error {
	slog.Info("Migrating database schema", "name", c.Name)
	if err := Migrate(c.DB); err != nil {
		return fmt.Errorf("failed to migrate %s database: %w", c.Name, err)
	}
	return nil
}

// MigrateDataBetweenDatabases copies every record from source to target.
// Hooks are skipped so codes, cost snapshots and sale totals stay as they were.
func MigrateDataBetweenDatabases(source, target *DBConnection) error {
	slog.Info("Starting data migration", "source", source.Name, "target", target.Name)

	return target.DB.Transaction(func(tx *gorm.DB) error {
		tx = tx.Session(&gorm.Session{SkipHooks: true})

		// Step 1: Filaments
		var filaments []models.Filament
		if err := source.DB.Order("id").Find(&filaments).Error; err != nil {
			return fmt.Errorf("failed to fetch filaments: %w", err)
		}
		slog.Info("Migrating filaments", "count", len(filaments))
		if len(filaments) > 0 {
			if err := tx.Create(&filaments).Error; err != nil {
				return fmt.Errorf("failed to migrate filaments: %w", err)
			}
		}

		// Step 2: Projects
		var projects []models.Project
		if err := source.DB.Order("id").Find(&projects).Error; err != nil {
			return fmt.Errorf("failed to fetch projects: %w", err)
		}
		slog.Info("Migrating projects", "count", len(projects))
		if len(projects) > 0 {
			if err := tx.Omit(clause.Associations).Create(&projects).Error; err != nil {
				return fmt.Errorf("failed to migrate projects: %w", err)
			}
		}

		// Step 3: Sales
		var sales []models.Sale
		if err := source.DB.Order("id").Find(&sales).Error; err != nil {
			return fmt.Errorf("failed to fetch sales: %w", err)
		}
		slog.Info("Migrating sales", "count", len(sales))
		if len(sales) > 0 {
			if err := tx.Omit(clause.Associations).Create(&sales).Error; err != nil {
				return fmt.Errorf("failed to migrate sales: %w", err)
			}
		}

		// Step 4: Pricing settings singleton
		var settings []models.PricingSettings
		if err := source.DB.Find(&settings).Error; err != nil {
			return fmt.Errorf("failed to fetch pricing settings: %w", err)
		}
		if len(settings) > 0 {
			if err := tx.Create(&settings).Error; err != nil {
				return fmt.Errorf("failed to migrate pricing settings: %w", err)
			}
		}

		if target.Driver == DriverPostgres {
			for _, table := range []string{"filaments", "projects", "sales", "pricing_settings"} {
				stmt := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", table, table)
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("failed to reset %s sequence: %w", table, err)
				}
			}
		}

		slog.Info("Data migration completed")
		return nil
	})
}
