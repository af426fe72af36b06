package license

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RollbackTolerance is how far, in seconds, the clock may fall behind the
// highest time ever observed before the license is refused
const RollbackTolerance = 300

// ErrClockRollback is returned when the system clock moved backwards
var ErrClockRollback = errors.New("system clock rollback detected")

// StateStore keeps the high-water mark of observed time
type StateStore interface {
	Observe(now int64) error
}

// State row; only id=1 is ever used
type clockState struct {
	ID           uint  `gorm:"primaryKey"`
	LastSeenUnix int64 `gorm:"not null;default:0"`
}

func (clockState) TableName() string {
	return "license_state"
}

// SQLiteStateStore persists the high-water mark in a small SQLite file
type SQLiteStateStore struct {
	db *gorm.DB
}

// OpenStateStore opens (and creates) the state database at path
func OpenStateStore(path string) (*SQLiteStateStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open license state: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB for license state: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&clockState{}); err != nil {
		return nil, fmt.Errorf("failed to migrate license state: %w", err)
	}
	if err := db.FirstOrCreate(&clockState{}, clockState{ID: 1}).Error; err != nil {
		return nil, fmt.Errorf("failed to seed license state: %w", err)
	}
	return &SQLiteStateStore{db: db}, nil
}

// Observe fails with ErrClockRollback when now is more than RollbackTolerance
// seconds behind the stored mark; otherwise it moves the mark forward only.
func (s *SQLiteStateStore) Observe(now int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var state clockState
		if err := tx.FirstOrCreate(&state, clockState{ID: 1}).Error; err != nil {
			return err
		}
		if now+RollbackTolerance < state.LastSeenUnix {
			return ErrClockRollback
		}
		if now > state.LastSeenUnix {
			return tx.Model(&state).Update("last_seen_unix", now).Error
		}
		return nil
	})
}

// LastSeen returns the stored high-water mark
func (s *SQLiteStateStore) LastSeen() (int64, error) {
	var state clockState
	if err := s.db.First(&state, 1).Error; err != nil {
		return 0, err
	}
	return state.LastSeenUnix, nil
}

// Close releases the underlying database handle
func (s *SQLiteStateStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
