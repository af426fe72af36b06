package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrInsufficientFilament = errors.New("not enough filament")
	ErrFilamentInUse        = errors.New("filament is used by projects")
	ErrRevisionConflict     = errors.New("filament was changed by another request")
	ErrProjectCodeNotFound  = errors.New("project code not found")
	ErrProjectRequired      = errors.New("a project id or project code is required")
	ErrInvalidPreviewInput  = errors.New("invalid input")
	ErrConfirmationRequired = errors.New("confirm_apply is required to save pricing settings")
	ErrInvalidSettings      = errors.New("invalid pricing settings")
	ErrInvalidMaterial      = errors.New("unknown filament material")
)

// InsufficientFilamentError is returned when a project needs more filament
// than the spool has left
type InsufficientFilamentError struct {
	Remaining float64 // meters
	Required  float64 // meters
}

func (e *InsufficientFilamentError) Error() string {
	return fmt.Sprintf("not enough filament: %.1f m remaining, %.1f m required", e.Remaining, e.Required)
}

// Unwrap lets errors.Is match ErrInsufficientFilament
func (e *InsufficientFilamentError) Unwrap() error {
	return ErrInsufficientFilament
}

// FilamentInUseError carries the number of referencing projects
type FilamentInUseError struct {
	Projects int64
}

func (e *FilamentInUseError) Error() string {
	return fmt.Sprintf("cannot delete filament: %d projects were printed with it", e.Projects)
}

// Unwrap lets errors.Is match ErrFilamentInUse
func (e *FilamentInUseError) Unwrap() error {
	return ErrFilamentInUse
}

// translate maps gorm's not-found error to ErrNotFound and wraps the rest
func translate(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
