package repositories

import (
	"github.com/filacost/database"
	"github.com/filacost/models"
	"gorm.io/gorm"
)

// FilamentRepository handles database operations for filaments
type FilamentRepository struct{}

// NewFilamentRepository creates a new filament repository instance
func NewFilamentRepository() *FilamentRepository {
	return &FilamentRepository{}
}

// FindAll retrieves all filaments, newest first
func (r *FilamentRepository) FindAll() ([]models.Filament, error) {
	var filaments []models.Filament
	result := database.DB.Order("created_at DESC").Find(&filaments)
	return filaments, result.Error
}

// FindAllByName retrieves all filaments ordered for filter dropdowns
func (r *FilamentRepository) FindAllByName() ([]models.Filament, error) {
	var filaments []models.Filament
	result := database.DB.Order("name ASC, color ASC").Find(&filaments)
	return filaments, result.Error
}

// FindByID retrieves a filament by its ID
func (r *FilamentRepository) FindByID(id uint) (models.Filament, error) {
	var filament models.Filament
	result := database.DB.First(&filament, id)
	return filament, result.Error
}

// Create inserts a new filament into the database
func (r *FilamentRepository) Create(filament models.Filament) (models.Filament, error) {
	result := database.DB.Create(&filament)
	return filament, result.Error
}

// UpdateIfRevision writes the editable fields only when the stored revision
// still equals expected. It reports whether a row was updated.
func (r *FilamentRepository) UpdateIfRevision(filament models.Filament, expected uint) (bool, error) {
	result := database.DB.Model(&models.Filament{}).
		Where("id = ? AND revision = ?", filament.ID, expected).
		Updates(map[string]interface{}{
			"name":             filament.Name,
			"color":            filament.Color,
			"material":         filament.Material,
			"initial_amount":   filament.InitialAmount,
			"remaining_amount": filament.RemainingAmount,
			"cost_per_kg":      filament.CostPerKg,
			"revision":         gorm.Expr("revision + 1"),
		})
	return result.RowsAffected > 0, result.Error
}

// Delete removes a filament
func (r *FilamentRepository) Delete(id uint) error {
	return database.DB.Delete(&models.Filament{}, id).Error
}

// CountProjects counts the projects printed from a filament
func (r *FilamentRepository) CountProjects(id uint) (int64, error) {
	var count int64
	err := database.DB.Model(&models.Project{}).Where("filament_id = ?", id).Count(&count).Error
	return count, err
}

// Consume takes meters off the spool only if that much is left. The check and
// the decrement are a single statement.
func (r *FilamentRepository) Consume(tx *gorm.DB, id uint, meters float64) (bool, error) {
	result := tx.Model(&models.Filament{}).
		Where("id = ? AND remaining_amount >= ?", id, meters).
		Updates(map[string]interface{}{
			"remaining_amount": gorm.Expr("remaining_amount - ?", meters),
			"revision":         gorm.Expr("revision + 1"),
		})
	return result.RowsAffected > 0, result.Error
}

// Adjust subtracts meters from the spool without an availability check.
// A negative value returns filament to stock.
func (r *FilamentRepository) Adjust(tx *gorm.DB, id uint, meters float64) error {
	return tx.Model(&models.Filament{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"remaining_amount": gorm.Expr("remaining_amount - ?", meters),
			"revision":         gorm.Expr("revision + 1"),
		}).Error
}
