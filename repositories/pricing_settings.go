package repositories

import (
	"github.com/filacost/database"
	"github.com/filacost/models"
)

// PricingSettingsRepository handles the single pricing settings row
type PricingSettingsRepository struct{}

// NewPricingSettingsRepository creates a new pricing settings repository instance
func NewPricingSettingsRepository() *PricingSettingsRepository {
	return &PricingSettingsRepository{}
}

// GetSolo returns the settings row, creating it with defaults on first use
func (r *PricingSettingsRepository) GetSolo() (models.PricingSettings, error) {
	settings := models.DefaultPricingSettings()
	result := database.DB.
		Where(models.PricingSettings{SingletonID: models.PricingSingletonID}).
		FirstOrCreate(&settings)
	return settings, result.Error
}

// Save writes the settings row
func (r *PricingSettingsRepository) Save(settings *models.PricingSettings) error {
	return database.DB.Save(settings).Error
}
