package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingSingletonID is the only valid SingletonID for PricingSettings
const PricingSingletonID = 1

// PricingSettings holds the tunable coefficients of the live price preview.
// Exactly one row exists; it does not affect committed project costs.
type PricingSettings struct {
	ID          uint `json:"-" gorm:"primaryKey"`
	SingletonID uint `json:"-" gorm:"uniqueIndex;not null;default:1"`

	// Base costs
	PowerPricePerKWh     decimal.Decimal `json:"power_price_per_kwh" gorm:"type:decimal(12,2);not null"`
	DepreciationPerHour  decimal.Decimal `json:"depreciation_per_hour" gorm:"type:decimal(12,2);not null"`
	FilamentWastePercent decimal.Decimal `json:"filament_waste_percent" gorm:"type:decimal(6,2);not null"`
	PackagingCost        decimal.Decimal `json:"packaging_cost" gorm:"type:decimal(12,2);not null"`

	// Services
	PostProcessingRate decimal.Decimal `json:"post_processing_rate" gorm:"type:decimal(12,2);not null"`
	PaintingRatePerCM2 decimal.Decimal `json:"painting_rate_per_cm2" gorm:"type:decimal(12,2);not null"`

	// Pricing strategy
	ProfitPercent  decimal.Decimal `json:"profit_percent" gorm:"type:decimal(6,2);not null"`
	RoundToNearest decimal.Decimal `json:"round_to_nearest" gorm:"type:decimal(12,0);not null"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for PricingSettings model
func (PricingSettings) TableName() string {
	return "pricing_settings"
}

// DefaultPricingSettings returns the coefficients a fresh install starts with
func DefaultPricingSettings() PricingSettings {
	return PricingSettings{
		SingletonID:          PricingSingletonID,
		PowerPricePerKWh:     decimal.NewFromInt(3500),
		DepreciationPerHour:  decimal.NewFromInt(12000),
		FilamentWastePercent: decimal.NewFromInt(3),
		PackagingCost:        decimal.Zero,
		PostProcessingRate:   decimal.NewFromInt(25000),
		PaintingRatePerCM2:   decimal.NewFromInt(180),
		ProfitPercent:        decimal.NewFromInt(35),
		RoundToNearest:       decimal.NewFromInt(1000),
	}
}

// BeforeSave pins the singleton id
func (s *PricingSettings) BeforeSave(tx *gorm.DB) error {
	s.SingletonID = PricingSingletonID
	return nil
}
