package dto

import "github.com/shopspring/decimal"

// UpdatePricingSettingsRequest represents the pricing settings form.
// Omitted coefficients keep their stored value.
type UpdatePricingSettingsRequest struct {
	PowerPricePerKWh     *decimal.Decimal `json:"power_price_per_kwh"`
	DepreciationPerHour  *decimal.Decimal `json:"depreciation_per_hour"`
	FilamentWastePercent *decimal.Decimal `json:"filament_waste_percent"`
	PackagingCost        *decimal.Decimal `json:"packaging_cost"`
	PostProcessingRate   *decimal.Decimal `json:"post_processing_rate"`
	PaintingRatePerCM2   *decimal.Decimal `json:"painting_rate_per_cm2"`
	ProfitPercent        *decimal.Decimal `json:"profit_percent"`
	RoundToNearest       *decimal.Decimal `json:"round_to_nearest"`
	ConfirmApply         bool             `json:"confirm_apply"`
}

// PricingSettingsJSON is the settings row as plain numbers for client-side previews
type PricingSettingsJSON struct {
	PowerPricePerKWh     float64 `json:"power_price_per_kwh"`
	DepreciationPerHour  float64 `json:"depreciation_per_hour"`
	FilamentWastePercent float64 `json:"filament_waste_percent"`
	PackagingCost        float64 `json:"packaging_cost"`
	PostProcessingRate   float64 `json:"post_processing_rate"`
	PaintingRatePerCM2   float64 `json:"painting_rate_per_cm2"`
	ProfitPercent        float64 `json:"profit_percent"`
	RoundToNearest       float64 `json:"round_to_nearest"`
	UpdatedAt            string  `json:"updated_at"`
}

// PreviewResponse is the estimated cost breakdown of a project being edited
type PreviewResponse struct {
	FilamentWeight     float64 `json:"filament_weight"`
	MaterialCost       float64 `json:"material_cost"`
	ElectricityCost    float64 `json:"electricity_cost"`
	DepreciationCost   float64 `json:"depreciation_cost"`
	PostProcessingCost float64 `json:"post_processing_cost"`
	PaintingCost       float64 `json:"painting_cost"`
	TotalCost          float64 `json:"total_cost"`
	SellingPrice       float64 `json:"selling_price"`
	GramsPerMeter      float64 `json:"g_per_m"`
}
