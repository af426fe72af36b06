package models

// CostSettings holds the process-wide coefficients used when a project's
// cost snapshot is committed. They are independent of the persisted
// PricingSettings row, which only drives the live preview.
type CostSettings struct {
	FilamentDiameter           float64 // mm
	FilamentDensity            float64 // g/cm³
	ElectricityCostPerKWh      float64
	PrinterPower               float64 // kW
	PrinterDepreciationPerHour float64
	PostProcessingBaseCost     float64
	PaintingCostPerCM3         float64
	ProfitMargin               float64 // percent
}

// DefaultCostSettings is read by Project.CalculateCosts on every save.
// main overrides it from the environment at startup.
var DefaultCostSettings = CostSettings{
	FilamentDiameter:           1.75,
	FilamentDensity:            1.24,
	ElectricityCostPerKWh:      1000,
	PrinterPower:               0.15,
	PrinterDepreciationPerHour: 500,
	PostProcessingBaseCost:     5000,
	PaintingCostPerCM3:         250,
	ProfitMargin:               70,
}
