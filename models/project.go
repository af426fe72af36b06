package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Project represents one costed print job linked to a filament spool.
// The cost fields are a snapshot taken on every save.
type Project struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	FilamentID     uint    `json:"filamentId" gorm:"not null;index"`
	ModelName      string  `json:"modelName" gorm:"size:200;not null"`
	Code           uint    `json:"code" gorm:"uniqueIndex;not null"`
	FilamentUsedMM float64 `json:"filamentUsedMm" gorm:"not null"`
	PrintTimeHours float64 `json:"printTimeHours" gorm:"not null"`
	SizeX          float64 `json:"sizeX" gorm:"not null"`
	SizeY          float64 `json:"sizeY" gorm:"not null"`
	SizeZ          float64 `json:"sizeZ" gorm:"not null"`

	// Optional services
	PostProcessingEnabled bool    `json:"postProcessingEnabled" gorm:"default:false"`
	PostProcessingCost    float64 `json:"postProcessingCost" gorm:"default:0"`
	PaintingEnabled       bool    `json:"paintingEnabled" gorm:"default:false"`
	PaintingCost          float64 `json:"paintingCost" gorm:"default:0"`

	// Cost snapshot
	FilamentWeightUsed float64 `json:"filamentWeightUsed"` // grams
	ElectricityCost    float64 `json:"electricityCost"`
	DepreciationCost   float64 `json:"depreciationCost"`
	MaterialCost       float64 `json:"materialCost"`
	TotalCost          float64 `json:"totalCost"`
	SellingPrice       float64 `json:"sellingPrice"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`

	// Relations
	Filament Filament `json:"filament,omitempty" gorm:"foreignKey:FilamentID;constraint:OnDelete:RESTRICT"`
}

// TableName sets the table name for Project model
func (Project) TableName() string {
	return "projects"
}

// Profit is the margin between selling price and production cost
func (p Project) Profit() float64 {
	return p.SellingPrice - p.TotalCost
}

// FilamentUsedMeters converts the consumed filament length to meters
func (p Project) FilamentUsedMeters() float64 {
	return p.FilamentUsedMM / 1000
}

// FilamentWeight returns the grams of filament of the given diameter (mm) and
// density (g/cm³) needed for lengthMM millimeters.
func FilamentWeight(lengthMM, diameter, density float64) float64 {
	radius := diameter / 2
	volumeMM3 := math.Pi * radius * radius * lengthMM
	return volumeMM3 / 1000 * density
}

// CalculateCosts fills in the cost snapshot from the project's inputs, the
// filament price and the given settings. Nothing is rounded.
func (p *Project) CalculateCosts(costPerKg float64, s CostSettings) {
	p.FilamentWeightUsed = FilamentWeight(p.FilamentUsedMM, s.FilamentDiameter, s.FilamentDensity)

	p.MaterialCost = p.FilamentWeightUsed * (costPerKg / 1000)
	p.ElectricityCost = p.PrintTimeHours * s.ElectricityCostPerKWh * s.PrinterPower
	p.DepreciationCost = p.PrintTimeHours * s.PrinterDepreciationPerHour

	// Bounding box in cm³, only used for painting
	volumeCM3 := (p.SizeX / 10) * (p.SizeY / 10) * (p.SizeZ / 10)

	if p.PostProcessingEnabled {
		p.PostProcessingCost = s.PostProcessingBaseCost
	} else {
		p.PostProcessingCost = 0
	}

	if p.PaintingEnabled {
		p.PaintingCost = volumeCM3 * s.PaintingCostPerCM3
	} else {
		p.PaintingCost = 0
	}

	p.TotalCost = p.MaterialCost + p.ElectricityCost + p.DepreciationCost +
		p.PostProcessingCost + p.PaintingCost
	p.SellingPrice = p.TotalCost * (1 + s.ProfitMargin/100)
}

// BeforeSave recomputes the cost snapshot from the current filament price
func (p *Project) BeforeSave(tx *gorm.DB) error {
	costPerKg := p.Filament.CostPerKg
	if p.Filament.ID == 0 || p.Filament.ID != p.FilamentID {
		var filament Filament
		if err := tx.Session(&gorm.Session{NewDB: true}).First(&filament, p.FilamentID).Error; err != nil {
			return err
		}
		p.Filament = filament
		costPerKg = filament.CostPerKg
	}
	p.CalculateCosts(costPerKg, DefaultCostSettings)
	return nil
}

// BeforeCreate assigns the next sequential code when none was given
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.Code != 0 {
		return nil
	}
	var maxCode uint
	err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&Project{}).
		Select("COALESCE(MAX(code), 0)").
		Scan(&maxCode).Error
	if err != nil {
		return err
	}
	p.Code = maxCode + 1
	return nil
}
