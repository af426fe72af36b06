package models

import (
	"math"
	"time"
)

// Material represents the filament material type
type Material string

const (
	MaterialPLA     Material = "PLA"
	MaterialPLAPlus Material = "PLA+"
	MaterialABS     Material = "ABS"
	MaterialPETG    Material = "PETG"
	MaterialTPU     Material = "TPU"
	MaterialWood    Material = "WOOD"
	MaterialMetal   Material = "METAL"
	MaterialCarbon  Material = "CARBON"
)

// Materials lists every supported material in display order
var Materials = []Material{
	MaterialPLA,
	MaterialPLAPlus,
	MaterialABS,
	MaterialPETG,
	MaterialTPU,
	MaterialWood,
	MaterialMetal,
	MaterialCarbon,
}

// Valid reports whether m is one of the supported materials
func (m Material) Valid() bool {
	for _, known := range Materials {
		if m == known {
			return true
		}
	}
	return false
}

// MetersPerKg is the nominal length of one kilogram of 1.75mm filament
const MetersPerKg = 330.0

// DefaultCostPerKg is used when a filament is created without a price
const DefaultCostPerKg = 1500000

// Filament represents a spool of printable material
type Filament struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"size:200;not null"`
	Color           string    `json:"color" gorm:"size:100;not null"`
	Material        Material  `json:"material" gorm:"type:varchar(20);default:'PLA+'"`
	InitialAmount   float64   `json:"initialAmount" gorm:"not null"`   // meters
	RemainingAmount float64   `json:"remainingAmount" gorm:"not null"` // meters
	CostPerKg       float64   `json:"costPerKg" gorm:"not null;default:1500000"`
	Revision        uint      `json:"revision" gorm:"not null;default:0"` // bumped on every stock mutation
	CreatedAt       time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName sets the table name for Filament model
func (Filament) TableName() string {
	return "filaments"
}

// UsagePercentage returns the remaining share of the spool, clamped to 0..100
func (f Filament) UsagePercentage() int {
	if f.InitialAmount <= 0 {
		return 0
	}
	pct := int(math.Round(f.RemainingAmount / f.InitialAmount * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// CostPerMeter converts the per-kilogram price into a per-meter price
func (f Filament) CostPerMeter() float64 {
	if f.CostPerKg == 0 {
		return 0
	}
	return f.CostPerKg / MetersPerKg
}

// RemainingValue is the monetary value of the filament left on the spool
func (f Filament) RemainingValue() float64 {
	return f.RemainingAmount * f.CostPerMeter()
}
