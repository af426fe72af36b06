package models

import (
	"time"

	"gorm.io/gorm"
)

// Sale records units of a project sold to a customer. Sales are
// informational only and never touch filament stock.
type Sale struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProjectID     uint      `json:"projectId" gorm:"not null;index"`
	ProjectCode   uint      `json:"projectCode" gorm:"not null"` // snapshot for display
	Quantity      int       `json:"quantity" gorm:"not null;default:1"`
	CustomerName  string    `json:"customerName" gorm:"size:200"`
	CustomerPhone string    `json:"customerPhone" gorm:"size:20"`
	UnitPrice     float64   `json:"unitPrice" gorm:"not null"`
	PackagingCost float64   `json:"packagingCost" gorm:"default:0"`
	TotalPrice    float64   `json:"totalPrice" gorm:"not null"`
	SaleDate      time.Time `json:"saleDate" gorm:"index"`
	Notes         string    `json:"notes" gorm:"type:text"`

	// Relations
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// TableName sets the table name for Sale model
func (Sale) TableName() string {
	return "sales"
}

// UnitProfit is the unit price minus the project's committed cost
func (s Sale) UnitProfit() float64 {
	if s.Project.ID == 0 {
		return 0
	}
	return s.UnitPrice - s.Project.TotalCost
}

// TotalProfit excludes packaging, which is a cost pass-through
func (s Sale) TotalProfit() float64 {
	return s.UnitProfit() * float64(s.Quantity)
}

// SaleRevenue is the revenue from the units alone
func (s Sale) SaleRevenue() float64 {
	return s.UnitPrice * float64(s.Quantity)
}

// BeforeSave snapshots the project code and recomputes the total price
func (s *Sale) BeforeSave(tx *gorm.DB) error {
	if s.Project.ID == 0 || s.Project.ID != s.ProjectID {
		var project Project
		if err := tx.Session(&gorm.Session{NewDB: true}).First(&project, s.ProjectID).Error; err != nil {
			return err
		}
		s.Project = project
	}
	s.ProjectCode = s.Project.Code
	s.TotalPrice = s.UnitPrice*float64(s.Quantity) + s.PackagingCost
	return nil
}

// BeforeCreate stamps the sale date
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.SaleDate.IsZero() {
		s.SaleDate = time.Now()
	}
	return nil
}
