package dto

import "github.com/filacost/models"

// CreateFilamentRequest represents the request payload for adding a spool.
// Omitted amounts fall back to a full 330 m spool at the default price.
type CreateFilamentRequest struct {
	Name          string          `json:"name" binding:"required,max=200"`
	Color         string          `json:"color" binding:"required,max=100"`
	Material      models.Material `json:"material"`
	InitialAmount *float64        `json:"initialAmount" binding:"omitempty,gte=0"`
	CostPerKg     *float64        `json:"costPerKg" binding:"omitempty,gte=0"`
}

// UpdateFilamentRequest represents the request payload for editing a spool.
// RemainingAmount keeps the stored value when omitted; Revision, when given,
// must match the stored revision.
type UpdateFilamentRequest struct {
	Name            string          `json:"name" binding:"required,max=200"`
	Color           string          `json:"color" binding:"required,max=100"`
	Material        models.Material `json:"material" binding:"required"`
	InitialAmount   float64         `json:"initialAmount" binding:"gte=0"`
	RemainingAmount *float64        `json:"remainingAmount"`
	CostPerKg       float64         `json:"costPerKg" binding:"gte=0"`
	Revision        *uint           `json:"revision"`
}

// FilamentResponse is a filament with its derived values
type FilamentResponse struct {
	models.Filament
	UsagePercentage int     `json:"usagePercentage"`
	CostPerMeter    float64 `json:"costPerMeter"`
	RemainingValue  float64 `json:"remainingValue"`
}

// NewFilamentResponse fills in the derived values
func NewFilamentResponse(f models.Filament) FilamentResponse {
	return FilamentResponse{
		Filament:        f,
		UsagePercentage: f.UsagePercentage(),
		CostPerMeter:    f.CostPerMeter(),
		RemainingValue:  f.RemainingValue(),
	}
}

// FilamentProjectStats aggregates the projects printed from one spool
type FilamentProjectStats struct {
	Count        int64   `json:"count"`
	TotalCost    float64 `json:"totalCost"`
	TotalSelling float64 `json:"totalSelling"`
	TotalWeight  float64 `json:"totalWeight"`
	Profit       float64 `json:"profit"`
	AvgProfit    float64 `json:"avgProfit"`
}

// FilamentDetailResponse represents the filament page
type FilamentDetailResponse struct {
	Filament FilamentResponse     `json:"filament"`
	Projects []ProjectResponse    `json:"projects"`
	Stats    FilamentProjectStats `json:"stats"`
}
