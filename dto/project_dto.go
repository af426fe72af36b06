package dto

import (
	"math"

	"github.com/filacost/models"
)

// ProjectFilter represents filter criteria for the project list
type ProjectFilter struct {
	Search     string
	Material   string
	FilamentID uint
	Sort       string
	View       string
	Page       int
	PageSize   int
}

// ProjectListResponse represents paginated project list response
type ProjectListResponse struct {
	Projects   []ProjectResponse  `json:"projects"`
	TotalCount int64              `json:"totalCount"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
	Sort       string             `json:"sort"`
	Materials  []models.Material  `json:"materials"`
	Filaments  []FilamentResponse `json:"filaments"`
}

// ProjectRequest represents the request payload for creating or editing a project
type ProjectRequest struct {
	ModelName             string  `json:"modelName" binding:"required,max=200"`
	FilamentUsedMM        float64 `json:"filamentUsedMm" binding:"gte=0"`
	PrintHours            int     `json:"printHours" binding:"gte=0"`
	PrintMinutes          int     `json:"printMinutes" binding:"gte=0,lte=59"`
	SizeX                 float64 `json:"sizeX" binding:"gte=0"`
	SizeY                 float64 `json:"sizeY" binding:"gte=0"`
	SizeZ                 float64 `json:"sizeZ" binding:"gte=0"`
	PostProcessingEnabled bool    `json:"postProcessingEnabled"`
	PaintingEnabled       bool    `json:"paintingEnabled"`
}

// PrintTimeHours combines hours and minutes into fractional hours
func (r ProjectRequest) PrintTimeHours() float64 {
	return float64(r.PrintHours) + float64(r.PrintMinutes)/60
}

// ProjectResponse is a project with its derived values
type ProjectResponse struct {
	models.Project
	Profit             float64 `json:"profit"`
	FilamentUsedMeters float64 `json:"filamentUsedMeters"`
	PrintHours         int     `json:"printHours"`
	PrintMinutes       int     `json:"printMinutes"`
}

// NewProjectResponse fills in the derived values
func NewProjectResponse(p models.Project) ProjectResponse {
	hours, minutes := SplitHours(p.PrintTimeHours)
	return ProjectResponse{
		Project:            p,
		Profit:             p.Profit(),
		FilamentUsedMeters: p.FilamentUsedMeters(),
		PrintHours:         hours,
		PrintMinutes:       minutes,
	}
}

// NewProjectResponses maps a slice of projects
func NewProjectResponses(projects []models.Project) []ProjectResponse {
	response := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		response = append(response, NewProjectResponse(p))
	}
	return response
}

// SplitHours is the inverse of ProjectRequest.PrintTimeHours
func SplitHours(total float64) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	hours := int(total)
	minutes := int(math.Round((total - float64(hours)) * 60))
	if minutes >= 60 {
		hours++
		minutes = 0
	}
	return hours, minutes
}

// ProjectStats aggregates committed project costs
type ProjectStats struct {
	Count        int64   `json:"count"`
	TotalCost    float64 `json:"totalCost"`
	TotalSelling float64 `json:"totalSelling"`
	TotalWeight  float64 `json:"totalWeight"`
}
