package dto

import "github.com/filacost/models"

// CreateSaleRequest represents the request payload for recording a sale.
// The project is given either by id or by its numeric code.
type CreateSaleRequest struct {
	ProjectID     *uint   `json:"projectId"`
	ProjectCode   *uint   `json:"projectCode" binding:"omitempty,min=1"`
	Quantity      int     `json:"quantity" binding:"required,min=1"`
	CustomerName  string  `json:"customerName" binding:"max=200"`
	CustomerPhone string  `json:"customerPhone" binding:"max=20"`
	UnitPrice     float64 `json:"unitPrice" binding:"gte=0"`
	PackagingCost float64 `json:"packagingCost" binding:"gte=0"`
	Notes         string  `json:"notes"`
}

// SaleFilter represents filter criteria for the sales history
type SaleFilter struct {
	Period   string
	Search   string
	Customer string
	Sort     string
	Page     int
}

// SaleResponse is a sale with its derived values
type SaleResponse struct {
	models.Sale
	UnitProfit  float64 `json:"unitProfit"`
	TotalProfit float64 `json:"totalProfit"`
	SaleRevenue float64 `json:"saleRevenue"`
}

// NewSaleResponse fills in the derived values
func NewSaleResponse(s models.Sale) SaleResponse {
	return SaleResponse{
		Sale:        s,
		UnitProfit:  s.UnitProfit(),
		TotalProfit: s.TotalProfit(),
		SaleRevenue: s.SaleRevenue(),
	}
}

// NewSaleResponses maps a slice of sales
func NewSaleResponses(sales []models.Sale) []SaleResponse {
	response := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		response = append(response, NewSaleResponse(s))
	}
	return response
}

// SaleTotals summarizes a filtered set of sales
type SaleTotals struct {
	Count    int64   `json:"count"`
	Revenue  float64 `json:"revenue"`
	Quantity int64   `json:"quantity"`
	Profit   float64 `json:"profit"`
}

// SaleHistoryResponse represents one page of the sales history
type SaleHistoryResponse struct {
	Sales      []SaleResponse `json:"sales"`
	Totals     SaleTotals     `json:"totals"`
	Customers  []string       `json:"customers"`
	Period     string         `json:"period"`
	Sort       string         `json:"sort"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
