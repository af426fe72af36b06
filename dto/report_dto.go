package dto

// TopProduct is one row of the best sellers table
type TopProduct struct {
	ModelName     string  `json:"modelName"`
	Count         int64   `json:"count"`
	Revenue       float64 `json:"revenue"`
	TotalQuantity int64   `json:"totalQuantity"`
}

// DailyStat aggregates the sales of one calendar day
type DailyStat struct {
	Date          string  `json:"date"`
	Count         int64   `json:"count"`
	Revenue       float64 `json:"revenue"`
	TotalQuantity int64   `json:"totalQuantity"`
}

// ReportResponse represents the sales report for a period
type ReportResponse struct {
	Period              string         `json:"period"`
	ItemFilter          string         `json:"itemFilter"`
	TotalSales          int64          `json:"totalSales"`
	TotalRevenue        float64        `json:"totalRevenue"`
	TotalProductionCost float64        `json:"totalProductionCost"`
	TotalPackagingCost  float64        `json:"totalPackagingCost"`
	TotalCost           float64        `json:"totalCost"`
	TotalProfit         float64        `json:"totalProfit"`
	TopProducts         []TopProduct   `json:"topProducts"`
	DailyStats          []DailyStat    `json:"dailyStats"`
	Sales               []SaleResponse `json:"sales"`
}

// SalesStats summarizes recent sales for the dashboard
type SalesStats struct {
	Count        int64   `json:"count"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// DashboardResponse represents the landing page
type DashboardResponse struct {
	Filaments      []FilamentResponse `json:"filaments"`
	RecentProjects []ProjectResponse  `json:"recentProjects"`
	ProjectStats   ProjectStats       `json:"projectStats"`
	SalesStats     SalesStats         `json:"salesStats"`
}
