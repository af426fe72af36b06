package services

import (
	"sort"
	"time"

	"github.com/filacost/dto"
	"github.com/filacost/repositories"
)

const (
	topProductsLimit = 10
	dailyStatsDays   = 30
	recentProjects   = 10
)

// ReportService builds the dashboard and the sales report
type ReportService struct {
	saleRepo     *repositories.SaleRepository
	projectRepo  *repositories.ProjectRepository
	filamentRepo *repositories.FilamentRepository
	now          func() time.Time
}

// NewReportService creates a new report service instance
func NewReportService() *ReportService {
	return &ReportService{
		saleRepo:     repositories.NewSaleRepository(),
		projectRepo:  repositories.NewProjectRepository(),
		filamentRepo: repositories.NewFilamentRepository(),
		now:          time.Now,
	}
}

// Dashboard returns the spools, the latest projects, committed cost totals
// and the sales of the last 30 days
func (s *ReportService) Dashboard() (dto.DashboardResponse, error) {
	filaments, err := s.filamentRepo.FindAll()
	if err != nil {
		return dto.DashboardResponse{}, translate(err, "list filaments")
	}
	filamentResponses := make([]dto.FilamentResponse, 0, len(filaments))
	for _, f := range filaments {
		filamentResponses = append(filamentResponses, dto.NewFilamentResponse(f))
	}

	projects, err := s.projectRepo.FindRecent(recentProjects)
	if err != nil {
		return dto.DashboardResponse{}, translate(err, "list recent projects")
	}

	projectStats, err := s.projectRepo.Stats(0)
	if err != nil {
		return dto.DashboardResponse{}, translate(err, "aggregate projects")
	}

	salesTotals, err := s.saleRepo.Totals(repositories.SaleQuery{Since: s.now().Add(-recentSalesWindow)})
	if err != nil {
		return dto.DashboardResponse{}, translate(err, "aggregate recent sales")
	}

	return dto.DashboardResponse{
		Filaments:      filamentResponses,
		RecentProjects: dto.NewProjectResponses(projects),
		ProjectStats:   projectStats,
		SalesStats: dto.SalesStats{
			Count:        salesTotals.Count,
			TotalRevenue: salesTotals.Revenue,
		},
	}, nil
}

// Report aggregates the sales of a period, optionally only for models whose
// name contains itemFilter. An empty period means the last month.
func (s *ReportService) Report(period, itemFilter string) (dto.ReportResponse, error) {
	if period == "" {
		period = periodMonth
	}

	q := repositories.SaleQuery{ModelName: itemFilter}
	if since, ok := periodStart(period, s.now()); ok {
		q.Since = since
	} else {
		period = periodAll
	}

	sales, err := s.saleRepo.FindAll(q)
	if err != nil {
		return dto.ReportResponse{}, translate(err, "list sales")
	}

	report := dto.ReportResponse{
		Period:     period,
		ItemFilter: itemFilter,
		TotalSales: int64(len(sales)),
		Sales:      dto.NewSaleResponses(sales),
	}

	daily := make(map[string]*dto.DailyStat)
	for _, sale := range sales {
		report.TotalRevenue += sale.TotalPrice
		report.TotalProductionCost += sale.Project.TotalCost * float64(sale.Quantity)
		report.TotalPackagingCost += sale.PackagingCost
		report.TotalProfit += sale.TotalProfit()

		day := sale.SaleDate.Local().Format("2006-01-02")
		stat, ok := daily[day]
		if !ok {
			stat = &dto.DailyStat{Date: day}
			daily[day] = stat
		}
		stat.Count++
		stat.Revenue += sale.TotalPrice
		stat.TotalQuantity += int64(sale.Quantity)
	}
	report.TotalCost = report.TotalProductionCost + report.TotalPackagingCost

	report.DailyStats = make([]dto.DailyStat, 0, len(daily))
	for _, stat := range daily {
		report.DailyStats = append(report.DailyStats, *stat)
	}
	sort.Slice(report.DailyStats, func(i, j int) bool {
		return report.DailyStats[i].Date > report.DailyStats[j].Date
	})
	if len(report.DailyStats) > dailyStatsDays {
		report.DailyStats = report.DailyStats[:dailyStatsDays]
	}

	report.TopProducts, err = s.saleRepo.TopProducts(q, topProductsLimit)
	if err != nil {
		return dto.ReportResponse{}, translate(err, "aggregate top products")
	}
	if report.TopProducts == nil {
		report.TopProducts = []dto.TopProduct{}
	}

	return report, nil
}
