package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/filacost/dto"
	"github.com/filacost/models"
	"github.com/filacost/repositories"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	salesPageSize     = 20
	defaultSaleSort   = "-sale_date"
	salesExportSheet  = "Sales"
	periodAll         = "all"
	periodToday       = "today"
	periodWeek        = "week"
	periodMonth       = "month"
	periodYear        = "year"
	recentSalesWindow = 30 * 24 * time.Hour
)

// periodStart returns the start of a rolling week, month or year window
func periodStart(period string, now time.Time) (time.Time, bool) {
	switch period {
	case periodWeek:
		return now.AddDate(0, 0, -7), true
	case periodMonth:
		return now.AddDate(0, 0, -30), true
	case periodYear:
		return now.AddDate(0, 0, -365), true
	}
	return time.Time{}, false
}

// SaleService handles business logic for sales
type SaleService struct {
	saleRepo    *repositories.SaleRepository
	projectRepo *repositories.ProjectRepository
	now         func() time.Time
}

// NewSaleService creates a new sale service instance
func NewSaleService() *SaleService {
	return &SaleService{
		saleRepo:    repositories.NewSaleRepository(),
		projectRepo: repositories.NewProjectRepository(),
		now:         time.Now,
	}
}

// CreateSale records a sale of a project given by id or, failing that, by code
func (s *SaleService) CreateSale(req dto.CreateSaleRequest) (dto.SaleResponse, error) {
	var project models.Project
	var err error

	switch {
	case req.ProjectID != nil:
		project, err = s.projectRepo.FindByID(*req.ProjectID)
		if err != nil {
			return dto.SaleResponse{}, translate(err, "get project")
		}
	case req.ProjectCode != nil:
		project, err = s.projectRepo.FindByCode(*req.ProjectCode)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SaleResponse{}, ErrProjectCodeNotFound
		}
		if err != nil {
			return dto.SaleResponse{}, translate(err, "get project")
		}
	default:
		return dto.SaleResponse{}, ErrProjectRequired
	}

	sale := models.Sale{
		ProjectID:     project.ID,
		Quantity:      req.Quantity,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		UnitPrice:     req.UnitPrice,
		PackagingCost: req.PackagingCost,
		Notes:         req.Notes,
		Project:       project,
	}
	if err := s.saleRepo.Create(&sale); err != nil {
		return dto.SaleResponse{}, translate(err, "create sale")
	}

	slog.Info("Sale recorded", "id", sale.ID, "project_code", sale.ProjectCode, "quantity", sale.Quantity, "total", sale.TotalPrice)
	return dto.NewSaleResponse(sale), nil
}

// DeleteSale removes a sale
func (s *SaleService) DeleteSale(id uint) error {
	if _, err := s.saleRepo.FindByID(id); err != nil {
		return translate(err, "get sale")
	}
	if err := s.saleRepo.Delete(id); err != nil {
		return translate(err, "delete sale")
	}
	slog.Info("Sale deleted", "id", id)
	return nil
}

// historyQuery normalizes the filter and turns it into a repository query
func (s *SaleService) historyQuery(filter *dto.SaleFilter) repositories.SaleQuery {
	if _, ok := repositories.SaleSorts[filter.Sort]; !ok {
		filter.Sort = defaultSaleSort
	}

	q := repositories.SaleQuery{
		Search:   filter.Search,
		Customer: filter.Customer,
		Sort:     filter.Sort,
	}

	now := s.now()
	if filter.Period == periodToday {
		y, m, d := now.Date()
		q.Since = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		q.Until = q.Since.AddDate(0, 0, 1)
	} else if since, ok := periodStart(filter.Period, now); ok {
		q.Since = since
	} else {
		filter.Period = periodAll
	}
	return q
}

// SalesHistory returns one page of filtered sales with totals over all matches
func (s *SaleService) SalesHistory(filter dto.SaleFilter) (dto.SaleHistoryResponse, error) {
	q := s.historyQuery(&filter)

	totals, err := s.saleRepo.Totals(q)
	if err != nil {
		return dto.SaleHistoryResponse{}, translate(err, "aggregate sales")
	}

	totalPages := int(totals.Count) / salesPageSize
	if int(totals.Count)%salesPageSize > 0 {
		totalPages++
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	sales, err := s.saleRepo.FindPage(q, page, salesPageSize)
	if err != nil {
		return dto.SaleHistoryResponse{}, translate(err, "list sales")
	}

	customers, err := s.saleRepo.Customers()
	if err != nil {
		return dto.SaleHistoryResponse{}, translate(err, "list customers")
	}

	return dto.SaleHistoryResponse{
		Sales:      dto.NewSaleResponses(sales),
		Totals:     totals,
		Customers:  customers,
		Period:     filter.Period,
		Sort:       filter.Sort,
		Page:       page,
		PageSize:   salesPageSize,
		TotalPages: totalPages,
	}, nil
}

// ExportSales writes every sale matching the filter into a workbook
func (s *SaleService) ExportSales(filter dto.SaleFilter) (*excelize.File, error) {
	q := s.historyQuery(&filter)
	sales, err := s.saleRepo.FindAll(q)
	if err != nil {
		return nil, translate(err, "list sales")
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(salesExportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []string{"Date", "Code", "Model", "Customer", "Phone", "Quantity", "Unit price", "Packaging", "Total", "Profit", "Notes"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(salesExportSheet, cell, header)
	}

	for i, sale := range sales {
		row := i + 2
		f.SetCellValue(salesExportSheet, fmt.Sprintf("A%d", row), sale.SaleDate.Format("2006-01-02 15:04"))
		f.SetCellValue(salesExportSheet, fmt.Sprintf("B%d", row), sale.ProjectCode)
		f.SetCellValue(salesExportSheet, fmt.Sprintf("C%d", row), sale.Project.ModelName)
		f.SetCellValue(salesExportSheet, fmt.Sprintf("D%d", row), sale.CustomerName)
		f.SetCellValue(salesExportSheet, fmt.Sprintf("E%d", row), sale.CustomerPhone)
		f.SetCellValue(salesExportSheet, fmt.Sprintf("F%d", row), sale.Quantity)
		f.SetCellValue(salesExportSheet, fmt.Sprintf("G%d", row), sale.UnitPrice)
		f.SetCellValue(salesExportSheet, fmt.Sprintf("H%d", row), sale.PackagingCost)
		f.SetCellValue(salesExportSheet, fmt.Sprintf("I%d", row), sale.TotalPrice)
		f.SetCellValue(salesExportSheet, fmt.Sprintf("J%d", row), sale.TotalProfit())
		f.SetCellValue(salesExportSheet, fmt.Sprintf("K%d", row), sale.Notes)
	}

	slog.Info("Sales exported", "rows", len(sales), "period", filter.Period)
	return f, nil
}
