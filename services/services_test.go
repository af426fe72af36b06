package services

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/filacost/database"
	"github.com/filacost/dto"
	"github.com/filacost/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func ptr[T interface{}](v T) *T {
	return &v
}

func createFilament(t *testing.T, meters, costPerKg float64) dto.FilamentResponse {
	t.Helper()
	f, err := NewFilamentService().CreateFilament(dto.CreateFilamentRequest{
		Name:          "Esun",
		Color:         "Black",
		Material:      models.MaterialPETG,
		InitialAmount: ptr(meters),
		CostPerKg:     ptr(costPerKg),
	})
	require.NoError(t, err)
	return f
}

func projectRequest(name string, usedMM float64) dto.ProjectRequest {
	return dto.ProjectRequest{
		ModelName:      name,
		FilamentUsedMM: usedMM,
		PrintHours:     2,
		PrintMinutes:   30,
		SizeX:          50,
		SizeY:          40,
		SizeZ:          30,
	}
}

func remaining(t *testing.T, filamentID uint) float64 {
	t.Helper()
	var f models.Filament
	require.NoError(t, database.DB.First(&f, filamentID).Error)
	return f.RemainingAmount
}

func TestCreateFilamentDefaults(t *testing.T) {
	setupTestDB(t)

	f, err := NewFilamentService().CreateFilament(dto.CreateFilamentRequest{Name: "Generic", Color: "White"})
	require.NoError(t, err)

	assert.Equal(t, models.MaterialPLAPlus, f.Material)
	assert.Equal(t, 330.0, f.InitialAmount)
	assert.Equal(t, 330.0, f.RemainingAmount)
	assert.Equal(t, 1500000.0, f.CostPerKg)
	assert.Equal(t, 100, f.UsagePercentage)

	_, err = NewFilamentService().CreateFilament(dto.CreateFilamentRequest{Name: "x", Color: "y", Material: "NYLON"})
	assert.ErrorIs(t, err, ErrInvalidMaterial)
}

func TestProjectCodesAreSequential(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 330, 1500000)
	svc := NewProjectService()

	for want := uint(1); want <= 3; want++ {
		p, err := svc.CreateProject(f.ID, projectRequest("Vase", 1000))
		require.NoError(t, err)
		assert.Equal(t, want, p.Code)
	}
}

func TestCreateProjectConsumesFilamentAndDeleteRestoresIt(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 330, 1500000)
	svc := NewProjectService()

	p, err := svc.CreateProject(f.ID, projectRequest("Benchy", 15000))
	require.NoError(t, err)
	assert.InDelta(t, 315, remaining(t, f.ID), 1e-9)
	assert.Equal(t, 15.0, p.FilamentUsedMeters)
	assert.InDelta(t, 2.5, p.PrintTimeHours, 1e-9)
	assert.Equal(t, 2, p.PrintHours)
	assert.Equal(t, 30, p.PrintMinutes)
	assert.Greater(t, p.TotalCost, 0.0)
	assert.InDelta(t, p.TotalCost*1.7, p.SellingPrice, 1e-6)
	assert.Equal(t, f.ID, p.Filament.ID)

	filamentID, err := svc.DeleteProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, filamentID)
	assert.InDelta(t, 330, remaining(t, f.ID), 1e-9)

	_, err = svc.GetProject(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProjectRejectsInsufficientFilament(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 10, 1500000)
	svc := NewProjectService()

	_, err := svc.CreateProject(f.ID, projectRequest("Helmet", 20000))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFilament)

	var insufficient *InsufficientFilamentError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 10.0, insufficient.Remaining)
	assert.Equal(t, 20.0, insufficient.Required)

	assert.Equal(t, 10.0, remaining(t, f.ID))
	var count int64
	require.NoError(t, database.DB.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateProjectUsesExactRemainder(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 10, 1500000)

	_, err := NewProjectService().CreateProject(f.ID, projectRequest("Exact", 10000))
	require.NoError(t, err)
	assert.Zero(t, remaining(t, f.ID))
}

func TestCreateProjectUnknownFilament(t *testing.T) {
	setupTestDB(t)

	_, err := NewProjectService().CreateProject(99, projectRequest("Ghost", 1000))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentCreatesNeverOverdraw(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 50, 1500000)
	svc := NewProjectService()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, rejected := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateProject(f.ID, projectRequest("Batch", 10000))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if errors.Is(err, ErrInsufficientFilament) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, created)
	assert.Equal(t, 3, rejected)
	assert.Zero(t, remaining(t, f.ID))
}

func TestUpdateProjectAppliesDelta(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 330, 1500000)
	svc := NewProjectService()

	p, err := svc.CreateProject(f.ID, projectRequest("Lamp", 15000))
	require.NoError(t, err)
	oldCost := p.TotalCost

	req := projectRequest("Lamp v2", 20000)
	req.PaintingEnabled = true
	updated, err := svc.UpdateProject(p.ID, req)
	require.NoError(t, err)

	assert.InDelta(t, 310, remaining(t, f.ID), 1e-9)
	assert.Equal(t, "Lamp v2", updated.ModelName)
	assert.Equal(t, p.Code, updated.Code)
	assert.Greater(t, updated.TotalCost, oldCost)
	assert.Greater(t, updated.PaintingCost, 0.0)

	updated, err = svc.UpdateProject(p.ID, projectRequest("Lamp v3", 5000))
	require.NoError(t, err)
	assert.InDelta(t, 325, remaining(t, f.ID), 1e-9)
	assert.Zero(t, updated.PaintingCost)
}

func TestUpdateProjectMayOverdraw(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 11, 1500000)
	svc := NewProjectService()

	p, err := svc.CreateProject(f.ID, projectRequest("Tall", 10000))
	require.NoError(t, err)

	_, err = svc.UpdateProject(p.ID, projectRequest("Taller", 15000))
	require.NoError(t, err)
	assert.InDelta(t, -4, remaining(t, f.ID), 1e-9)
}

func TestDeleteProjectRemovesSales(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 330, 1500000)
	p, err := NewProjectService().CreateProject(f.ID, projectRequest("Keychain", 2000))
	require.NoError(t, err)

	_, err = NewSaleService().CreateSale(dto.CreateSaleRequest{ProjectID: ptr(p.ID), Quantity: 2, UnitPrice: 30000})
	require.NoError(t, err)

	_, err = NewProjectService().DeleteProject(p.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, database.DB.Model(&models.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListProjects(t *testing.T) {
	setupTestDB(t)
	petg := createFilament(t, 330, 1500000)
	pla, err := NewFilamentService().CreateFilament(dto.CreateFilamentRequest{
		Name: "Sunlu", Color: "Red", Material: models.MaterialPLA,
	})
	require.NoError(t, err)

	svc := NewProjectService()
	for _, name := range []string{"Dragon", "Cat", "Dog"} {
		_, err := svc.CreateProject(petg.ID, projectRequest(name, 1000))
		require.NoError(t, err)
	}
	_, err = svc.CreateProject(pla.ID, projectRequest("Red Dragon", 1000))
	require.NoError(t, err)

	all, err := svc.ListProjects(dto.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.TotalCount)
	assert.Equal(t, 12, all.PageSize)
	assert.Equal(t, "-created_at", all.Sort)
	assert.Len(t, all.Filaments, 2)
	assert.Equal(t, models.Materials, all.Materials)

	list, err := svc.ListProjects(dto.ProjectFilter{View: "list"})
	require.NoError(t, err)
	assert.Equal(t, 25, list.PageSize)

	search, err := svc.ListProjects(dto.ProjectFilter{Search: "dragon"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), search.TotalCount)

	byColor, err := svc.ListProjects(dto.ProjectFilter{Search: "red"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byColor.TotalCount)

	byMaterial, err := svc.ListProjects(dto.ProjectFilter{Material: string(models.MaterialPETG)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), byMaterial.TotalCount)

	byFilament, err := svc.ListProjects(dto.ProjectFilter{FilamentID: pla.ID})
	require.NoError(t, err)
	require.Len(t, byFilament.Projects, 1)
	assert.Equal(t, "Red Dragon", byFilament.Projects[0].ModelName)

	byCode, err := svc.ListProjects(dto.ProjectFilter{Sort: "code", PageSize: 2, Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 2, byCode.Page)
	assert.Equal(t, 2, byCode.TotalPages)
	require.Len(t, byCode.Projects, 2)
	assert.Equal(t, uint(3), byCode.Projects[0].Code)

	badSort, err := svc.ListProjects(dto.ProjectFilter{Sort: "; DROP TABLE projects"})
	require.NoError(t, err)
	assert.Equal(t, "-created_at", badSort.Sort)
}

func TestDeleteFilamentInUse(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 330, 1500000)
	_, err := NewProjectService().CreateProject(f.ID, projectRequest("Gear", 1000))
	require.NoError(t, err)

	err = NewFilamentService().DeleteFilament(f.ID)
	assert.ErrorIs(t, err, ErrFilamentInUse)
	var inUse *FilamentInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, int64(1), inUse.Projects)

	unused := createFilament(t, 330, 1500000)
	require.NoError(t, NewFilamentService().DeleteFilament(unused.ID))
	assert.ErrorIs(t, NewFilamentService().DeleteFilament(unused.ID), ErrNotFound)
}

func TestUpdateFilamentRevision(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 330, 1500000)
	svc := NewFilamentService()

	req := dto.UpdateFilamentRequest{
		Name:          "Esun",
		Color:         "Blue",
		Material:      models.MaterialPETG,
		InitialAmount: 330,
		CostPerKg:     1800000,
		Revision:      ptr(f.Revision),
	}
	updated, err := svc.UpdateFilament(f.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Blue", updated.Color)
	assert.Equal(t, 330.0, updated.RemainingAmount)
	assert.Equal(t, f.Revision+1, updated.Revision)

	// The stale revision no longer matches
	_, err = svc.UpdateFilament(f.ID, req)
	assert.ErrorIs(t, err, ErrRevisionConflict)

	req.Revision = nil
	req.RemainingAmount = ptr(100.0)
	updated, err = svc.UpdateFilament(f.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.RemainingAmount)
}

func TestGetFilamentDetail(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 330, 1500000)
	svc := NewProjectService()
	a, err := svc.CreateProject(f.ID, projectRequest("A", 1000))
	require.NoError(t, err)
	b, err := svc.CreateProject(f.ID, projectRequest("B", 3000))
	require.NoError(t, err)

	detail, err := NewFilamentService().GetFilamentDetail(f.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Projects, 2)
	assert.Equal(t, int64(2), detail.Stats.Count)
	assert.InDelta(t, a.TotalCost+b.TotalCost, detail.Stats.TotalCost, 1e-6)
	assert.InDelta(t, a.Profit+b.Profit, detail.Stats.Profit, 1e-6)
	assert.InDelta(t, (a.Profit+b.Profit)/2, detail.Stats.AvgProfit, 1e-6)
	assert.InDelta(t, 326, detail.Filament.RemainingAmount, 1e-9)
}

func TestCreateSale(t *testing.T) {
	setupTestDB(t)
	f := createFilament(t, 330, 1500000)
	p, err := NewProjectService().CreateProject(f.ID, projectRequest("Planter", 5000))
	require.NoError(t, err)
	svc := NewSaleService()

	sale, err := svc.CreateSale(dto.CreateSaleRequest{
		ProjectCode:   ptr(p.Code),
		Quantity:      3,
		CustomerName:  "Dana",
		UnitPrice:     40000,
		PackagingCost: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, sale.ProjectID)
	assert.Equal(t, p.Code, sale.ProjectCode)
	assert.Equal(t, 122000.0, sale.TotalPrice)
	assert.InDelta(t, (40000-p.TotalCost)*3, sale.TotalProfit, 1e-6)
	assert.False(t, sale.SaleDate.IsZero())

	// Sales never touch stock
	assert.InDelta(t, 325, remaining(t, f.ID), 1e-9)

	_, err = svc.CreateSale(dto.CreateSaleRequest{ProjectCode: ptr(uint(999)), Quantity: 1})
	assert.ErrorIs(t, err, ErrProjectCodeNotFound)

	_, err = svc.CreateSale(dto.CreateSaleRequest{Quantity: 1})
	assert.ErrorIs(t, err, ErrProjectRequired)

	// The id wins over the code
	byID, err := svc.CreateSale(dto.CreateSaleRequest{ProjectID: ptr(p.ID), ProjectCode: ptr(uint(999)), Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, p.ID, byID.ProjectID)

	require.NoError(t, svc.DeleteSale(byID.ID))
	assert.ErrorIs(t, svc.DeleteSale(byID.ID), ErrNotFound)
}

func seedSales(t *testing.T, now time.Time) (models.Project, models.Project) {
	t.Helper()
	f := createFilament(t, 330, 1500000)
	svc := NewProjectService()
	vaseResp, err := svc.CreateProject(f.ID, projectRequest("Vase", 5000))
	require.NoError(t, err)
	owlResp, err := svc.CreateProject(f.ID, projectRequest("Owl", 2000))
	require.NoError(t, err)
	vase, owl := vaseResp.Project, owlResp.Project

	sales := []models.Sale{
		{ProjectID: vase.ID, Quantity: 2, UnitPrice: 50000, CustomerName: "Alice", SaleDate: now.Add(-time.Hour)},
		{ProjectID: vase.ID, Quantity: 1, UnitPrice: 55000, PackagingCost: 3000, CustomerName: "Bob", SaleDate: now.AddDate(0, 0, -3)},
		{ProjectID: owl.ID, Quantity: 4, UnitPrice: 20000, CustomerName: "Alice", CustomerPhone: "0912", SaleDate: now.AddDate(0, 0, -3)},
		{ProjectID: owl.ID, Quantity: 1, UnitPrice: 20000, SaleDate: now.AddDate(0, 0, -100)},
	}
	for i := range sales {
		require.NoError(t, database.DB.Omit(clause.Associations).Create(&sales[i]).Error)
	}
	return vase, owl
}

func TestSalesHistory(t *testing.T) {
	setupTestDB(t)
	now := time.Now()
	vase, owl := seedSales(t, now)
	svc := NewSaleService()
	svc.now = func() time.Time { return now }

	all, err := svc.SalesHistory(dto.SaleFilter{})
	require.NoError(t, err)
	assert.Equal(t, "all", all.Period)
	assert.Equal(t, "-sale_date", all.Sort)
	assert.Equal(t, int64(4), all.Totals.Count)
	assert.Equal(t, int64(8), all.Totals.Quantity)
	assert.InDelta(t, 100000+58000+80000+20000, all.Totals.Revenue, 1e-6)
	wantProfit := (50000-vase.TotalCost)*2 + (55000 - vase.TotalCost) + (20000-owl.TotalCost)*5
	assert.InDelta(t, wantProfit, all.Totals.Profit, 1e-6)
	assert.Equal(t, []string{"Alice", "Bob"}, all.Customers)
	require.Len(t, all.Sales, 4)
	assert.Equal(t, "Alice", all.Sales[0].CustomerName)
	assert.Equal(t, 1, all.TotalPages)

	week, err := svc.SalesHistory(dto.SaleFilter{Period: "week"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), week.Totals.Count)

	search, err := svc.SalesHistory(dto.SaleFilter{Search: "owl"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), search.Totals.Count)

	phone, err := svc.SalesHistory(dto.SaleFilter{Search: "0912"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), phone.Totals.Count)

	customer, err := svc.SalesHistory(dto.SaleFilter{Customer: "alice", Sort: "-total_price"})
	require.NoError(t, err)
	require.Len(t, customer.Sales, 2)
	assert.Equal(t, 100000.0, customer.Sales[0].TotalPrice)

	unknown, err := svc.SalesHistory(dto.SaleFilter{Period: "decade", Page: 7})
	require.NoError(t, err)
	assert.Equal(t, "all", unknown.Period)
	assert.Equal(t, 1, unknown.Page)
}

func TestExportSales(t *testing.T) {
	setupTestDB(t)
	now := time.Now()
	seedSales(t, now)

	f, err := NewSaleService().ExportSales(dto.SaleFilter{Period: "all"})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sales"}, f.GetSheetList())
	rows, err := f.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Profit", rows[0][9])
}

func TestReport(t *testing.T) {
	setupTestDB(t)
	now := time.Now()
	vase, owl := seedSales(t, now)
	svc := NewReportService()
	svc.now = func() time.Time { return now }

	report, err := svc.Report("", "")
	require.NoError(t, err)
	assert.Equal(t, "month", report.Period)
	assert.Equal(t, int64(3), report.TotalSales)
	assert.InDelta(t, 100000+58000+80000, report.TotalRevenue, 1e-6)
	assert.InDelta(t, vase.TotalCost*3+owl.TotalCost*4, report.TotalProductionCost, 1e-6)
	assert.Equal(t, 3000.0, report.TotalPackagingCost)
	assert.InDelta(t, report.TotalProductionCost+3000, report.TotalCost, 1e-6)

	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, "Vase", report.TopProducts[0].ModelName)
	assert.Equal(t, int64(2), report.TopProducts[0].Count)
	assert.Equal(t, int64(3), report.TopProducts[0].TotalQuantity)

	require.NotEmpty(t, report.DailyStats)
	for i := 1; i < len(report.DailyStats); i++ {
		assert.Greater(t, report.DailyStats[i-1].Date, report.DailyStats[i].Date)
	}
	var dailyCount int64
	for _, d := range report.DailyStats {
		dailyCount += d.Count
	}
	assert.Equal(t, int64(3), dailyCount)

	filtered, err := svc.Report("all", "owl")
	require.NoError(t, err)
	assert.Equal(t, int64(2), filtered.TotalSales)
	require.Len(t, filtered.TopProducts, 1)
	assert.Equal(t, "Owl", filtered.TopProducts[0].ModelName)

	empty, err := svc.Report("week", "nothing")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalSales)
	assert.NotNil(t, empty.TopProducts)
	assert.Empty(t, empty.DailyStats)
}

func TestDashboard(t *testing.T) {
	setupTestDB(t)
	now := time.Now()
	seedSales(t, now)
	svc := NewReportService()
	svc.now = func() time.Time { return now }

	dash, err := svc.Dashboard()
	require.NoError(t, err)
	assert.Len(t, dash.Filaments, 1)
	assert.Len(t, dash.RecentProjects, 2)
	assert.Equal(t, int64(2), dash.ProjectStats.Count)
	assert.Equal(t, int64(3), dash.SalesStats.Count)
	assert.InDelta(t, 238000, dash.SalesStats.TotalRevenue, 1e-6)
}
