package repositories

import (
	"strings"
	"time"

	"github.com/filacost/database"
	"github.com/filacost/dto"
	"github.com/filacost/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleSorts maps the accepted sort keys to ORDER BY clauses
var SaleSorts = map[string]string{
	"-sale_date":     "sales.sale_date DESC",
	"sale_date":      "sales.sale_date ASC",
	"-total_price":   "sales.total_price DESC",
	"total_price":    "sales.total_price ASC",
	"-quantity":      "sales.quantity DESC",
	"quantity":       "sales.quantity ASC",
	"customer_name":  "sales.customer_name ASC",
	"-customer_name": "sales.customer_name DESC",
}

// SaleQuery selects a subset of sales. Zero values disable a condition.
type SaleQuery struct {
	Since     time.Time
	Until     time.Time
	Search    string // model name, code, customer name or phone
	Customer  string
	ModelName string
	Sort      string // key of SaleSorts
}

// SaleRepository handles database operations for sales
type SaleRepository struct{}

// NewSaleRepository creates a new sale repository instance
func NewSaleRepository() *SaleRepository {
	return &SaleRepository{}
}

// FindByID retrieves a sale by its ID
func (r *SaleRepository) FindByID(id uint) (models.Sale, error) {
	var sale models.Sale
	result := database.DB.Preload("Project.Filament").First(&sale, id)
	return sale, result.Error
}

// Create inserts a sale; total price and code snapshot come from the model hook
func (r *SaleRepository) Create(sale *models.Sale) error {
	return database.DB.Omit(clause.Associations).Create(sale).Error
}

// Delete removes a sale
func (r *SaleRepository) Delete(id uint) error {
	return database.DB.Delete(&models.Sale{}, id).Error
}

func (r *SaleRepository) filtered(q SaleQuery) *gorm.DB {
	db := database.DB.Model(&models.Sale{}).
		Joins("JOIN projects ON projects.id = sales.project_id")

	if !q.Since.IsZero() {
		db = db.Where("sales.sale_date >= ?", q.Since)
	}
	if !q.Until.IsZero() {
		db = db.Where("sales.sale_date < ?", q.Until)
	}

	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		db = db.Where(
			"(LOWER(projects.model_name) LIKE ? OR CAST(sales.project_code AS TEXT) LIKE ? OR "+
				"LOWER(sales.customer_name) LIKE ? OR sales.customer_phone LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	if q.Customer != "" {
		db = db.Where("LOWER(sales.customer_name) LIKE ?", "%"+strings.ToLower(q.Customer)+"%")
	}

	if q.ModelName != "" {
		db = db.Where("LOWER(projects.model_name) LIKE ?", "%"+strings.ToLower(q.ModelName)+"%")
	}

	return db
}

func (r *SaleRepository) order(q SaleQuery) string {
	if order, ok := SaleSorts[q.Sort]; ok {
		return order
	}
	return SaleSorts["-sale_date"]
}

// Totals aggregates the matching sales. Profit is unit price minus the
// project's committed cost, times quantity.
func (r *SaleRepository) Totals(q SaleQuery) (dto.SaleTotals, error) {
	var totals dto.SaleTotals
	err := r.filtered(q).Select(
		"COUNT(*) AS count, " +
			"COALESCE(SUM(sales.total_price), 0) AS revenue, " +
			"COALESCE(SUM(sales.quantity), 0) AS quantity, " +
			"COALESCE(SUM((sales.unit_price - projects.total_cost) * sales.quantity), 0) AS profit",
	).Scan(&totals).Error
	return totals, err
}

// FindPage retrieves one page of matching sales with project and filament
func (r *SaleRepository) FindPage(q SaleQuery, page, pageSize int) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.filtered(q).
		Preload("Project.Filament").
		Order(r.order(q)).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&sales).Error
	return sales, err
}

// FindAll retrieves every matching sale with project and filament
func (r *SaleRepository) FindAll(q SaleQuery) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.filtered(q).
		Preload("Project.Filament").
		Order(r.order(q)).
		Find(&sales).Error
	return sales, err
}

// TopProducts groups matching sales by model name, most sales first
func (r *SaleRepository) TopProducts(q SaleQuery, limit int) ([]dto.TopProduct, error) {
	var products []dto.TopProduct
	err := r.filtered(q).
		Select("projects.model_name AS model_name, " +
			"COUNT(sales.id) AS count, " +
			"COALESCE(SUM(sales.total_price), 0) AS revenue, " +
			"COALESCE(SUM(sales.quantity), 0) AS total_quantity").
		Group("projects.model_name").
		Order("count DESC, projects.model_name ASC").
		Limit(limit).
		Scan(&products).Error
	return products, err
}

// Customers lists the distinct non-empty customer names
func (r *SaleRepository) Customers() ([]string, error) {
	var customers []string
	err := database.DB.Model(&models.Sale{}).
		Where("customer_name <> ''").
		Distinct().
		Order("customer_name ASC").
		Pluck("customer_name", &customers).Error
	return customers, err
}
