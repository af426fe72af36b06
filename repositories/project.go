package repositories

import (
	"strings"

	"github.com/filacost/database"
	"github.com/filacost/dto"
	"github.com/filacost/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectSorts maps the accepted sort keys to ORDER BY clauses
var ProjectSorts = map[string]string{
	"-created_at":       "projects.created_at DESC",
	"created_at":        "projects.created_at ASC",
	"-selling_price":    "projects.selling_price DESC",
	"selling_price":     "projects.selling_price ASC",
	"-print_time_hours": "projects.print_time_hours DESC",
	"print_time_hours":  "projects.print_time_hours ASC",
	"-code":             "projects.code DESC",
	"code":              "projects.code ASC",
	"-profit":           "(projects.selling_price - projects.total_cost) DESC",
	"profit":            "(projects.selling_price - projects.total_cost) ASC",
}

// ProjectRepository handles database operations for projects
type ProjectRepository struct{}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{}
}

// FindByID retrieves a project with its filament
func (r *ProjectRepository) FindByID(id uint) (models.Project, error) {
	var project models.Project
	result := database.DB.Preload("Filament").First(&project, id)
	return project, result.Error
}

// FindByCode retrieves a project by its human-facing code
func (r *ProjectRepository) FindByCode(code uint) (models.Project, error) {
	var project models.Project
	result := database.DB.Preload("Filament").Where("code = ?", code).First(&project)
	return project, result.Error
}

// FindByFilamentID retrieves all projects printed from a filament, newest first
func (r *ProjectRepository) FindByFilamentID(filamentID uint) ([]models.Project, error) {
	var projects []models.Project
	result := database.DB.Where("filament_id = ?", filamentID).Order("created_at DESC").Find(&projects)
	return projects, result.Error
}

// FindRecent retrieves the latest projects with their filaments
func (r *ProjectRepository) FindRecent(limit int) ([]models.Project, error) {
	var projects []models.Project
	result := database.DB.Preload("Filament").Order("created_at DESC").Limit(limit).Find(&projects)
	return projects, result.Error
}

// Create inserts a project inside tx; the code is assigned by the model hook
func (r *ProjectRepository) Create(tx *gorm.DB, project *models.Project) error {
	return tx.Omit(clause.Associations).Create(project).Error
}

// Save writes all project columns inside tx
func (r *ProjectRepository) Save(tx *gorm.DB, project *models.Project) error {
	return tx.Omit(clause.Associations).Save(project).Error
}

// Delete removes a project and its sales inside tx
func (r *ProjectRepository) Delete(tx *gorm.DB, id uint) error {
	if err := tx.Where("project_id = ?", id).Delete(&models.Sale{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Project{}, id).Error
}

// Stats aggregates committed costs, optionally limited to one filament
func (r *ProjectRepository) Stats(filamentID uint) (dto.ProjectStats, error) {
	var stats dto.ProjectStats
	db := database.DB.Model(&models.Project{})
	if filamentID != 0 {
		db = db.Where("filament_id = ?", filamentID)
	}
	err := db.Select(
		"COUNT(*) AS count, " +
			"COALESCE(SUM(total_cost), 0) AS total_cost, " +
			"COALESCE(SUM(selling_price), 0) AS total_selling, " +
			"COALESCE(SUM(filament_weight_used), 0) AS total_weight",
	).Scan(&stats).Error
	return stats, err
}

// FindWithPagination retrieves projects with pagination, filtering and sorting.
// filter.Sort must be a key of ProjectSorts.
func (r *ProjectRepository) FindWithPagination(filter dto.ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project
	var totalCount int64

	db := database.DB.Model(&models.Project{}).
		Joins("JOIN filaments ON filaments.id = projects.filament_id")

	// Search model name, code, filament name and color
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where(
			"(LOWER(projects.model_name) LIKE ? OR CAST(projects.code AS TEXT) LIKE ? OR "+
				"LOWER(filaments.name) LIKE ? OR LOWER(filaments.color) LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	if filter.Material != "" {
		db = db.Where("filaments.material = ?", filter.Material)
	}

	if filter.FilamentID != 0 {
		db = db.Where("projects.filament_id = ?", filter.FilamentID)
	}

	if err := db.Session(&gorm.Session{}).Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := db.Preload("Filament").
		Order(ProjectSorts[filter.Sort]).
		Limit(filter.PageSize).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, totalCount, nil
}
