package services

import (
	"errors"
	"log/slog"

	"github.com/filacost/database"
	"github.com/filacost/dto"
	"github.com/filacost/models"
	"github.com/filacost/repositories"
	"gorm.io/gorm"
)

const (
	projectViewCards     = "cards"
	projectViewList      = "list"
	projectPageSizeCards = 12
	projectPageSizeList  = 25
	defaultProjectSort   = "-created_at"
)

// ProjectService handles business logic for projects and keeps filament
// stock in step with them
type ProjectService struct {
	projectRepo  *repositories.ProjectRepository
	filamentRepo *repositories.FilamentRepository
}

// NewProjectService creates a new project service instance
func NewProjectService() *ProjectService {
	return &ProjectService{
		projectRepo:  repositories.NewProjectRepository(),
		filamentRepo: repositories.NewFilamentRepository(),
	}
}

// ListProjects retrieves projects with pagination, filtering and sorting
func (s *ProjectService) ListProjects(filter dto.ProjectFilter) (dto.ProjectListResponse, error) {
	var response dto.ProjectListResponse

	if _, ok := repositories.ProjectSorts[filter.Sort]; !ok {
		filter.Sort = defaultProjectSort
	}

	if filter.View != projectViewList {
		filter.View = projectViewCards
	}

	if filter.PageSize <= 0 {
		filter.PageSize = projectPageSizeCards
		if filter.View == projectViewList {
			filter.PageSize = projectPageSizeList
		}
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}

	projects, totalCount, err := s.projectRepo.FindWithPagination(filter)
	if err != nil {
		return response, translate(err, "list projects")
	}

	totalPages := int(totalCount) / filter.PageSize
	if int(totalCount)%filter.PageSize > 0 {
		totalPages++
	}

	// Out-of-range pages show the last page
	if totalPages > 0 && filter.Page > totalPages {
		filter.Page = totalPages
		projects, totalCount, err = s.projectRepo.FindWithPagination(filter)
		if err != nil {
			return response, translate(err, "list projects")
		}
	}

	filaments, err := s.filamentRepo.FindAllByName()
	if err != nil {
		return response, translate(err, "list filaments")
	}
	filamentOptions := make([]dto.FilamentResponse, 0, len(filaments))
	for _, f := range filaments {
		filamentOptions = append(filamentOptions, dto.NewFilamentResponse(f))
	}

	response = dto.ProjectListResponse{
		Projects:   dto.NewProjectResponses(projects),
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
		Sort:       filter.Sort,
		Materials:  models.Materials,
		Filaments:  filamentOptions,
	}
	return response, nil
}

// GetProject retrieves a project with its filament
func (s *ProjectService) GetProject(id uint) (dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return dto.ProjectResponse{}, translate(err, "get project")
	}
	return dto.NewProjectResponse(project), nil
}

// CreateProject records a print job and takes its filament off the spool.
// Nothing is written when the spool has too little left.
func (s *ProjectService) CreateProject(filamentID uint, req dto.ProjectRequest) (dto.ProjectResponse, error) {
	filament, err := s.filamentRepo.FindByID(filamentID)
	if err != nil {
		return dto.ProjectResponse{}, translate(err, "get filament")
	}

	project := models.Project{
		FilamentID:            filament.ID,
		ModelName:             req.ModelName,
		FilamentUsedMM:        req.FilamentUsedMM,
		PrintTimeHours:        req.PrintTimeHours(),
		SizeX:                 req.SizeX,
		SizeY:                 req.SizeY,
		SizeZ:                 req.SizeZ,
		PostProcessingEnabled: req.PostProcessingEnabled,
		PaintingEnabled:       req.PaintingEnabled,
		Filament:              filament,
	}
	meters := project.FilamentUsedMeters()

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.filamentRepo.Consume(tx, filament.ID, meters)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientFilament
		}
		return s.projectRepo.Create(tx, &project)
	})
	if errors.Is(err, ErrInsufficientFilament) {
		remaining := filament.RemainingAmount
		if fresh, ferr := s.filamentRepo.FindByID(filament.ID); ferr == nil {
			remaining = fresh.RemainingAmount
		}
		slog.Warn("Project rejected, not enough filament",
			"filament_id", filament.ID, "remaining_m", remaining, "required_m", meters)
		return dto.ProjectResponse{}, &InsufficientFilamentError{Remaining: remaining, Required: meters}
	}
	if err != nil {
		return dto.ProjectResponse{}, translate(err, "create project")
	}

	slog.Info("Project created", "id", project.ID, "code", project.Code, "filament_id", filament.ID, "used_m", meters)
	return s.GetProject(project.ID)
}

// UpdateProject edits a project, recomputes its costs and moves the change in
// filament usage to the spool. Edits do not check availability, so the spool
// may go negative.
func (s *ProjectService) UpdateProject(id uint, req dto.ProjectRequest) (dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return dto.ProjectResponse{}, translate(err, "get project")
	}

	oldUsedMM := project.FilamentUsedMM

	project.ModelName = req.ModelName
	project.FilamentUsedMM = req.FilamentUsedMM
	project.PrintTimeHours = req.PrintTimeHours()
	project.SizeX = req.SizeX
	project.SizeY = req.SizeY
	project.SizeZ = req.SizeZ
	project.PostProcessingEnabled = req.PostProcessingEnabled
	project.PaintingEnabled = req.PaintingEnabled

	deltaMeters := (project.FilamentUsedMM - oldUsedMM) / 1000

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.projectRepo.Save(tx, &project); err != nil {
			return err
		}
		if deltaMeters == 0 {
			return nil
		}
		return s.filamentRepo.Adjust(tx, project.FilamentID, deltaMeters)
	})
	if err != nil {
		return dto.ProjectResponse{}, translate(err, "update project")
	}

	slog.Info("Project updated", "id", project.ID, "code", project.Code, "delta_m", deltaMeters)
	return s.GetProject(project.ID)
}

// DeleteProject removes a project with its sales and returns its filament to
// the spool. It returns the spool's id.
func (s *ProjectService) DeleteProject(id uint) (uint, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return 0, translate(err, "get project")
	}

	meters := project.FilamentUsedMeters()
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.filamentRepo.Adjust(tx, project.FilamentID, -meters); err != nil {
			return err
		}
		return s.projectRepo.Delete(tx, project.ID)
	})
	if err != nil {
		return 0, translate(err, "delete project")
	}

	slog.Info("Project deleted", "id", project.ID, "code", project.Code, "returned_m", meters)
	return project.FilamentID, nil
}
