package services

import (
	"log/slog"

	"github.com/filacost/dto"
	"github.com/filacost/models"
	"github.com/filacost/repositories"
)

// FilamentService handles business logic for filament spools
type FilamentService struct {
	filamentRepo *repositories.FilamentRepository
	projectRepo  *repositories.ProjectRepository
}

// NewFilamentService creates a new filament service instance
func NewFilamentService() *FilamentService {
	return &FilamentService{
		filamentRepo: repositories.NewFilamentRepository(),
		projectRepo:  repositories.NewProjectRepository(),
	}
}

// ListFilaments returns every spool with its derived values
func (s *FilamentService) ListFilaments() ([]dto.FilamentResponse, error) {
	filaments, err := s.filamentRepo.FindAll()
	if err != nil {
		return nil, translate(err, "list filaments")
	}
	response := make([]dto.FilamentResponse, 0, len(filaments))
	for _, f := range filaments {
		response = append(response, dto.NewFilamentResponse(f))
	}
	return response, nil
}

// CreateFilament adds a full spool
func (s *FilamentService) CreateFilament(req dto.CreateFilamentRequest) (dto.FilamentResponse, error) {
	material := req.Material
	if material == "" {
		material = models.MaterialPLAPlus
	}
	if !material.Valid() {
		return dto.FilamentResponse{}, ErrInvalidMaterial
	}

	initial := models.MetersPerKg
	if req.InitialAmount != nil {
		initial = *req.InitialAmount
	}
	costPerKg := float64(models.DefaultCostPerKg)
	if req.CostPerKg != nil {
		costPerKg = *req.CostPerKg
	}

	filament, err := s.filamentRepo.Create(models.Filament{
		Name:            req.Name,
		Color:           req.Color,
		Material:        material,
		InitialAmount:   initial,
		RemainingAmount: initial,
		CostPerKg:       costPerKg,
	})
	if err != nil {
		return dto.FilamentResponse{}, translate(err, "create filament")
	}

	slog.Info("Filament created", "id", filament.ID, "name", filament.Name, "meters", filament.InitialAmount)
	return dto.NewFilamentResponse(filament), nil
}

// GetFilamentDetail returns a spool, its projects and their aggregate costs
func (s *FilamentService) GetFilamentDetail(id uint) (dto.FilamentDetailResponse, error) {
	filament, err := s.filamentRepo.FindByID(id)
	if err != nil {
		return dto.FilamentDetailResponse{}, translate(err, "get filament")
	}

	projects, err := s.projectRepo.FindByFilamentID(id)
	if err != nil {
		return dto.FilamentDetailResponse{}, translate(err, "list filament projects")
	}

	totals, err := s.projectRepo.Stats(id)
	if err != nil {
		return dto.FilamentDetailResponse{}, translate(err, "aggregate filament projects")
	}

	stats := dto.FilamentProjectStats{
		Count:        totals.Count,
		TotalCost:    totals.TotalCost,
		TotalSelling: totals.TotalSelling,
		TotalWeight:  totals.TotalWeight,
		Profit:       totals.TotalSelling - totals.TotalCost,
	}
	if stats.Count > 0 {
		stats.AvgProfit = stats.Profit / float64(stats.Count)
	}

	return dto.FilamentDetailResponse{
		Filament: dto.NewFilamentResponse(filament),
		Projects: dto.NewProjectResponses(projects),
		Stats:    stats,
	}, nil
}

// UpdateFilament edits a spool. The write only succeeds if nobody changed the
// spool since the revision the caller saw (or since it was loaded here).
func (s *FilamentService) UpdateFilament(id uint, req dto.UpdateFilamentRequest) (dto.FilamentResponse, error) {
	if !req.Material.Valid() {
		return dto.FilamentResponse{}, ErrInvalidMaterial
	}

	current, err := s.filamentRepo.FindByID(id)
	if err != nil {
		return dto.FilamentResponse{}, translate(err, "get filament")
	}

	expected := current.Revision
	if req.Revision != nil {
		expected = *req.Revision
	}

	remaining := current.RemainingAmount
	if req.RemainingAmount != nil {
		remaining = *req.RemainingAmount
	}

	updated := current
	updated.Name = req.Name
	updated.Color = req.Color
	updated.Material = req.Material
	updated.InitialAmount = req.InitialAmount
	updated.RemainingAmount = remaining
	updated.CostPerKg = req.CostPerKg

	ok, err := s.filamentRepo.UpdateIfRevision(updated, expected)
	if err != nil {
		return dto.FilamentResponse{}, translate(err, "update filament")
	}
	if !ok {
		return dto.FilamentResponse{}, ErrRevisionConflict
	}

	filament, err := s.filamentRepo.FindByID(id)
	if err != nil {
		return dto.FilamentResponse{}, translate(err, "reload filament")
	}
	return dto.NewFilamentResponse(filament), nil
}

// DeleteFilament removes a spool that no project references
func (s *FilamentService) DeleteFilament(id uint) error {
	if _, err := s.filamentRepo.FindByID(id); err != nil {
		return translate(err, "get filament")
	}

	count, err := s.filamentRepo.CountProjects(id)
	if err != nil {
		return translate(err, "count filament projects")
	}
	if count > 0 {
		return &FilamentInUseError{Projects: count}
	}

	if err := s.filamentRepo.Delete(id); err != nil {
		return translate(err, "delete filament")
	}

	slog.Info("Filament deleted", "id", id)
	return nil
}
