package v1

import (
	"net/http"
	"strconv"

	"github.com/filacost/dto"
	"github.com/filacost/services"
	"github.com/gin-gonic/gin"
)

// ProjectController handles project-related API endpoints
type ProjectController struct {
	projectService *services.ProjectService
}

// NewProjectController creates a new project controller
func NewProjectController() *ProjectController {
	return &ProjectController{
		projectService: services.NewProjectService(),
	}
}

// RegisterRoutes registers project routes
func (c *ProjectController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", c.ListProjects)
		projects.GET("/:id", c.GetProject)
		projects.PUT("/:id", c.UpdateProject)
		projects.DELETE("/:id", c.DeleteProject)
	}

	// Projects are always created from a spool
	router.POST("/filaments/:id/projects", c.CreateProject)
}

// ListProjects godoc
// @Summary List projects with pagination and filtering
// @Tags projects
// @Produce json
// @Param q query string false "Search model name, code, filament name or color"
// @Param material query string false "Filament material"
// @Param filament query int false "Filament ID"
// @Param sort query string false "Sort key, e.g. -created_at, code, -profit"
// @Param view query string false "cards (12 per page) or list (25 per page)"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.ProjectListResponse
// @Router /projects [get]
func (c *ProjectController) ListProjects(ctx *gin.Context) {
	filter := dto.ProjectFilter{
		Search:   ctx.Query("q"),
		Material: ctx.Query("material"),
		Sort:     ctx.DefaultQuery("sort", "-created_at"),
		View:     ctx.DefaultQuery("view", "cards"),
		Page:     queryInt(ctx, "page"),
		PageSize: queryInt(ctx, "pageSize"),
	}

	// A malformed filament id is ignored
	if filamentID, err := strconv.ParseUint(ctx.Query("filament"), 10, 64); err == nil {
		filter.FilamentID = uint(filamentID)
	}

	response, err := c.projectService.ListProjects(filter)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, response)
}

// GetProject godoc
// @Summary Get a project by ID
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [get]
func (c *ProjectController) GetProject(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	project, err := c.projectService.GetProject(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, project)
}

// CreateProject godoc
// @Summary Record a print job on a spool
// @Description Fails with 422 when the spool has less filament left than the job uses
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Filament ID"
// @Param project body dto.ProjectRequest true "Project Data"
// @Success 201 {object} dto.ProjectResponse
// @Router /filaments/{id}/projects [post]
func (c *ProjectController) CreateProject(ctx *gin.Context) {
	filamentID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req dto.ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondMessage(ctx, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	project, err := c.projectService.CreateProject(filamentID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusCreated, project)
}

// UpdateProject godoc
// @Summary Edit a project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param project body dto.ProjectRequest true "Project Data"
// @Success 200 {object} dto.ProjectResponse
// @Router /projects/{id} [put]
func (c *ProjectController) UpdateProject(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req dto.ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondMessage(ctx, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	project, err := c.projectService.UpdateProject(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, project)
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Deletes its sales and returns its filament to the spool
// @Tags projects
// @Param id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /projects/{id} [delete]
func (c *ProjectController) DeleteProject(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	filamentID, err := c.projectService.DeleteProject(id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Project deleted and filament returned to stock",
		"data":    gin.H{"filamentId": filamentID},
	})
}
