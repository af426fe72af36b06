package v1

import (
	"net/http"

	"github.com/filacost/dto"
	"github.com/filacost/services"
	"github.com/gin-gonic/gin"
)

// FilamentController handles filament-related API endpoints
type FilamentController struct {
	filamentService *services.FilamentService
}

// NewFilamentController creates a new filament controller
func NewFilamentController() *FilamentController {
	return &FilamentController{
		filamentService: services.NewFilamentService(),
	}
}

// RegisterRoutes registers filament routes
func (c *FilamentController) RegisterRoutes(router *gin.RouterGroup) {
	filaments := router.Group("/filaments")
	{
		filaments.GET("", c.ListFilaments)
		filaments.POST("", c.CreateFilament)
		filaments.GET("/:id", c.GetFilament)
		filaments.PUT("/:id", c.UpdateFilament)
		filaments.DELETE("/:id", c.DeleteFilament)
	}
}

// ListFilaments godoc
// @Summary List filament spools
// @Tags filaments
// @Produce json
// @Success 200 {array} dto.FilamentResponse
// @Router /filaments [get]
func (c *FilamentController) ListFilaments(ctx *gin.Context) {
	filaments, err := c.filamentService.ListFilaments()
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, filaments)
}

// CreateFilament godoc
// @Summary Add a filament spool
// @Tags filaments
// @Accept json
// @Produce json
// @Param filament body dto.CreateFilamentRequest true "Filament Data"
// @Success 201 {object} dto.FilamentResponse
// @Router /filaments [post]
func (c *FilamentController) CreateFilament(ctx *gin.Context) {
	var req dto.CreateFilamentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondMessage(ctx, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	filament, err := c.filamentService.CreateFilament(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusCreated, filament)
}

// GetFilament godoc
// @Summary Get a spool with its projects and their totals
// @Tags filaments
// @Produce json
// @Param id path int true "Filament ID"
// @Success 200 {object} dto.FilamentDetailResponse
// @Router /filaments/{id} [get]
func (c *FilamentController) GetFilament(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.filamentService.GetFilamentDetail(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, detail)
}

// UpdateFilament godoc
// @Summary Edit a spool
// @Description Fails with 409 when the spool changed since the given revision
// @Tags filaments
// @Accept json
// @Produce json
// @Param id path int true "Filament ID"
// @Param filament body dto.UpdateFilamentRequest true "Filament Data"
// @Success 200 {object} dto.FilamentResponse
// @Router /filaments/{id} [put]
func (c *FilamentController) UpdateFilament(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateFilamentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondMessage(ctx, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	filament, err := c.filamentService.UpdateFilament(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, filament)
}

// DeleteFilament godoc
// @Summary Delete a spool
// @Description Fails with 409 while any project references the spool
// @Tags filaments
// @Param id path int true "Filament ID"
// @Success 200 {object} map[string]interface{}
// @Router /filaments/{id} [delete]
func (c *FilamentController) DeleteFilament(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	if err := c.filamentService.DeleteFilament(id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Filament deleted successfully",
	})
}
