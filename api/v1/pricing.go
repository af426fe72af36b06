package v1

import (
	"errors"
	"net/http"

	"github.com/filacost/dto"
	"github.com/filacost/services"
	"github.com/gin-gonic/gin"
)

// PricingController handles the pricing settings and the live price preview
type PricingController struct {
	pricingService *services.PricingService
}

// NewPricingController creates a new pricing controller
func NewPricingController() *PricingController {
	return &PricingController{
		pricingService: services.NewPricingService(),
	}
}

// RegisterRoutes registers pricing settings routes
func (c *PricingController) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("/pricing", c.GetSettings)
		settings.PUT("/pricing", c.UpdateSettings)
	}
}

// GetSettings returns the stored coefficients
func (c *PricingController) GetSettings(ctx *gin.Context) {
	settings, err := c.pricingService.GetSettings()
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update pricing settings
// @Description confirm_apply must be true; omitted fields are kept
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body dto.UpdatePricingSettingsRequest true "Settings"
// @Success 200 {object} models.PricingSettings
// @Router /settings/pricing [put]
func (c *PricingController) UpdateSettings(ctx *gin.Context) {
	var req dto.UpdatePricingSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondMessage(ctx, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	settings, err := c.pricingService.UpdateSettings(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, settings)
}

// SettingsJSON returns the coefficients as bare JSON numbers
func (c *PricingController) SettingsJSON(ctx *gin.Context) {
	settings, err := c.pricingService.SettingsJSON()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, settings)
}

// CalculatePreview prices a project from unsaved form input
func (c *PricingController) CalculatePreview(ctx *gin.Context) {
	raw, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidPreviewInput.Error()})
		return
	}

	preview, err := c.pricingService.Preview(raw)
	if errors.Is(err, services.ErrInvalidPreviewInput) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, preview)
}
