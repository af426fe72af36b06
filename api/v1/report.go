package v1

import (
	"net/http"

	"github.com/filacost/services"
	"github.com/gin-gonic/gin"
)

// ReportController serves the dashboard and the sales report
type ReportController struct {
	reportService *services.ReportService
}

// NewReportController creates a new report controller
func NewReportController() *ReportController {
	return &ReportController{
		reportService: services.NewReportService(),
	}
}

// RegisterRoutes registers dashboard and report routes
func (c *ReportController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", c.Dashboard)
	router.GET("/reports", c.Report)
}

// Dashboard godoc
// @Summary Spools, latest projects and headline totals
// @Tags reports
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Router /dashboard [get]
func (c *ReportController) Dashboard(ctx *gin.Context) {
	dashboard, err := c.reportService.Dashboard()
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, dashboard)
}

// Report godoc
// @Summary Sales report
// @Tags reports
// @Produce json
// @Param period query string false "week, month (default), year or all"
// @Param item_filter query string false "Model name contains"
// @Success 200 {object} dto.ReportResponse
// @Router /reports [get]
func (c *ReportController) Report(ctx *gin.Context) {
	report, err := c.reportService.Report(ctx.DefaultQuery("period", "month"), ctx.Query("item_filter"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, report)
}
