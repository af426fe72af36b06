package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/filacost/dto"
	"github.com/filacost/services"
	"github.com/gin-gonic/gin"
)

// SaleController handles sale-related API endpoints
type SaleController struct {
	saleService *services.SaleService
}

// NewSaleController creates a new sale controller
func NewSaleController() *SaleController {
	return &SaleController{
		saleService: services.NewSaleService(),
	}
}

// RegisterRoutes registers sale routes
func (c *SaleController) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/sales")
	{
		sales.GET("", c.SalesHistory)
		sales.POST("", c.CreateSale)
		sales.GET("/export", c.ExportSales)
		sales.DELETE("/:id", c.DeleteSale)
	}
}

func saleFilterFromQuery(ctx *gin.Context) dto.SaleFilter {
	return dto.SaleFilter{
		Period:   ctx.DefaultQuery("period", "all"),
		Search:   ctx.Query("search"),
		Customer: ctx.Query("customer"),
		Sort:     ctx.DefaultQuery("sort", "-sale_date"),
		Page:     queryInt(ctx, "page"),
	}
}

// SalesHistory godoc
// @Summary Filtered sales history with totals
// @Tags sales
// @Produce json
// @Param period query string false "today, week, month, year or all"
// @Param search query string false "Model name, code, customer name or phone"
// @Param customer query string false "Customer name"
// @Param sort query string false "Sort key, e.g. -sale_date, total_price"
// @Param page query int false "Page number"
// @Success 200 {object} dto.SaleHistoryResponse
// @Router /sales [get]
func (c *SaleController) SalesHistory(ctx *gin.Context) {
	history, err := c.saleService.SalesHistory(saleFilterFromQuery(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusOK, history)
}

// CreateSale godoc
// @Summary Record a sale
// @Tags sales
// @Accept json
// @Produce json
// @Param sale body dto.CreateSaleRequest true "Sale Data"
// @Success 201 {object} dto.SaleResponse
// @Router /sales [post]
func (c *SaleController) CreateSale(ctx *gin.Context) {
	var req dto.CreateSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondMessage(ctx, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	sale, err := c.saleService.CreateSale(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, http.StatusCreated, sale)
}

// DeleteSale removes a sale
func (c *SaleController) DeleteSale(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	if err := c.saleService.DeleteSale(id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Sale deleted successfully",
	})
}

// ExportSales streams the filtered history as an XLSX workbook
func (c *SaleController) ExportSales(ctx *gin.Context) {
	f, err := c.saleService.ExportSales(saleFilterFromQuery(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("sales_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(ctx.Writer); err != nil {
		slog.Error("Failed to write sales export", "error", err)
		respondMessage(ctx, http.StatusInternalServerError, "Failed to write Excel file")
	}
}
