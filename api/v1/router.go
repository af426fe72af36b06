package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup) {
	NewReportController().RegisterRoutes(router)
	NewFilamentController().RegisterRoutes(router)
	NewProjectController().RegisterRoutes(router)
	NewSaleController().RegisterRoutes(router)
	NewPricingController().RegisterRoutes(router)
}
