package routes

import (
	v1 "github.com/filacost/api/v1"
	"github.com/filacost/config"
	"github.com/filacost/lib/license"
	"github.com/filacost/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every route behind the license gate
func SetupRoutes(router *gin.Engine, gate *license.Gate) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))
	router.Use(middleware.LicenseMiddleware(gate))

	// Public routes
	router.GET("/health", v1.HealthCheck)
	v1.NewLicenseController(gate).RegisterRoutes(router.Group(""))

	// Endpoints used by the project form
	pricing := v1.NewPricingController()
	router.GET("/api/settings/pricing.json", pricing.SettingsJSON)
	router.POST("/api/calculate_preview", pricing.CalculatePreview)
	router.POST("/calculate_preview", pricing.CalculatePreview)

	// API routes
	v1.RegisterRoutes(router.Group("/api/v1"))
}
