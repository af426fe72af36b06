package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/filacost/config"
	"github.com/filacost/database"
	"github.com/filacost/lib/license"
	"github.com/filacost/models"
	"github.com/filacost/routes"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnv()

	// Set Gin mode
	gin.SetMode(config.GetEnv("GIN_MODE", gin.ReleaseMode))

	models.DefaultCostSettings = config.LoadCostSettings(models.DefaultCostSettings)

	database.Initialize()
	config.ConnectRedis()

	dataDir := config.DataDir()

	verifier, err := license.NewDefaultVerifier()
	if err != nil {
		slog.Error("Failed to load license public key", "error", err)
		os.Exit(1)
	}

	stateStore, err := license.OpenStateStore(filepath.Join(dataDir, "lic_state.sqlite3"))
	if err != nil {
		slog.Error("Failed to open license state", "error", err)
		os.Exit(1)
	}
	defer stateStore.Close()

	gate := license.NewGate(filepath.Join(dataDir, "license.lic"), verifier, stateStore)

	// Initialize router
	router := gin.Default()
	routes.SetupRoutes(router, gate)

	addr := config.GetEnv("APP_HOST", "127.0.0.1") + ":" + config.GetEnv("APP_PORT", "8765")
	slog.Info("Server starting", "addr", addr, "data_dir", dataDir, "license_state", gate.State())
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
