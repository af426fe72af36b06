package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/filacost/models"
	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from .env file
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn(".env file not found, using system environment variables")
	}
}

// GetEnv gets an environment variable or returns a default value if not present
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvFloat parses a float environment variable, falling back on absence or parse error
func GetEnvFloat(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("Ignoring invalid numeric environment variable", "key", key, "value", value)
		return fallback
	}
	return f
}

// GetEnvDuration parses a duration such as "10m", falling back on absence or parse error
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Ignoring invalid duration environment variable", "key", key, "value", value)
		return fallback
	}
	return d
}

// AppName is used to build the per-user data directory
func AppName() string {
	return GetEnv("APP_NAME", "Calculator")
}

// DataDir returns the directory holding the database, license and license state.
// It is created if missing.
func DataDir() string {
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".local", "share", AppName())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("Failed to create data directory", "dir", dir, "error", err)
	}
	return dir
}

// LoadCostSettings overrides the committed-cost coefficients from COST_* variables
func LoadCostSettings(base models.CostSettings) models.CostSettings {
	return models.CostSettings{
		FilamentDiameter:           GetEnvFloat("COST_FILAMENT_DIAMETER", base.FilamentDiameter),
		FilamentDensity:            GetEnvFloat("COST_FILAMENT_DENSITY", base.FilamentDensity),
		ElectricityCostPerKWh:      GetEnvFloat("COST_ELECTRICITY_PER_KWH", base.ElectricityCostPerKWh),
		PrinterPower:               GetEnvFloat("COST_PRINTER_POWER_KW", base.PrinterPower),
		PrinterDepreciationPerHour: GetEnvFloat("COST_DEPRECIATION_PER_HOUR", base.PrinterDepreciationPerHour),
		PostProcessingBaseCost:     GetEnvFloat("COST_POST_PROCESSING_BASE", base.PostProcessingBaseCost),
		PaintingCostPerCM3:         GetEnvFloat("COST_PAINTING_PER_CM3", base.PaintingCostPerCM3),
		ProfitMargin:               GetEnvFloat("COST_PROFIT_MARGIN", base.ProfitMargin),
	}
}

// AllowedOrigins lists the CORS origins from CORS_ALLOWED_ORIGINS (comma separated),
// defaulting to the local server address
func AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(GetEnv("CORS_ALLOWED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		port := GetEnv("APP_PORT", "8765")
		origins = []string{"http://127.0.0.1:" + port, "http://localhost:" + port}
	}
	return origins
}
