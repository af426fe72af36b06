package config

import (
	"testing"
	"time"

	"github.com/filacost/models"
	"github.com/stretchr/testify/assert"
)

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "2.5")
	assert.Equal(t, 2.5, GetEnvFloat("TEST_FLOAT", 1))

	t.Setenv("TEST_FLOAT", "abc")
	assert.Equal(t, 1.0, GetEnvFloat("TEST_FLOAT", 1))

	assert.Equal(t, 3.0, GetEnvFloat("TEST_FLOAT_MISSING", 3))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_TTL", "90s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("TEST_TTL", time.Minute))

	t.Setenv("TEST_TTL", "soon")
	assert.Equal(t, time.Minute, GetEnvDuration("TEST_TTL", time.Minute))
}

func TestLoadCostSettings(t *testing.T) {
	t.Setenv("COST_PROFIT_MARGIN", "50")
	t.Setenv("COST_PRINTER_POWER_KW", "0.2")

	s := LoadCostSettings(models.DefaultCostSettings)
	assert.Equal(t, 50.0, s.ProfitMargin)
	assert.Equal(t, 0.2, s.PrinterPower)
	assert.Equal(t, models.DefaultCostSettings.FilamentDensity, s.FilamentDensity)
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("APP_PORT", "9000")
	assert.Equal(t, []string{"http://127.0.0.1:9000", "http://localhost:9000"}, AllowedOrigins())

	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, AllowedOrigins())
}

func TestDataDirFromEnv(t *testing.T) {
	dir := t.TempDir() + "/nested"
	t.Setenv("DATA_DIR", dir)
	assert.Equal(t, dir, DataDir())
	assert.DirExists(t, dir)
}
