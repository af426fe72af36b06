package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/filacost/config"
	"github.com/filacost/dto"
	"github.com/filacost/models"
	"github.com/filacost/repositories"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const pricingCacheKey = "pricing_settings:solo"

var (
	// Nominal weight of 1.75mm filament
	gramsPerMeter = decimal.RequireFromString("3.0")
	// Assumed average printer draw
	averageWatts = decimal.NewFromInt(120)

	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
	two      = decimal.NewFromInt(2)
)

// PricingService manages the pricing settings and computes live price previews
type PricingService struct {
	repo     *repositories.PricingSettingsRepository
	cacheTTL time.Duration
}

// NewPricingService creates a new pricing service instance
func NewPricingService() *PricingService {
	return &PricingService{
		repo:     repositories.NewPricingSettingsRepository(),
		cacheTTL: config.GetEnvDuration("PRICING_CACHE_TTL", 10*time.Minute),
	}
}

// GetSettings returns the settings row, from Redis when it is configured
func (s *PricingService) GetSettings() (models.PricingSettings, error) {
	if config.RDB != nil {
		cached, err := config.RDB.Get(config.Ctx, pricingCacheKey).Result()
		if err == nil {
			var settings models.PricingSettings
			if err := json.Unmarshal([]byte(cached), &settings); err == nil {
				return settings, nil
			}
			slog.Warn("Discarding unreadable cached pricing settings")
		} else if err != redis.Nil {
			slog.Warn("Pricing settings cache unavailable", "error", err)
		}
	}

	settings, err := s.repo.GetSolo()
	if err != nil {
		return models.PricingSettings{}, translate(err, "load pricing settings")
	}

	if config.RDB != nil {
		if data, err := json.Marshal(settings); err == nil {
			if err := config.RDB.Set(config.Ctx, pricingCacheKey, data, s.cacheTTL).Err(); err != nil {
				slog.Warn("Failed to cache pricing settings", "error", err)
			}
		}
	}
	return settings, nil
}

func (s *PricingService) invalidateCache() {
	if config.RDB == nil {
		return
	}
	if err := config.RDB.Del(config.Ctx, pricingCacheKey).Err(); err != nil {
		slog.Warn("Failed to invalidate pricing settings cache", "error", err)
	}
}

// UpdateSettings applies the given coefficients. Nothing is saved unless the
// request confirms the change.
func (s *PricingService) UpdateSettings(req dto.UpdatePricingSettingsRequest) (models.PricingSettings, error) {
	if !req.ConfirmApply {
		return models.PricingSettings{}, ErrConfirmationRequired
	}

	settings, err := s.repo.GetSolo()
	if err != nil {
		return models.PricingSettings{}, translate(err, "load pricing settings")
	}

	fields := []struct {
		name  string
		value *decimal.Decimal
		dest  *decimal.Decimal
	}{
		{"power_price_per_kwh", req.PowerPricePerKWh, &settings.PowerPricePerKWh},
		{"depreciation_per_hour", req.DepreciationPerHour, &settings.DepreciationPerHour},
		{"filament_waste_percent", req.FilamentWastePercent, &settings.FilamentWastePercent},
		{"packaging_cost", req.PackagingCost, &settings.PackagingCost},
		{"post_processing_rate", req.PostProcessingRate, &settings.PostProcessingRate},
		{"painting_rate_per_cm2", req.PaintingRatePerCM2, &settings.PaintingRatePerCM2},
		{"profit_percent", req.ProfitPercent, &settings.ProfitPercent},
		{"round_to_nearest", req.RoundToNearest, &settings.RoundToNearest},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if f.value.IsNegative() {
			return models.PricingSettings{}, fmt.Errorf("%w: %s must not be negative", ErrInvalidSettings, f.name)
		}
		*f.dest = *f.value
	}

	if settings.FilamentWastePercent.GreaterThan(hundred) {
		return models.PricingSettings{}, fmt.Errorf("%w: filament_waste_percent must not exceed 100", ErrInvalidSettings)
	}
	if !settings.RoundToNearest.IsZero() && settings.RoundToNearest.LessThan(decimal.NewFromInt(1)) {
		return models.PricingSettings{}, fmt.Errorf("%w: round_to_nearest must be 0 or at least 1", ErrInvalidSettings)
	}

	if err := s.repo.Save(&settings); err != nil {
		return models.PricingSettings{}, translate(err, "save pricing settings")
	}
	s.invalidateCache()

	slog.Info("Pricing settings updated",
		"profit_percent", settings.ProfitPercent.String(),
		"round_to_nearest", settings.RoundToNearest.String())
	return settings, nil
}

// SettingsJSON returns the coefficients as plain numbers
func (s *PricingService) SettingsJSON() (dto.PricingSettingsJSON, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return dto.PricingSettingsJSON{}, err
	}
	return dto.PricingSettingsJSON{
		PowerPricePerKWh:     settings.PowerPricePerKWh.InexactFloat64(),
		DepreciationPerHour:  settings.DepreciationPerHour.InexactFloat64(),
		FilamentWastePercent: settings.FilamentWastePercent.InexactFloat64(),
		PackagingCost:        settings.PackagingCost.InexactFloat64(),
		PostProcessingRate:   settings.PostProcessingRate.InexactFloat64(),
		PaintingRatePerCM2:   settings.PaintingRatePerCM2.InexactFloat64(),
		ProfitPercent:        settings.ProfitPercent.InexactFloat64(),
		RoundToNearest:       settings.RoundToNearest.InexactFloat64(),
		UpdatedAt:            settings.UpdatedAt.Format(time.RFC3339Nano),
	}, nil
}

// decodePreviewInput accepts exactly one JSON object
func decodePreviewInput(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil || data == nil {
		return nil, ErrInvalidPreviewInput
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrInvalidPreviewInput
	}
	return data, nil
}

// toDecimal reads numbers and numeric strings; anything else yields fallback
func toDecimal(v interface{}, fallback decimal.Decimal) decimal.Decimal {
	var text string
	switch t := v.(type) {
	case json.Number:
		text = t.String()
	case string:
		text = strings.TrimSpace(t)
	default:
		return fallback
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return fallback
	}
	return d
}

// truthy follows JSON truthiness: false, 0, "", null, [] and {} are false
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return err != nil || !d.IsZero()
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	}
	return true
}

// Preview estimates the cost and selling price of a project from raw form
// input and the current pricing settings. Nothing is persisted.
func (s *PricingService) Preview(raw []byte) (dto.PreviewResponse, error) {
	data, err := decodePreviewInput(raw)
	if err != nil {
		return dto.PreviewResponse{}, err
	}

	settings, err := s.GetSettings()
	if err != nil {
		return dto.PreviewResponse{}, err
	}

	return CalculatePreview(data, settings), nil
}

// CalculatePreview is the pure part of Preview
func CalculatePreview(data map[string]interface{}, settings models.PricingSettings) dto.PreviewResponse {
	usedMM := toDecimal(data["filament_used_mm"], decimal.Zero)
	hours := toDecimal(data["print_time_hours"], decimal.Zero)
	sizeX := toDecimal(data["size_x"], decimal.Zero)
	sizeY := toDecimal(data["size_y"], decimal.Zero)
	sizeZ := toDecimal(data["size_z"], decimal.Zero)
	costPerKg := toDecimal(data["filament_cost_per_kg"], decimal.Zero)
	postProcessing := truthy(data["post_processing_enabled"])
	painting := truthy(data["painting_enabled"])

	packaging := settings.PackagingCost
	if v, ok := data["packaging_cost"]; ok && v != nil {
		packaging = toDecimal(v, settings.PackagingCost)
	}

	// Weight from length, plus waste
	weight := usedMM.Div(thousand).Mul(gramsPerMeter)
	weight = weight.Mul(decimal.NewFromInt(1).Add(settings.FilamentWastePercent.Div(hundred)))

	material := weight.Div(thousand).Mul(costPerKg)
	electricity := averageWatts.Mul(hours).Div(thousand).Mul(settings.PowerPricePerKWh)
	depreciation := settings.DepreciationPerHour.Mul(hours)

	postCost := decimal.Zero
	if postProcessing {
		postCost = settings.PostProcessingRate
	}

	// Box surface in cm², sizes are mm
	surface := two.Mul(sizeX.Mul(sizeY).Add(sizeY.Mul(sizeZ)).Add(sizeX.Mul(sizeZ))).Div(hundred)
	paintCost := decimal.Zero
	if painting {
		paintCost = settings.PaintingRatePerCM2.Mul(surface)
	}

	total := material.Add(electricity).Add(depreciation).Add(postCost).Add(paintCost).Add(packaging)

	selling := total.Mul(decimal.NewFromInt(1).Add(settings.ProfitPercent.Div(hundred)))
	if step := settings.RoundToNearest; step.IsPositive() {
		selling = selling.Div(step).Round(0).Mul(step)
	}

	return dto.PreviewResponse{
		FilamentWeight:     weight.InexactFloat64(),
		MaterialCost:       material.InexactFloat64(),
		ElectricityCost:    electricity.InexactFloat64(),
		DepreciationCost:   depreciation.InexactFloat64(),
		PostProcessingCost: postCost.InexactFloat64(),
		PaintingCost:       paintCost.InexactFloat64(),
		TotalCost:          total.InexactFloat64(),
		SellingPrice:       selling.InexactFloat64(),
		GramsPerMeter:      gramsPerMeter.InexactFloat64(),
	}
}
