package record

import (
	"time"

	"github.com/google/uuid"

	"verdant/internal/domain/observation"
)

// HistoricalRecord is a stored prediction: the submitted observation plus
// the diagnosis the model produced for it. Records are immutable once
// created; the only permitted mutation is deletion.
type HistoricalRecord struct {
	ID                      uuid.UUID `json:"id" db:"id"`
	CropType                string    `json:"crop_type" db:"crop_type"`
	PlantAgeDays            int       `json:"plant_age_days" db:"plant_age_days"`
	LocationRegion          string    `json:"location_region" db:"location_region"`
	SoilPH                  float64   `json:"soil_ph" db:"soil_ph"`
	SoilMoisturePct         float64   `json:"soil_moisture_pct" db:"soil_moisture_pct"`
	AmbientTemperatureC     float64   `json:"ambient_temperature_c" db:"ambient_temperature_c"`
	AmbientHumidityPct      float64   `json:"ambient_humidity_pct" db:"ambient_humidity_pct"`
	LeafColor               string    `json:"leaf_color" db:"leaf_color"`
	LesionPresent           bool      `json:"lesion_present" db:"lesion_present"`
	LesionCount             int       `json:"lesion_count" db:"lesion_count"`
	SpotSizeMM              float64   `json:"spot_size_mm" db:"spot_size_mm"`
	NutrientDeficiencySigns string    `json:"nutrient_deficiency_signs" db:"nutrient_deficiency_signs"`
	PredictedDisease        string    `json:"predicted_disease" db:"predicted_disease"`
	Confidence              float64   `json:"confidence" db:"confidence"`
	CreatedAt               time.Time `json:"timestamp" db:"created_at"`
}

// New builds a record from an observation and its diagnosis outcome.
func New(obs *observation.Observation, predictedDisease string, confidence float64, at time.Time) *HistoricalRecord {
	return &HistoricalRecord{
		ID:                      uuid.New(),
		CropType:                obs.CropType,
		PlantAgeDays:            obs.PlantAgeDays,
		LocationRegion:          obs.LocationRegion,
		SoilPH:                  obs.SoilPH,
		SoilMoisturePct:         obs.SoilMoisturePct,
		AmbientTemperatureC:     obs.AmbientTemperatureC,
		AmbientHumidityPct:      obs.AmbientHumidityPct,
		LeafColor:               obs.LeafColor,
		LesionPresent:           obs.LesionPresent,
		LesionCount:             obs.LesionCount,
		SpotSizeMM:              obs.SpotSizeMM,
		NutrientDeficiencySigns: obs.NutrientDeficiencySigns,
		PredictedDisease:        predictedDisease,
		Confidence:              confidence,
		CreatedAt:               at.UTC(),
	}
}
