package observation

import (
	"bytes"
	"encoding/json"

	"verdant/pkg/errors"
)

// Observation is one structured plant-health data point submitted for
// diagnosis. Field names match the trained dataset columns exactly.
type Observation struct {
	CropType                string  `json:"crop_type"`
	PlantAgeDays            int     `json:"plant_age_days"`
	LocationRegion          string  `json:"location_region"`
	SoilPH                  float64 `json:"soil_ph"`
	SoilMoisturePct         float64 `json:"soil_moisture_pct"`
	AmbientTemperatureC     float64 `json:"ambient_temperature_c"`
	AmbientHumidityPct      float64 `json:"ambient_humidity_pct"`
	LeafColor               string  `json:"leaf_color"`
	LesionPresent           bool    `json:"lesion_present"`
	LesionCount             int     `json:"lesion_count"`
	SpotSizeMM              float64 `json:"spot_size_mm"`
	NutrientDeficiencySigns string  `json:"nutrient_deficiency_signs"`
}

// requiredFields lists every observation key a caller must supply.
var requiredFields = []string{
	"crop_type", "plant_age_days", "location_region", "soil_ph",
	"soil_moisture_pct", "ambient_temperature_c", "ambient_humidity_pct",
	"leaf_color", "lesion_present", "lesion_count", "spot_size_mm",
	"nutrient_deficiency_signs",
}

// Decode parses an observation from JSON, rejecting payloads with a
// missing required field or a value of the wrong type. Values are never
// defaulted: absence is an error, not a zero.
func Decode(data []byte) (*Observation, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "observation is not a JSON object")
	}

	for _, name := range requiredFields {
		value, ok := raw[name]
		if !ok {
			return nil, errors.NewValidationError(name, "required field is missing", nil, errors.ErrMissingField)
		}
		// A literal null unmarshals as a no-op, which would default the
		// field to its zero value. Reject it like an absent key.
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return nil, errors.NewValidationError(name, "required field is null", nil, errors.ErrMissingField)
		}
	}

	// Unknown extra keys are ignored, matching the lenient intake of the
	// record schema; only declared fields are validated and encoded.
	var obs Observation
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&obs); err != nil {
		if ute, ok := err.(*json.UnmarshalTypeError); ok {
			return nil, errors.NewValidationError(ute.Field, "value has wrong type", ute.Value, errors.ErrWrongType)
		}
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	return &obs, nil
}

// value returns the raw typed value for a schema field name.
func (o *Observation) value(name string) (interface{}, bool) {
	switch name {
	case "crop_type":
		return o.CropType, true
	case "plant_age_days":
		return o.PlantAgeDays, true
	case "location_region":
		return o.LocationRegion, true
	case "soil_ph":
		return o.SoilPH, true
	case "soil_moisture_pct":
		return o.SoilMoisturePct, true
	case "ambient_temperature_c":
		return o.AmbientTemperatureC, true
	case "ambient_humidity_pct":
		return o.AmbientHumidityPct, true
	case "leaf_color":
		return o.LeafColor, true
	case "lesion_present":
		return o.LesionPresent, true
	case "lesion_count":
		return o.LesionCount, true
	case "spot_size_mm":
		return o.SpotSizeMM, true
	case "nutrient_deficiency_signs":
		return o.NutrientDeficiencySigns, true
	}
	return nil, false
}
