package observation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdant/pkg/errors"
)

// fullSchema mirrors the production feature layout: twelve fields with
// the categorical sets in trained (alphabetical) order.
func fullSchema() *Schema {
	return &Schema{
		SchemaVersion: "1",
		ModelVersion:  "2024.1",
		Labels:        []string{"Healthy", "Late_Blight", "Rust"},
		Fields: []FieldSpec{
			{Name: "crop_type", Kind: KindCategorical, Allowed: []string{"Corn", "Cotton", "Pepper", "Potato", "Rice", "Soybean", "Tomato", "Wheat"}, VectorPosition: 0},
			{Name: "plant_age_days", Kind: KindInteger, Min: f64(20), Max: f64(150), VectorPosition: 1},
			{Name: "location_region", Kind: KindCategorical, Allowed: []string{"Central", "East", "North", "Northeast", "Northwest", "South", "Southeast", "Southwest", "West"}, VectorPosition: 2},
			{Name: "soil_ph", Kind: KindFloat, Min: f64(5.5), Max: f64(8.0), VectorPosition: 3},
			{Name: "soil_moisture_pct", Kind: KindFloat, Min: f64(15), Max: f64(85), VectorPosition: 4},
			{Name: "ambient_temperature_c", Kind: KindFloat, Min: f64(15), Max: f64(38), VectorPosition: 5},
			{Name: "ambient_humidity_pct", Kind: KindFloat, Min: f64(30), Max: f64(95), VectorPosition: 6},
			{Name: "leaf_color", Kind: KindCategorical, Allowed: []string{"Brown", "Dark_Green", "Green", "Light_Green", "Pale_Green", "Yellow", "Yellow_Green"}, VectorPosition: 7},
			{Name: "lesion_present", Kind: KindBoolean, VectorPosition: 8},
			{Name: "lesion_count", Kind: KindInteger, Min: f64(0), Max: f64(25), VectorPosition: 9},
			{Name: "spot_size_mm", Kind: KindFloat, Min: f64(0), Max: f64(15), VectorPosition: 10},
			{Name: "nutrient_deficiency_signs", Kind: KindCategorical, Allowed: []string{"Calcium", "Iron", "Magnesium", "Nitrogen", "None", "Phosphorus", "Potassium"}, VectorPosition: 11},
		},
	}
}

func tomatoObservation() *Observation {
	return &Observation{
		CropType:                "Tomato",
		PlantAgeDays:            75,
		LocationRegion:          "Central",
		SoilPH:                  6.8,
		SoilMoisturePct:         55.0,
		AmbientTemperatureC:     28.0,
		AmbientHumidityPct:      80.0,
		LeafColor:               "Yellow",
		LesionPresent:           true,
		LesionCount:             15,
		SpotSizeMM:              8.5,
		NutrientDeficiencySigns: "Nitrogen",
	}
}

func TestEncode_FullVector(t *testing.T) {
	schema := fullSchema()
	require.NoError(t, schema.Validate())
	enc := NewEncoder(schema)

	vector, warnings, err := enc.Encode(tomatoObservation())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Categorical codes are indices into the trained ordering; numerics
	// pass through unchanged; the boolean maps to 1.0.
	expected := []float64{6, 75, 0, 6.8, 55.0, 28.0, 80.0, 5, 1.0, 15, 8.5, 3}
	assert.Equal(t, expected, vector)
}

func TestEncode_Deterministic(t *testing.T) {
	enc := NewEncoder(fullSchema())
	obs := tomatoObservation()

	first, _, err := enc.Encode(obs)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, _, err := enc.Encode(obs)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncode_UnknownCrop(t *testing.T) {
	enc := NewEncoder(fullSchema())
	obs := tomatoObservation()
	obs.CropType = "Banana"

	_, _, err := enc.Encode(obs)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownCategory)

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "crop_type", verr.Field)
	assert.Equal(t, "Banana", verr.Value)
}

func TestEncode_EmptyCategorical(t *testing.T) {
	enc := NewEncoder(fullSchema())
	obs := tomatoObservation()
	obs.LeafColor = ""

	_, _, err := enc.Encode(obs)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)
}

func TestEncode_OutOfRangePassesThroughWithWarning(t *testing.T) {
	enc := NewEncoder(fullSchema())
	obs := tomatoObservation()
	obs.SoilPH = 9.4
	obs.AmbientTemperatureC = 5.0

	vector, warnings, err := enc.Encode(obs)
	require.NoError(t, err)

	// Values are reported, never clipped.
	assert.Equal(t, 9.4, vector[3])
	assert.Equal(t, 5.0, vector[5])

	require.Len(t, warnings, 2)
	fields := []string{warnings[0].Field, warnings[1].Field}
	assert.Contains(t, fields, "soil_ph")
	assert.Contains(t, fields, "ambient_temperature_c")
}

func TestEncode_BooleanFalse(t *testing.T) {
	enc := NewEncoder(fullSchema())
	obs := tomatoObservation()
	obs.LesionPresent = false
	obs.LesionCount = 0
	obs.SpotSizeMM = 0

	vector, warnings, err := enc.Encode(obs)
	require.NoError(t, err)
	assert.Equal(t, 0.0, vector[8])
	assert.Empty(t, warnings)
}

func TestEncode_LesionConsistencyWarnings(t *testing.T) {
	enc := NewEncoder(fullSchema())
	obs := tomatoObservation()
	obs.LesionPresent = false
	// Contradictory measurements stay in the vector untouched.
	obs.LesionCount = 15
	obs.SpotSizeMM = 8.5

	vector, warnings, err := enc.Encode(obs)
	require.NoError(t, err)
	assert.Equal(t, 15.0, vector[9])
	assert.Equal(t, 8.5, vector[10])

	require.Len(t, warnings, 2)
	assert.Equal(t, "lesion_count", warnings[0].Field)
	assert.Equal(t, "spot_size_mm", warnings[1].Field)
}

func TestEncode_VectorLengthMatchesSchema(t *testing.T) {
	schema := fullSchema()
	enc := NewEncoder(schema)

	vector, _, err := enc.Encode(tomatoObservation())
	require.NoError(t, err)
	assert.Len(t, vector, schema.VectorLength())
}
