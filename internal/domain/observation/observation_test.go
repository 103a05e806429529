package observation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdant/pkg/errors"
)

const validPayload = `{
	"crop_type": "Tomato",
	"plant_age_days": 75,
	"location_region": "Central",
	"soil_ph": 6.8,
	"soil_moisture_pct": 55.0,
	"ambient_temperature_c": 28.0,
	"ambient_humidity_pct": 80.0,
	"leaf_color": "Yellow",
	"lesion_present": true,
	"lesion_count": 15,
	"spot_size_mm": 8.5,
	"nutrient_deficiency_signs": "Nitrogen"
}`

func TestDecode_Valid(t *testing.T) {
	obs, err := Decode([]byte(validPayload))
	require.NoError(t, err)

	assert.Equal(t, "Tomato", obs.CropType)
	assert.Equal(t, 75, obs.PlantAgeDays)
	assert.Equal(t, 6.8, obs.SoilPH)
	assert.True(t, obs.LesionPresent)
	assert.Equal(t, "Nitrogen", obs.NutrientDeficiencySigns)
}

func TestDecode_MissingField(t *testing.T) {
	payload := `{"crop_type": "Tomato"}`

	_, err := Decode([]byte(payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "plant_age_days", verr.Field)
}

func TestDecode_NullField(t *testing.T) {
	// A null value must behave like an absent key, never like a zero.
	for _, field := range []string{"plant_age_days", "soil_ph", "crop_type", "lesion_present"} {
		payload := strings.Replace(validPayload, `"`+field+`": `, `"`+field+`": null, "ignored_`+field+`": `, 1)

		_, err := Decode([]byte(payload))
		require.Error(t, err, field)
		assert.ErrorIs(t, err, errors.ErrMissingField, field)

		var verr *errors.ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)
	}
}

func TestDecode_AllNumericFieldsNull(t *testing.T) {
	payload := `{
		"crop_type": "Tomato",
		"plant_age_days": null,
		"location_region": "Central",
		"soil_ph": null,
		"soil_moisture_pct": null,
		"ambient_temperature_c": null,
		"ambient_humidity_pct": null,
		"leaf_color": "Yellow",
		"lesion_present": true,
		"lesion_count": 15,
		"spot_size_mm": 8.5,
		"nutrient_deficiency_signs": "Nitrogen"
	}`

	_, err := Decode([]byte(payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "plant_age_days", verr.Field)
}

func TestDecode_WrongType(t *testing.T) {
	payload := `{
		"crop_type": "Tomato",
		"plant_age_days": "seventy-five",
		"location_region": "Central",
		"soil_ph": 6.8,
		"soil_moisture_pct": 55.0,
		"ambient_temperature_c": 28.0,
		"ambient_humidity_pct": 80.0,
		"leaf_color": "Yellow",
		"lesion_present": true,
		"lesion_count": 15,
		"spot_size_mm": 8.5,
		"nutrient_deficiency_signs": "Nitrogen"
	}`

	_, err := Decode([]byte(payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrWrongType)

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "plant_age_days", verr.Field)
}

func TestDecode_ExtraKeysIgnored(t *testing.T) {
	payload := validPayload[:len(validPayload)-2] + `, "notes": "north plot"}`

	obs, err := Decode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "Tomato", obs.CropType)
}

func TestDecode_NotAnObject(t *testing.T) {
	_, err := Decode([]byte(`[1, 2, 3]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
