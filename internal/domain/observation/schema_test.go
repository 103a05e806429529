package observation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func minimalSchema() *Schema {
	return &Schema{
		SchemaVersion: "1",
		ModelVersion:  "2024.1",
		Labels:        []string{"Healthy", "Rust"},
		Fields: []FieldSpec{
			{Name: "crop_type", Kind: KindCategorical, Allowed: []string{"Corn", "Tomato"}, VectorPosition: 0},
			{Name: "soil_ph", Kind: KindFloat, Min: f64(5.5), Max: f64(8.0), VectorPosition: 1},
			{Name: "lesion_present", Kind: KindBoolean, VectorPosition: 2},
		},
	}
}

func TestSchemaValidate_OK(t *testing.T) {
	assert.NoError(t, minimalSchema().Validate())
}

func TestSchemaValidate_MissingModelVersion(t *testing.T) {
	s := minimalSchema()
	s.ModelVersion = ""
	assert.Error(t, s.Validate())
}

func TestSchemaValidate_DuplicatePosition(t *testing.T) {
	s := minimalSchema()
	s.Fields[1].VectorPosition = 0
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate vector_position")
}

func TestSchemaValidate_PositionGap(t *testing.T) {
	s := minimalSchema()
	s.Fields[2].VectorPosition = 5
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestSchemaValidate_DuplicateField(t *testing.T) {
	s := minimalSchema()
	s.Fields[1].Name = "crop_type"
	assert.Error(t, s.Validate())
}

func TestSchemaValidate_UnknownFieldName(t *testing.T) {
	s := minimalSchema()
	s.Fields[1].Name = "stem_diameter_mm"
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no observation counterpart")
}

func TestSchemaValidate_DuplicateLabel(t *testing.T) {
	s := minimalSchema()
	s.Labels = []string{"Rust", "Rust"}
	assert.Error(t, s.Validate())
}

func TestSchemaValidate_CategoricalWithoutAllowed(t *testing.T) {
	s := minimalSchema()
	s.Fields[0].Allowed = nil
	assert.Error(t, s.Validate())
}

func TestSchemaValidate_DuplicateAllowedValue(t *testing.T) {
	s := minimalSchema()
	s.Fields[0].Allowed = []string{"Corn", "Corn"}
	assert.Error(t, s.Validate())
}

func TestSchemaValidate_MinAboveMax(t *testing.T) {
	s := minimalSchema()
	s.Fields[1].Min = f64(9)
	assert.Error(t, s.Validate())
}

func TestSchemaValidate_UnknownKind(t *testing.T) {
	s := minimalSchema()
	s.Fields[1].Kind = "decimal"
	assert.Error(t, s.Validate())
}

func TestLoadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	doc := `{
		"schema_version": "1",
		"model_version": "2024.1",
		"labels": ["Healthy", "Rust"],
		"fields": [
			{"name": "crop_type", "kind": "categorical", "allowed": ["Corn", "Tomato"], "vector_position": 0},
			{"name": "soil_ph", "kind": "float", "min": 5.5, "max": 8.0, "vector_position": 1},
			{"name": "lesion_present", "kind": "boolean", "vector_position": 2}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := LoadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, "2024.1", s.ModelVersion)
	assert.Equal(t, 3, s.VectorLength())

	f, ok := s.Field("soil_ph")
	require.True(t, ok)
	assert.Equal(t, KindFloat, f.Kind)
	assert.Equal(t, 5.5, *f.Min)
}

func TestLoadSchema_MissingFile(t *testing.T) {
	_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadSchema_InvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model_version": "1"}`), 0o644))

	_, err := LoadSchema(path)
	assert.Error(t, err)
}
