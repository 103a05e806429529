package observation

import (
	"encoding/json"
	"os"

	"verdant/pkg/errors"
)

// FieldKind enumerates the value types a schema field can declare.
type FieldKind string

const (
	KindCategorical FieldKind = "categorical"
	KindInteger     FieldKind = "integer"
	KindFloat       FieldKind = "float"
	KindBoolean     FieldKind = "boolean"
)

// Valid checks if the field kind is known
func (k FieldKind) Valid() bool {
	switch k {
	case KindCategorical, KindInteger, KindFloat, KindBoolean:
		return true
	}
	return false
}

// FieldSpec describes one input field: its type, the allowed categorical
// values (ordered exactly as the model was trained — code = index), the
// soft numeric bounds, and its position in the feature vector.
type FieldSpec struct {
	Name           string    `json:"name"`
	Kind           FieldKind `json:"kind"`
	Allowed        []string  `json:"allowed,omitempty"`
	Min            *float64  `json:"min,omitempty"`
	Max            *float64  `json:"max,omitempty"`
	VectorPosition int       `json:"vector_position"`
}

// Schema is the versioned description of every input field plus the
// closed set of disease labels the model was trained on. It is loaded
// once at startup and never mutated; the version must match the model
// artifact or the service refuses to start.
type Schema struct {
	SchemaVersion string      `json:"schema_version"`
	ModelVersion  string      `json:"model_version"`
	Labels        []string    `json:"labels"`
	Fields        []FieldSpec `json:"fields"`
}

// LoadSchema reads and validates a feature schema document.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read feature schema %s", path)
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "failed to parse feature schema %s", path)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the structural invariants of the schema. Vector
// positions must form a contiguous 0-based permutation: a gap or a
// duplicate silently corrupts every prediction, so the schema is
// rejected outright.
func (s *Schema) Validate() error {
	if s.ModelVersion == "" {
		return errors.New("feature schema: model_version is required")
	}
	if len(s.Fields) == 0 {
		return errors.New("feature schema: no fields declared")
	}
	if len(s.Labels) == 0 {
		return errors.New("feature schema: no disease labels declared")
	}

	seenLabels := make(map[string]bool, len(s.Labels))
	for _, l := range s.Labels {
		if seenLabels[l] {
			return errors.Newf("feature schema: duplicate label %q", l)
		}
		seenLabels[l] = true
	}

	seenNames := make(map[string]bool, len(s.Fields))
	seenPos := make([]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return errors.New("feature schema: field with empty name")
		}
		if seenNames[f.Name] {
			return errors.Newf("feature schema: duplicate field %q", f.Name)
		}
		seenNames[f.Name] = true

		// Catch a schema/struct drift at load time rather than as a
		// per-request validation error.
		if _, known := (&Observation{}).value(f.Name); !known {
			return errors.Newf("feature schema: field %q has no observation counterpart", f.Name)
		}

		if !f.Kind.Valid() {
			return errors.Newf("feature schema: field %q has unknown kind %q", f.Name, f.Kind)
		}

		if f.Kind == KindCategorical {
			if len(f.Allowed) == 0 {
				return errors.Newf("feature schema: categorical field %q has no allowed values", f.Name)
			}
			seenVals := make(map[string]bool, len(f.Allowed))
			for _, v := range f.Allowed {
				if seenVals[v] {
					return errors.Newf("feature schema: field %q has duplicate allowed value %q", f.Name, v)
				}
				seenVals[v] = true
			}
		}

		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return errors.Newf("feature schema: field %q has min > max", f.Name)
		}

		if f.VectorPosition < 0 || f.VectorPosition >= len(s.Fields) {
			return errors.Newf("feature schema: field %q has vector_position %d out of range [0,%d)",
				f.Name, f.VectorPosition, len(s.Fields))
		}
		if seenPos[f.VectorPosition] {
			return errors.Newf("feature schema: duplicate vector_position %d (field %q)", f.VectorPosition, f.Name)
		}
		seenPos[f.VectorPosition] = true
	}

	return nil
}

// VectorLength returns the length of the encoded feature vector.
func (s *Schema) VectorLength() int {
	return len(s.Fields)
}

// Field returns the FieldSpec for a named field.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}
