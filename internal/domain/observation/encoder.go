package observation

import (
	"fmt"

	"verdant/pkg/errors"
)

// Warning flags a suspicious but non-fatal input value. Out-of-range
// numerics are reported, never clipped: clipping would misrepresent the
// input to the classifier and hide data-quality issues from later
// analysis.
type Warning struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Encoder turns a raw observation into the fixed-length numeric vector
// the classifier was trained on. It is built once from a schema and is
// safe for concurrent use; encoding is pure and deterministic.
type Encoder struct {
	schema  *Schema
	ordered []FieldSpec                // fields sorted by vector position
	codes   map[string]map[string]int // field name -> value -> label code
}

// NewEncoder precomputes the categorical code tables for a schema.
// The schema must already be validated.
func NewEncoder(schema *Schema) *Encoder {
	ordered := make([]FieldSpec, len(schema.Fields))
	codes := make(map[string]map[string]int, len(schema.Fields))

	for _, f := range schema.Fields {
		ordered[f.VectorPosition] = f
		if f.Kind == KindCategorical {
			table := make(map[string]int, len(f.Allowed))
			for i, v := range f.Allowed {
				table[v] = i
			}
			codes[f.Name] = table
		}
	}

	return &Encoder{
		schema:  schema,
		ordered: ordered,
		codes:   codes,
	}
}

// Schema returns the schema this encoder was built from.
func (e *Encoder) Schema() *Schema {
	return e.schema
}

// Encode produces the feature vector for an observation, in the exact
// order declared by the schema's vector positions. A categorical value
// outside the allowed set is a hard validation error; numeric values
// outside the declared soft bounds are passed through unchanged and
// reported as warnings.
func (e *Encoder) Encode(obs *Observation) ([]float64, []Warning, error) {
	vector := make([]float64, len(e.ordered))
	var warnings []Warning

	for i, f := range e.ordered {
		raw, ok := obs.value(f.Name)
		if !ok {
			return nil, nil, errors.NewValidationError(f.Name, "field not present on observation", nil, errors.ErrMissingField)
		}

		switch f.Kind {
		case KindCategorical:
			s, ok := raw.(string)
			if !ok {
				return nil, nil, errors.NewValidationError(f.Name, "expected a string value", raw, errors.ErrWrongType)
			}
			if s == "" {
				return nil, nil, errors.NewValidationError(f.Name, "required field is missing", s, errors.ErrMissingField)
			}
			code, ok := e.codes[f.Name][s]
			if !ok {
				return nil, nil, errors.NewValidationError(f.Name,
					fmt.Sprintf("value not in allowed set %v", f.Allowed), s, errors.ErrUnknownCategory)
			}
			vector[i] = float64(code)

		case KindInteger:
			n, ok := raw.(int)
			if !ok {
				return nil, nil, errors.NewValidationError(f.Name, "expected an integer value", raw, errors.ErrWrongType)
			}
			v := float64(n)
			if w := rangeWarning(f, v); w != nil {
				warnings = append(warnings, *w)
			}
			vector[i] = v

		case KindFloat:
			v, ok := raw.(float64)
			if !ok {
				return nil, nil, errors.NewValidationError(f.Name, "expected a numeric value", raw, errors.ErrWrongType)
			}
			if w := rangeWarning(f, v); w != nil {
				warnings = append(warnings, *w)
			}
			vector[i] = v

		case KindBoolean:
			b, ok := raw.(bool)
			if !ok {
				return nil, nil, errors.NewValidationError(f.Name, "expected a boolean value", raw, errors.ErrWrongType)
			}
			if b {
				vector[i] = 1.0
			}
		}
	}

	warnings = append(warnings, lesionConsistencyWarnings(obs)...)

	return vector, warnings, nil
}

// rangeWarning reports a numeric value outside the field's soft bounds.
// Biological observations can legitimately exceed them, so the value is
// accepted as-is.
func rangeWarning(f FieldSpec, v float64) *Warning {
	if f.Min != nil && v < *f.Min {
		return &Warning{
			Field:   f.Name,
			Message: fmt.Sprintf("value below typical range (min %g)", *f.Min),
			Value:   v,
		}
	}
	if f.Max != nil && v > *f.Max {
		return &Warning{
			Field:   f.Name,
			Message: fmt.Sprintf("value above typical range (max %g)", *f.Max),
			Value:   v,
		}
	}
	return nil
}

// lesionConsistencyWarnings flags lesion measurements that contradict
// lesion_present=false. The supplied values are never overridden; the
// encoder validates, it does not correct.
func lesionConsistencyWarnings(obs *Observation) []Warning {
	if obs.LesionPresent {
		return nil
	}

	var warnings []Warning
	if obs.LesionCount != 0 {
		warnings = append(warnings, Warning{
			Field:   "lesion_count",
			Message: "nonzero lesion count with lesion_present=false",
			Value:   obs.LesionCount,
		})
	}
	if obs.SpotSizeMM != 0 {
		warnings = append(warnings, Warning{
			Field:   "spot_size_mm",
			Message: "nonzero spot size with lesion_present=false",
			Value:   obs.SpotSizeMM,
		})
	}
	return warnings
}
