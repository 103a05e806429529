package ml

import (
	"encoding/json"
	"os"

	"verdant/internal/domain/observation"
	"verdant/pkg/errors"
)

// Manifest is the sidecar document shipped with the ONNX artifact. It
// carries the training metadata the runtime cannot read from the graph
// itself: the model version, the expected vector length, and the label
// set in output order.
type Manifest struct {
	ModelVersion string   `json:"model_version"`
	NumFeatures  int      `json:"num_features"`
	Labels       []string `json:"labels"`
}

// LoadManifest reads a model manifest document.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model manifest %s", path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse model manifest %s", path)
	}

	if m.ModelVersion == "" {
		return nil, errors.New("model manifest: model_version is required")
	}
	if m.NumFeatures <= 0 {
		return nil, errors.New("model manifest: num_features must be positive")
	}
	if len(m.Labels) == 0 {
		return nil, errors.New("model manifest: no labels")
	}

	return &m, nil
}

// CheckCompatibility verifies the manifest against the feature schema.
// The schema and the artifact are versioned together: a silent mismatch
// in version, vector length, or label set corrupts every prediction, so
// any disagreement refuses startup.
func (m *Manifest) CheckCompatibility(schema *observation.Schema) error {
	if m.ModelVersion != schema.ModelVersion {
		return errors.Wrapf(errors.ErrSchemaMismatch,
			"manifest model_version %q != schema model_version %q", m.ModelVersion, schema.ModelVersion)
	}
	if m.NumFeatures != schema.VectorLength() {
		return errors.Wrapf(errors.ErrSchemaMismatch,
			"manifest expects %d features, schema encodes %d", m.NumFeatures, schema.VectorLength())
	}
	if len(m.Labels) != len(schema.Labels) {
		return errors.Wrapf(errors.ErrSchemaMismatch,
			"manifest has %d labels, schema declares %d", len(m.Labels), len(schema.Labels))
	}

	declared := make(map[string]bool, len(schema.Labels))
	for _, l := range schema.Labels {
		declared[l] = true
	}
	for _, l := range m.Labels {
		if !declared[l] {
			return errors.Wrapf(errors.ErrSchemaMismatch, "manifest label %q not declared in schema", l)
		}
	}

	return nil
}
