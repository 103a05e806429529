package ml

import (
	"sync/atomic"
	"time"

	"verdant/internal/domain/observation"
	"verdant/internal/domain/treatment"
	"verdant/pkg/errors"
)

// BundlePaths locates every artifact a bundle is assembled from.
type BundlePaths struct {
	ONNX       string
	Manifest   string
	Schema     string
	Treatments string
}

// Bundle is the immutable per-model configuration: feature schema,
// encoder, classifier, and treatment catalog, all validated against each
// other. A bundle is constructed once and never mutated; hot reload
// replaces the whole bundle through Holder.
type Bundle struct {
	Schema     *observation.Schema
	Encoder    *observation.Encoder
	Classifier Classifier
	Catalog    *treatment.Catalog
	Manifest   *Manifest
	LoadedAt   time.Time
}

// LoadBundle assembles and cross-validates a model bundle. Any missing
// artifact or version disagreement is a hard error: the service must
// refuse to serve rather than run with a mismatched model.
func LoadBundle(paths BundlePaths) (*Bundle, error) {
	schema, err := observation.LoadSchema(paths.Schema)
	if err != nil {
		return nil, err
	}

	manifest, err := LoadManifest(paths.Manifest)
	if err != nil {
		return nil, err
	}

	if err := manifest.CheckCompatibility(schema); err != nil {
		return nil, err
	}

	catalog, err := treatment.Load(paths.Treatments)
	if err != nil {
		return nil, err
	}

	model, err := LoadONNXModel(paths.ONNX, manifest.Labels)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModelUnavailable, err.Error())
	}

	return &Bundle{
		Schema:     schema,
		Encoder:    observation.NewEncoder(schema),
		Classifier: model,
		Catalog:    catalog,
		Manifest:   manifest,
		LoadedAt:   time.Now(),
	}, nil
}

// Close releases the bundle's classifier resources.
func (b *Bundle) Close() error {
	if b.Classifier != nil {
		return b.Classifier.Close()
	}
	return nil
}

// Holder publishes the current bundle to concurrent readers. Reload is
// an atomic pointer swap: in-flight inference sees either the old bundle
// or the new one, never a partially updated state.
type Holder struct {
	current atomic.Pointer[Bundle]
}

// NewHolder creates a holder, optionally seeded with a bundle. A nil
// bundle models a failed startup load: Current returns
// ErrModelUnavailable until a valid bundle is swapped in.
func NewHolder(b *Bundle) *Holder {
	h := &Holder{}
	if b != nil {
		h.current.Store(b)
	}
	return h
}

// Current returns the active bundle.
func (h *Holder) Current() (*Bundle, error) {
	b := h.current.Load()
	if b == nil {
		return nil, errors.ErrModelUnavailable
	}
	return b, nil
}

// Swap atomically replaces the active bundle and returns the previous
// one so the caller can close it after in-flight calls drain.
func (h *Holder) Swap(b *Bundle) *Bundle {
	return h.current.Swap(b)
}

// Healthy reports whether a bundle is currently loaded.
func (h *Holder) Healthy() bool {
	return h.current.Load() != nil
}
