package workers

import (
	"context"
	"os"
	"time"

	"verdant/internal/events"
	"verdant/internal/metrics"
	"verdant/internal/ml"
)

// closeDelay gives in-flight inference calls on the previous bundle time
// to finish before the ONNX session is destroyed.
const closeDelay = 5 * time.Second

// ModelReloadWorker watches the model artifacts on disk and hot-swaps
// the active bundle when any of them changes. A reload that fails
// validation leaves the previous bundle serving untouched.
type ModelReloadWorker struct {
	*BaseWorker
	holder    *ml.Holder
	paths     ml.BundlePaths
	publisher *events.Publisher

	lastSeen time.Time
}

// NewModelReloadWorker creates a new model reload worker. lastSeen is
// primed from the current artifacts so the first tick does not reload
// the bundle that startup just loaded.
func NewModelReloadWorker(holder *ml.Holder, paths ml.BundlePaths, publisher *events.Publisher, interval time.Duration, enabled bool) *ModelReloadWorker {
	w := &ModelReloadWorker{
		BaseWorker: NewBaseWorker("model_reloader", interval, enabled),
		holder:     holder,
		paths:      paths,
		publisher:  publisher,
	}
	w.lastSeen = w.artifactsModTime()
	return w
}

// Run checks the artifacts and swaps in a fresh bundle when they changed.
func (w *ModelReloadWorker) Run(ctx context.Context) error {
	start := time.Now()

	modTime := w.artifactsModTime()
	if !modTime.After(w.lastSeen) {
		w.RecordRun(time.Since(start))
		return nil
	}

	w.Log().Infof("Model artifacts changed at %s, reloading bundle", modTime.Format(time.RFC3339))

	bundle, err := ml.LoadBundle(w.paths)
	if err != nil {
		metrics.ModelReloads.WithLabelValues("error").Inc()
		w.RecordError(err, time.Since(start))
		w.Log().Errorf("Model reload failed, keeping previous bundle: %v", err)
		// Do not advance lastSeen: retry on the next tick until the
		// artifacts validate.
		return err
	}

	old := w.holder.Swap(bundle)
	w.lastSeen = modTime
	metrics.ModelReloads.WithLabelValues("success").Inc()

	if old != nil {
		go func(b *ml.Bundle) {
			time.Sleep(closeDelay)
			if err := b.Close(); err != nil {
				w.Log().Warnf("Failed to close previous bundle: %v", err)
			}
		}(old)
	}

	w.publisher.PublishModelReloaded(ctx, events.ModelReloadedEvent{
		ModelVersion: bundle.Manifest.ModelVersion,
		LabelCount:   len(bundle.Manifest.Labels),
		Timestamp:    time.Now().UTC(),
	})

	w.RecordRun(time.Since(start))
	w.Log().Infof("Model bundle reloaded, version %s", bundle.Manifest.ModelVersion)
	return nil
}

// artifactsModTime returns the newest mtime across all bundle artifacts.
// Missing files contribute nothing: a half-written artifact set simply
// looks unchanged until every file is in place.
func (w *ModelReloadWorker) artifactsModTime() time.Time {
	var newest time.Time
	for _, path := range []string{w.paths.ONNX, w.paths.Manifest, w.paths.Schema, w.paths.Treatments} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest
}
