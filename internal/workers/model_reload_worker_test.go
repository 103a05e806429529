package workers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdant/internal/ml"
)

func writeArtifacts(t *testing.T, dir string) ml.BundlePaths {
	t.Helper()
	paths := ml.BundlePaths{
		ONNX:       filepath.Join(dir, "model.onnx"),
		Manifest:   filepath.Join(dir, "manifest.json"),
		Schema:     filepath.Join(dir, "schema.json"),
		Treatments: filepath.Join(dir, "treatments.json"),
	}
	for _, p := range []string{paths.ONNX, paths.Manifest, paths.Schema, paths.Treatments} {
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0o644))
	}
	return paths
}

func TestModelReloadWorker_UnchangedArtifactsSkipReload(t *testing.T) {
	paths := writeArtifacts(t, t.TempDir())
	holder := ml.NewHolder(nil)

	w := NewModelReloadWorker(holder, paths, nil, time.Minute, true)

	// Nothing changed since construction, so Run is a no-op.
	err := w.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, holder.Healthy())

	health := w.Health()
	assert.Equal(t, int64(1), health.RunCount)
	assert.Equal(t, int64(0), health.ErrorCount)
}

func TestModelReloadWorker_InvalidArtifactsKeepPrevious(t *testing.T) {
	dir := t.TempDir()
	paths := writeArtifacts(t, dir)
	holder := ml.NewHolder(nil)

	w := NewModelReloadWorker(holder, paths, nil, time.Minute, true)

	// Touch the schema with content that fails validation; the swap must
	// not happen and the error must be retried on the next tick.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(paths.Schema, []byte(`{"model_version": ""}`), 0o644))

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.False(t, holder.Healthy())

	// lastSeen was not advanced: the same broken artifacts trigger
	// another attempt.
	err = w.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(2), w.Health().ErrorCount)
}

func TestModelReloadWorker_MissingArtifactsLookUnchanged(t *testing.T) {
	paths := ml.BundlePaths{
		ONNX:       "/nonexistent/model.onnx",
		Manifest:   "/nonexistent/manifest.json",
		Schema:     "/nonexistent/schema.json",
		Treatments: "/nonexistent/treatments.json",
	}
	holder := ml.NewHolder(nil)

	w := NewModelReloadWorker(holder, paths, nil, time.Minute, true)

	err := w.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, holder.Healthy())
}
