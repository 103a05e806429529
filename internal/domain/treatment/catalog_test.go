package treatment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "treatments.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoad_AndLookup(t *testing.T) {
	path := writeCatalog(t, `{
		"Late_Blight": {
			"treatment": "Remove infected foliage immediately",
			"chemicals": ["Chlorothalonil", "Mancozeb"],
			"prevention": "Avoid overhead irrigation"
		},
		"unknown": {
			"treatment": "Consult a local agronomist",
			"chemicals": [],
			"prevention": "General preventive measures recommended"
		}
	}`)

	catalog, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.Size())

	entry := catalog.Lookup("Late_Blight")
	assert.Equal(t, "Late_Blight", entry.Label)
	assert.Equal(t, "Remove infected foliage immediately", entry.Treatment)
	assert.Equal(t, []string{"Chlorothalonil", "Mancozeb"}, entry.Chemicals)
	assert.False(t, entry.IsFallback)
}

func TestLookup_FallbackForUndocumentedLabel(t *testing.T) {
	path := writeCatalog(t, `{
		"Rust": {"treatment": "Apply fungicide", "chemicals": ["Mancozeb"], "prevention": "Rotate crops"},
		"unknown": {"treatment": "Consult a local agronomist", "chemicals": [], "prevention": "Monitor the field"}
	}`)

	catalog, err := Load(path)
	require.NoError(t, err)

	entry := catalog.Lookup("Verticillium_Wilt")
	assert.True(t, entry.IsFallback)
	// The fallback keeps the requested label so callers can still report
	// what was diagnosed.
	assert.Equal(t, "Verticillium_Wilt", entry.Label)
	assert.Equal(t, "Consult a local agronomist", entry.Treatment)
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	path := writeCatalog(t, `{
		"Rust": {"treatment": "Apply fungicide", "chemicals": [], "prevention": "Rotate crops"},
		"unknown": {"treatment": "Consult a local agronomist", "chemicals": [], "prevention": "Monitor"}
	}`)

	catalog, err := Load(path)
	require.NoError(t, err)

	// Case or spelling differences never fuzzy-match.
	assert.True(t, catalog.Lookup("rust").IsFallback)
	assert.True(t, catalog.Lookup("Rusts").IsFallback)
	assert.False(t, catalog.Lookup("Rust").IsFallback)
}

func TestLoad_RequiresFallbackEntry(t *testing.T) {
	path := writeCatalog(t, `{
		"Rust": {"treatment": "Apply fungicide", "chemicals": [], "prevention": "Rotate crops"}
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeCatalog(t, `{not json`)
	_, err := Load(path)
	assert.Error(t, err)
}
