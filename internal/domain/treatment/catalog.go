package treatment

import (
	"encoding/json"
	"os"

	"verdant/pkg/errors"
)

// FallbackLabel keys the sentinel catalog entry returned for disease
// labels with no documented guidance.
const FallbackLabel = "unknown"

// Entry holds the structured guidance for one disease label.
type Entry struct {
	Label      string   `json:"label"`
	Treatment  string   `json:"treatment"`
	Chemicals  []string `json:"chemicals"`
	Prevention string   `json:"prevention"`
	IsFallback bool     `json:"is_fallback"`
}

// Catalog is the static label-to-guidance reference, loaded once and
// read-only for the process lifetime. Lookup is exact-match only: fuzzy
// matching could silently substitute wrong guidance for a misspelled or
// renamed label.
type Catalog struct {
	entries  map[string]Entry
	fallback Entry
}

// catalogDoc is the on-disk shape: a map from disease label to guidance.
type catalogDoc map[string]struct {
	Treatment  string   `json:"treatment"`
	Chemicals  []string `json:"chemicals"`
	Prevention string   `json:"prevention"`
}

// Load reads a treatment catalog document. The document must contain the
// sentinel "unknown" entry; a catalog that cannot answer an unknown label
// is refused at startup rather than discovered missing mid-request.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read treatment catalog %s", path)
	}

	var doc catalogDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse treatment catalog %s", path)
	}

	entries := make(map[string]Entry, len(doc))
	for label, e := range doc {
		entries[label] = Entry{
			Label:      label,
			Treatment:  e.Treatment,
			Chemicals:  e.Chemicals,
			Prevention: e.Prevention,
		}
	}

	fb, ok := entries[FallbackLabel]
	if !ok {
		return nil, errors.Newf("treatment catalog %s has no %q fallback entry", path, FallbackLabel)
	}
	fb.IsFallback = true
	delete(entries, FallbackLabel)

	return &Catalog{entries: entries, fallback: fb}, nil
}

// Lookup returns the guidance entry for a disease label. A label with
// no entry resolves to the fallback, flagged IsFallback=true, so a
// diagnosis is never blocked by missing documentation.
func (c *Catalog) Lookup(label string) Entry {
	if e, ok := c.entries[label]; ok {
		return e
	}
	fb := c.fallback
	fb.Label = label
	return fb
}

// Size returns the number of documented labels, excluding the fallback.
func (c *Catalog) Size() int {
	return len(c.entries)
}
