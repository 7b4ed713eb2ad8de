package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CatalogEntry is one published release.
type CatalogEntry struct {
	Version *semver.Version
	// LTS is the codename of a long-term-support release, nil otherwise.
	LTS   *string
	Files []string
	Date  string
}

// IsLTS reports whether the release carries an LTS codename.
func (e CatalogEntry) IsLTS() bool {
	return e.LTS != nil
}

// String returns the canonical version (no leading v).
func (e CatalogEntry) String() string {
	return e.Version.String()
}

type rawEntry struct {
	Version string          `json:"version"`
	LTS     json.RawMessage `json:"lts"`
	Files   []string        `json:"files"`
	Date    string          `json:"date"`
}

// UnmarshalJSON decodes an entry, normalizing the lts field, which the
// upstream index publishes as either false or a codename string.
func (e *CatalogEntry) UnmarshalJSON(data []byte) error {
	var raw rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	v, err := semver.StrictNewVersion(strings.TrimPrefix(raw.Version, "v"))
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", raw.Version, err)
	}

	lts, err := parseLTS(raw.LTS)
	if err != nil {
		return fmt.Errorf("version %s: %w", raw.Version, err)
	}

	*e = CatalogEntry{
		Version: v,
		LTS:     lts,
		Files:   raw.Files,
		Date:    raw.Date,
	}
	return nil
}

func parseLTS(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("invalid lts value %s", raw)
		}
		return nil, nil
	case '"':
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, fmt.Errorf("invalid lts value %s", raw)
		}
		return &name, nil
	default:
		return nil, fmt.Errorf("invalid lts value %s (want false or a codename)", raw)
	}
}

// ParseCatalog decodes an index.json document.
func ParseCatalog(data []byte) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []CatalogEntry{}
	}
	return entries, nil
}

// Latest returns the highest version in the catalog.
func Latest(entries []CatalogEntry) (CatalogEntry, bool) {
	var best CatalogEntry
	found := false
	for _, e := range entries {
		if !found || e.Version.GreaterThan(best.Version) {
			best = e
			found = true
		}
	}
	return best, found
}

// LatestLTS returns the highest LTS version in the catalog.
func LatestLTS(entries []CatalogEntry) (CatalogEntry, bool) {
	return Latest(FilterLTS(entries))
}

// FilterLTS returns only the LTS entries.
func FilterLTS(entries []CatalogEntry) []CatalogEntry {
	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsLTS() {
			out = append(out, e)
		}
	}
	return out
}

// SortDescending orders entries newest first, in place.
func SortDescending(entries []CatalogEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Version.GreaterThan(entries[j].Version)
	})
}
