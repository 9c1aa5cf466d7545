// Package manifest builds and loads the file manifest that drives an
// ingestion run: which raw export files to parse, and which of them are
// credit-account exports.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one raw export file. IsCredit selects the credit-account parsing
// rules for that file.
type Entry struct {
	Path     string
	IsCredit bool
}

// Manifest is the ordered list of raw export files for one run. The on-disk
// format is a JSON object keyed by path; in memory entries are kept sorted by
// path so the assembled batch order is reproducible across runs.
type Manifest struct {
	Entries []Entry
}

// Scan walks dir for .csv exports and flags any file whose name contains
// creditMarker as a credit-account export.
func Scan(dir, creditMarker string) (*Manifest, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("Scan: reading directory %q: %w", dir, err)
	}

	m := &Manifest{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".csv") {
			continue
		}
		m.Entries = append(m.Entries, Entry{
			Path:     filepath.Join(dir, f.Name()),
			IsCredit: strings.Contains(f.Name(), creditMarker),
		})
	}
	m.sort()

	return m, nil
}

// Load reads a manifest JSON file: an object mapping file path to the
// is-credit flag.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: reading manifest %q: %w", path, err)
	}

	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("Load: unmarshal manifest %q: %w", path, err)
	}

	m := &Manifest{}
	for p, isCredit := range raw {
		m.Entries = append(m.Entries, Entry{Path: p, IsCredit: isCredit})
	}
	m.sort()

	return m, nil
}

// Save writes the manifest as a JSON object mapping path to is-credit flag.
func (m *Manifest) Save(path string) error {
	raw := make(map[string]bool, len(m.Entries))
	for _, e := range m.Entries {
		raw[e.Path] = e.IsCredit
	}

	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return fmt.Errorf("Save: marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("Save: writing manifest %q: %w", path, err)
	}

	return nil
}

// Len reports the number of files in the manifest.
func (m *Manifest) Len() int {
	return len(m.Entries)
}

func (m *Manifest) sort() {
	sort.Slice(m.Entries, func(i, j int) bool {
		return m.Entries[i].Path < m.Entries[j].Path
	})
}
