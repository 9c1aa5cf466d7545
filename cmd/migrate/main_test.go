package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_create_unified_transactions.sql", true, "0001", "create_unified_transactions"},
		{"0002_create_ingestion_runs.sql", true, "0002", "create_ingestion_runs"},
		{"001_too_short.sql", false, "", ""},
		{"0001_no_extension", false, "", ""},
		{"0001.sql", false, "", ""},
		{"notes.txt", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := filenamePattern.FindStringSubmatch(tt.filename)
			if tt.valid {
				if matches == nil {
					t.Fatalf("expected %q to match", tt.filename)
				}
				if matches[1] != tt.version || matches[2] != tt.name {
					t.Errorf("got version=%q name=%q, want %q %q", matches[1], matches[2], tt.version, tt.name)
				}
			} else if matches != nil {
				t.Errorf("expected %q not to match, got %v", tt.filename, matches)
			}
		})
	}
}

func TestReadMigrations(t *testing.T) {
	dir := t.TempDir()

	second := "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.b` (id STRING);"
	writeFile(t, dir, "0002_second.sql", second)
	writeFile(t, dir, "0001_first.sql", "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.a` (id STRING);")
	writeFile(t, dir, "README.md", "not a migration")

	migrations, err := readMigrations(dir)
	if err != nil {
		t.Fatalf("readMigrations: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("got %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("migrations not sorted by version: %+v", migrations)
	}
	if migrations[0].Name != "first" {
		t.Errorf("got name %q, want %q", migrations[0].Name, "first")
	}

	// Placeholders resolve to the flag values.
	wantFragment := fmt.Sprintf("`%s.%s.b`", *projectID, *datasetID)
	if got := migrations[1].SQL; !strings.Contains(got, wantFragment) {
		t.Errorf("placeholders not substituted, got %q", got)
	}

	// Checksum covers the content before substitution.
	wantChecksum := fmt.Sprintf("%x", sha256.Sum256([]byte(second)))
	if migrations[1].Checksum != wantChecksum {
		t.Errorf("got checksum %q, want %q", migrations[1].Checksum, wantChecksum)
	}
}

func TestReadMigrationsMissingDir(t *testing.T) {
	if _, err := readMigrations(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
