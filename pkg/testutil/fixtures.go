package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/solidhdf5/pkg/arrayio"
	"github.com/arthur-debert/solidhdf5/pkg/container"
)

// WriteFile writes content to name below dir, creating parent directories.
// Use it for manifests and for input files that are meant to be malformed.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteArray writes arr as a CSV input file below dir, the way store reads it
func WriteArray(t *testing.T, dir, name string, arr container.Array) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := arrayio.WriteFile(path, arr); err != nil {
		t.Fatalf("Failed to write array %s: %v", path, err)
	}
	return path
}

// AssertArrayFile reads path back as an array and compares it with want
func AssertArrayFile(t *testing.T, path string, want container.Array) {
	t.Helper()

	got, err := arrayio.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read array %s: %v", path, err)
	}
	if !want.Equal(got) {
		t.Errorf("Array file %s mismatch\nExpected: %v %v\nActual: %v %v",
			path, want.Shape, want.Data, got.Shape, got.Data)
	}
}
