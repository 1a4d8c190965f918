package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListJSONFiles(t *testing.T) {
	root := t.TempDir()

	// Nested layout with a non-JSON file mixed in
	sub := filepath.Join(root, "2018", "11")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	files := []string{
		filepath.Join(sub, "b.json"),
		filepath.Join(sub, "a.json"),
		filepath.Join(root, "c.JSON"),
		filepath.Join(root, "notes.txt"),
	}
	for _, f := range files {
		if err := os.WriteFile(f, []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", f, err)
		}
	}

	paths, err := ListJSONFiles(root)
	if err != nil {
		t.Fatalf("ListJSONFiles failed: %v", err)
	}

	if len(paths) != 3 {
		t.Fatalf("expected 3 json files, got %d: %v", len(paths), paths)
	}

	// Sorted, absolute, and the .txt excluded
	for i := 1; i < len(paths); i++ {
		if paths[i-1] >= paths[i] {
			t.Errorf("paths not sorted: %q >= %q", paths[i-1], paths[i])
		}
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			t.Errorf("expected absolute path, got %q", p)
		}
		if filepath.Base(p) == "notes.txt" {
			t.Errorf("non-json file included: %q", p)
		}
	}
}

func TestListJSONFilesEmptyDir(t *testing.T) {
	paths, err := ListJSONFiles(t.TempDir())
	if err != nil {
		t.Fatalf("ListJSONFiles failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no files, got %v", paths)
	}
}
