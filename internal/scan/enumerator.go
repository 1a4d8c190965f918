package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ListJSONFiles walks root and returns the absolute paths of all .json
// files beneath it, sorted lexically so processing order is stable
// between runs.
func ListJSONFiles(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("access error: %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".json" {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", path, err)
		}
		paths = append(paths, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}
