package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/llehouerou/crate/internal/tags"
)

// ErrNotDirectory is returned when the import root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// checkRoot validates a directory argument.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("import directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("import directory %s: %w", root, ErrNotDirectory)
	}
	return nil
}

// FindSupported walks root recursively and returns the supported music files
// in walk order. The root itself must be a readable directory; unreadable
// entries below it are skipped.
func FindSupported(root string) ([]string, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}

	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// skip unreadable entries below the root
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if d.IsDir() {
			return nil
		}
		if tags.IsMusicFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return files, nil
}

// CountSupported is the pre-scan that sizes progress reporting.
func CountSupported(root string) (int, error) {
	files, err := FindSupported(root)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}
