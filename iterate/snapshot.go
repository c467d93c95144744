package iterate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSet maps slash-separated relative paths to textual file contents.
type FileSet map[string]string

// gitDirName is the version-control metadata directory excluded from every
// snapshot at any depth.
const gitDirName = ".git"

// hasExcludedComponent reports whether any path component matches an
// excluded name.
func hasExcludedComponent(rel string, exclude []string) bool {
	for _, part := range strings.Split(rel, "/") {
		if part == gitDirName {
			return true
		}
		for _, ex := range exclude {
			if part == ex {
				return true
			}
		}
	}
	return false
}

// Snapshot walks the tree under root and returns the textual contents of
// every regular file, keyed by slash-separated path relative to root.
//
// Paths with a .git component (or a configured exclude) never appear.
// Contents are decoded as UTF-8 with invalid bytes dropped rather than
// failing. A file whose read errors (permissions, races, device files) is
// silently skipped; a single unreadable file must not abort the snapshot.
func Snapshot(root string, exclude []string) (FileSet, error) {
	files := make(FileSet)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil // skip unreadable entries, keep walking
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && hasExcludedComponent(rel, exclude) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if hasExcludedComponent(rel, exclude) {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}

		files[rel] = strings.ToValidUTF8(string(data), "")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
