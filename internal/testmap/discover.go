package testmap

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultMaxFiles caps a discovery walk
	DefaultMaxFiles = 2000

	maxWalkDepth = 15
)

// sourceExtensions are the extensions test suffixes are matched over, and
// the order import resolution probes them in.
var sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

var testSuffixMarkers = []string{".test", ".spec"}

// ignoreDirs are never descended into during discovery
var ignoreDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
	".next":        true,
	".nuxt":        true,
	".cache":       true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
}

// IsTestFile reports whether path looks like a test file by suffix
// convention (.test.<ext> or .spec.<ext>).
func IsTestFile(path string) bool {
	for _, ext := range sourceExtensions {
		for _, marker := range testSuffixMarkers {
			if strings.HasSuffix(path, marker+ext) {
				return true
			}
		}
	}
	return false
}

// DiscoverTestFiles walks root looking for test files, skipping dependency
// caches and build artifacts. The walk is bounded: at most maxWalkDepth
// levels deep, stopping early once maxFiles files have been collected.
// Unreadable directories are skipped, not fatal.
func (m *Mapper) DiscoverTestFiles(root string, maxFiles int) ([]string, error) {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	var found []string
	m.walk(root, 0, maxFiles, &found)
	return found, nil
}

func (m *Mapper) walk(dir string, depth, maxFiles int, found *[]string) {
	if depth > maxWalkDepth || len(*found) >= maxFiles {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		m.logger.WithError(err).WithField("dir", dir).Debug("skipping unreadable directory")
		return
	}

	for _, entry := range entries {
		if len(*found) >= maxFiles {
			return
		}
		name := entry.Name()
		if entry.IsDir() {
			if ignoreDirs[name] {
				continue
			}
			m.walk(filepath.Join(dir, name), depth+1, maxFiles, found)
			continue
		}
		if IsTestFile(name) {
			*found = append(*found, filepath.Join(dir, name))
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
