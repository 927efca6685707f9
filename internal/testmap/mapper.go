// Package testmap links test files to the source files and symbols they
// exercise, by naming convention and by import analysis, and persists the
// result in the test_source_map table.
package testmap

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/memograph/memograph-go/internal/models"
	"github.com/memograph/memograph-go/internal/storage"
)

// Mapper builds and queries the test-source map
type Mapper struct {
	store  storage.Store
	logger *logrus.Logger
}

// NewMapper creates a new test-source mapper
func NewMapper(store storage.Store, logger *logrus.Logger) *Mapper {
	return &Mapper{store: store, logger: logger}
}

// MapTestFile computes all mappings for one test file: the naming match
// plus the import matches, deduplicated by (sourceFile, symbol-or-empty).
func (m *Mapper) MapTestFile(testFile string) []models.TestMapping {
	var mappings []models.TestMapping

	if naming := m.MatchByNaming(testFile); naming != nil {
		mappings = append(mappings, *naming)
	}

	content, err := os.ReadFile(testFile)
	if err != nil {
		// Vanished or unreadable mid-scan; the naming match still stands
		m.logger.WithError(err).WithField("test_file", testFile).Debug("skipping unreadable test file")
	} else {
		mappings = append(mappings, m.MatchByImports(testFile, string(content))...)
	}

	seen := make(map[string]bool, len(mappings))
	deduped := mappings[:0]
	for _, mp := range mappings {
		key := mp.SourceFile + "\x00"
		if mp.SourceSymbol != nil {
			key += *mp.SourceSymbol
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, mp)
	}
	return deduped
}

// BuildAndPersist rebuilds the test-source map for a project. When
// testFiles is nil the tree under root is discovered first. Each test
// file's rows are replaced atomically, so rebuilding an unchanged tree is
// idempotent.
func (m *Mapper) BuildAndPersist(ctx context.Context, project, root string, testFiles []string) (*models.MapBuildResult, error) {
	if testFiles == nil {
		discovered, err := m.DiscoverTestFiles(root, DefaultMaxFiles)
		if err != nil {
			return nil, err
		}
		testFiles = discovered
	}

	result := &models.MapBuildResult{}
	for _, testFile := range testFiles {
		mappings := m.MapTestFile(testFile)
		for i := range mappings {
			mappings[i].Project = project
		}
		if err := m.store.ReplaceTestMappings(ctx, project, testFile, mappings); err != nil {
			return nil, err
		}
		result.Tests++
		result.Mappings += len(mappings)
	}

	m.logger.WithFields(logrus.Fields{
		"project":  project,
		"tests":    result.Tests,
		"mappings": result.Mappings,
	}).Info("test-source map rebuilt")

	return result, nil
}

// GetTestsForSource returns mappings covering a source file, best first.
// A missing table degrades to an empty result.
func (m *Mapper) GetTestsForSource(ctx context.Context, project, sourceFile string) []models.TestMapping {
	mappings, err := m.store.TestsForSource(ctx, project, sourceFile, 0)
	if err != nil {
		m.logger.WithError(err).Debug("test map lookup failed, returning empty")
		return nil
	}
	return mappings
}

// GetSourcesForTest returns mappings for a test file, best first.
// A missing table degrades to an empty result.
func (m *Mapper) GetSourcesForTest(ctx context.Context, project, testFile string) []models.TestMapping {
	mappings, err := m.store.SourcesForTest(ctx, project, testFile)
	if err != nil {
		m.logger.WithError(err).Debug("test map lookup failed, returning empty")
		return nil
	}
	return mappings
}
