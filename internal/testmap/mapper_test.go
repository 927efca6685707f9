package testmap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memograph/memograph-go/internal/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDiscoverTestFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "a.test.ts"), "")
	writeFile(t, filepath.Join(root, "src", "b.spec.tsx"), "")
	writeFile(t, filepath.Join(root, "src", "b.ts"), "")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "x.test.ts"), "")
	writeFile(t, filepath.Join(root, "dist", "a.test.js"), "")

	m := newBareMapper()
	files, err := m.DiscoverTestFiles(root, DefaultMaxFiles)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "src", "a.test.ts"),
		filepath.Join(root, "src", "b.spec.tsx"),
	}, files)
}

func TestDiscoverTestFiles_MaxFilesStopsEarly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.test.ts"), "")
	writeFile(t, filepath.Join(root, "b.test.ts"), "")
	writeFile(t, filepath.Join(root, "c.test.ts"), "")

	m := newBareMapper()
	files, err := m.DiscoverTestFiles(root, 2)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestBuildAndPersist_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "foo.ts"), "")
	writeFile(t, filepath.Join(root, "foo.test.ts"), "import foo from './foo'\n")
	writeFile(t, filepath.Join(root, "bar.ts"), "")
	writeFile(t, filepath.Join(root, "bar.test.ts"), "import { run } from './bar'\n")

	store := newTestStore(t)
	m := NewMapper(store, testLogger())
	ctx := context.Background()

	first, err := m.BuildAndPersist(ctx, "proj", root, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Tests)
	assert.Equal(t, 3, first.Mappings) // foo naming, bar naming + bar symbol

	second, err := m.BuildAndPersist(ctx, "proj", root, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Tests, second.Tests)
	assert.Equal(t, first.Mappings, second.Mappings)

	// The persisted rows were replaced, not accumulated
	mappings := m.GetSourcesForTest(ctx, "proj", filepath.Join(root, "bar.test.ts"))
	assert.Len(t, mappings, 2)
}

func TestBuildAndPersist_ExplicitFileList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "foo.ts"), "")
	writeFile(t, filepath.Join(root, "foo.test.ts"), "")
	writeFile(t, filepath.Join(root, "ignored.test.ts"), "")

	store := newTestStore(t)
	m := NewMapper(store, testLogger())

	result, err := m.BuildAndPersist(context.Background(), "proj", root,
		[]string{filepath.Join(root, "foo.test.ts")})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Tests)
	assert.Equal(t, 1, result.Mappings)
}

func TestGetTestsForSource_OrderedByConfidence(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "src", "auth.ts")
	sibling := filepath.Join(root, "src", "auth.test.ts")
	imported := filepath.Join(root, "src", "session.test.ts")
	writeFile(t, source, "")
	writeFile(t, sibling, "")
	writeFile(t, imported, "import { login } from './auth'\n")

	store := newTestStore(t)
	m := NewMapper(store, testLogger())
	ctx := context.Background()

	_, err := m.BuildAndPersist(ctx, "proj", root, nil)
	require.NoError(t, err)

	mappings := m.GetTestsForSource(ctx, "proj", source)
	require.Len(t, mappings, 2)
	assert.Equal(t, imported, mappings[0].TestFile) // symbol import, 0.95
	assert.Equal(t, sibling, mappings[1].TestFile)  // sibling naming, 0.9
	assert.GreaterOrEqual(t, mappings[0].Confidence, mappings[1].Confidence)
}
