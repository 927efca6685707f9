package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memograph/memograph-go/internal/errs"
	"github.com/memograph/memograph-go/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newStore(t *testing.T) (*SQLiteStore, *sqlx.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(path, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	db, err := sqlx.Connect("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store, db
}

func seedEdge(t *testing.T, db *sqlx.DB, callerFile, callerSymbol, calleeFile, calleeSymbol string, confidence float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO call_graph (project, caller_file, caller_symbol, callee_file, callee_symbol, confidence)
		VALUES (?, ?, ?, ?, ?, ?)`,
		"proj", callerFile, callerSymbol, calleeFile, calleeSymbol, confidence)
	require.NoError(t, err)
}

func strptr(s string) *string { return &s }

func TestDirectCallers_OrderedByConfidence(t *testing.T) {
	store, db := newStore(t)
	seedEdge(t, db, "low.ts", "fnL", "target.ts", "fnT", 0.5)
	seedEdge(t, db, "high.ts", "fnH", "target.ts", "fnT", 0.9)
	seedEdge(t, db, "other.ts", "fnO", "target.ts", "unrelated", 1.0)

	edges, err := store.DirectCallers(context.Background(), "proj", "target.ts", "fnT")
	require.NoError(t, err)

	require.Len(t, edges, 2)
	assert.Equal(t, "high.ts", edges[0].CallerFile)
	assert.Equal(t, "low.ts", edges[1].CallerFile)
}

func TestFileCallers_GroupsByMaxConfidence(t *testing.T) {
	store, db := newStore(t)
	seedEdge(t, db, "a.ts", "fnA", "target.ts", "fn1", 0.4)
	seedEdge(t, db, "a.ts", "fnA", "target.ts", "fn2", 0.9)
	seedEdge(t, db, "b.ts", "fnB", "target.ts", "fn1", 0.6)

	edges, err := store.FileCallers(context.Background(), "proj", "target.ts", 50)
	require.NoError(t, err)

	require.Len(t, edges, 2)
	assert.Equal(t, "a.ts", edges[0].CallerFile)
	assert.InDelta(t, 0.9, edges[0].Confidence, 1e-9)
	assert.Equal(t, "b.ts", edges[1].CallerFile)
}

func TestFileCallers_Limit(t *testing.T) {
	store, db := newStore(t)
	seedEdge(t, db, "a.ts", "fnA", "target.ts", "fn", 0.9)
	seedEdge(t, db, "b.ts", "fnB", "target.ts", "fn", 0.8)
	seedEdge(t, db, "c.ts", "fnC", "target.ts", "fn", 0.7)

	edges, err := store.FileCallers(context.Background(), "proj", "target.ts", 2)
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestReplaceTestMappings_ReplacesNotAccumulates(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	first := []models.TestMapping{
		{SourceFile: "a.ts", SourceSymbol: strptr("fnA"), MatchType: models.MatchSymbol, Confidence: 0.95},
		{SourceFile: "b.ts", MatchType: models.MatchNaming, Confidence: 0.9},
	}
	require.NoError(t, store.ReplaceTestMappings(ctx, "proj", "x.test.ts", first))

	second := []models.TestMapping{
		{SourceFile: "a.ts", SourceSymbol: strptr("fnA"), MatchType: models.MatchSymbol, Confidence: 0.95},
	}
	require.NoError(t, store.ReplaceTestMappings(ctx, "proj", "x.test.ts", second))

	mappings, err := store.SourcesForTest(ctx, "proj", "x.test.ts")
	require.NoError(t, err)
	assert.Len(t, mappings, 1)
}

func TestReplaceTestMappings_ConflictKeepsFirst(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	// Two strategies produce the same uniqueness key with different
	// confidences; the first insert wins, the conflict is ignored
	mappings := []models.TestMapping{
		{SourceFile: "a.ts", SourceSymbol: strptr("fnA"), MatchType: models.MatchSymbol, Confidence: 0.95},
		{SourceFile: "a.ts", SourceSymbol: strptr("fnA"), MatchType: models.MatchImport, Confidence: 0.85},
	}
	require.NoError(t, store.ReplaceTestMappings(ctx, "proj", "x.test.ts", mappings))

	stored, err := store.SourcesForTest(ctx, "proj", "x.test.ts")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.MatchSymbol, stored[0].MatchType)
	assert.InDelta(t, 0.95, stored[0].Confidence, 1e-9)
}

func TestTestsForSource_LimitAndOrder(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceTestMappings(ctx, "proj", "a.test.ts", []models.TestMapping{
		{SourceFile: "a.ts", MatchType: models.MatchNaming, Confidence: 0.9},
	}))
	require.NoError(t, store.ReplaceTestMappings(ctx, "proj", "b.test.ts", []models.TestMapping{
		{SourceFile: "a.ts", SourceSymbol: strptr("fnA"), MatchType: models.MatchSymbol, Confidence: 0.95},
	}))

	all, err := store.TestsForSource(ctx, "proj", "a.ts", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b.test.ts", all[0].TestFile)

	top, err := store.TestsForSource(ctx, "proj", "a.ts", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "b.test.ts", top[0].TestFile)
}

func TestReplaceBlastRadius_Roundtrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	edges := []models.BlastRadiusEdge{
		{AffectedFile: "y.ts", Distance: 1, DependencyPath: []string{"x.ts", "y.ts"}, ComputedAt: now},
		{AffectedFile: "z.test.ts", Distance: 2, DependencyPath: []string{"x.ts", "y.ts", "z.test.ts"}, IsTest: true, ComputedAt: now},
	}
	summary := &models.BlastSummary{
		FilePath:             "x.ts",
		DirectDependents:     1,
		TransitiveDependents: 1,
		TotalAffected:        2,
		MaxDepth:             2,
		AffectedTests:        1,
		BlastScore:           35.85,
		ComputedAt:           now,
	}
	require.NoError(t, store.ReplaceBlastRadius(ctx, "proj", "x.ts", edges, summary))

	got, err := store.GetBlastSummary(ctx, "proj", "x.ts")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalAffected)
	assert.InDelta(t, 35.85, got.BlastScore, 1e-9)

	gotEdges, err := store.GetBlastEdges(ctx, "proj", "x.ts")
	require.NoError(t, err)
	require.Len(t, gotEdges, 2)
	assert.Equal(t, "y.ts", gotEdges[0].AffectedFile)
	assert.Equal(t, []string{"x.ts", "y.ts", "z.test.ts"}, gotEdges[1].DependencyPath)
	assert.True(t, gotEdges[1].IsTest)

	// Recompute with fewer edges fully replaces the old rows
	require.NoError(t, store.ReplaceBlastRadius(ctx, "proj", "x.ts", edges[:1], summary))
	gotEdges, err = store.GetBlastEdges(ctx, "proj", "x.ts")
	require.NoError(t, err)
	assert.Len(t, gotEdges, 1)
}

func TestGetBlastSummary_NotFound(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.GetBlastSummary(context.Background(), "proj", "missing.ts")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHighImpactFiles_OrderedAndFiltered(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for _, s := range []struct {
		file  string
		score float64
	}{
		{"low.ts", 20},
		{"mid.ts", 55},
		{"top.ts", 90},
	} {
		summary := &models.BlastSummary{FilePath: s.file, BlastScore: s.score, ComputedAt: time.Now().UTC()}
		require.NoError(t, store.ReplaceBlastRadius(ctx, "proj", s.file, nil, summary))
	}

	summaries, err := store.HighImpactFiles(ctx, "proj", 50)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "top.ts", summaries[0].FilePath)
	assert.Equal(t, "mid.ts", summaries[1].FilePath)
}

func TestReplaceTestMappings_FailureIsPersistenceError(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Close())

	err := store.ReplaceTestMappings(context.Background(), "proj", "x.test.ts", nil)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindPersistence))
}
