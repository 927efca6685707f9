package storage

import (
	"context"
	"errors"

	"github.com/memograph/memograph-go/internal/models"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
)

// Store defines the persistence contract for the impact engine. The
// call_graph table is written by the background indexer; everything here
// reads it with parameterized queries only.
type Store interface {
	// Call graph (read-only)

	// DirectCallers returns edges whose callee matches (file, symbol),
	// ordered by confidence descending.
	DirectCallers(ctx context.Context, project, file, symbol string) ([]models.CallGraphEdge, error)

	// FileCallers returns up to limit callers of any symbol in file,
	// grouped per (caller_file, caller_symbol) keeping the max confidence,
	// ordered by confidence descending.
	FileCallers(ctx context.Context, project, file string, limit int) ([]models.CallGraphEdge, error)

	// CallersOf returns up to limit edges whose callee is the given
	// (callerFile, callerSymbol) pair, ordered by confidence descending.
	// Used for transitive expansion.
	CallersOf(ctx context.Context, project, callerFile, callerSymbol string, limit int) ([]models.CallGraphEdge, error)

	// Test-source map

	// ReplaceTestMappings deletes all rows for (project, testFile) and
	// inserts the given mappings inside a single transaction. Individual
	// insert conflicts on the uniqueness key are ignored (first wins).
	ReplaceTestMappings(ctx context.Context, project, testFile string, mappings []models.TestMapping) error

	// TestsForSource returns mappings for a source file ordered by
	// confidence descending. limit <= 0 means no limit.
	TestsForSource(ctx context.Context, project, sourceFile string, limit int) ([]models.TestMapping, error)

	// SourcesForTest returns mappings for a test file ordered by
	// confidence descending.
	SourcesForTest(ctx context.Context, project, testFile string) ([]models.TestMapping, error)

	// Blast radius

	// ReplaceBlastRadius deletes all blast_radius rows for
	// (project, sourceFile), inserts the given edges, and upserts the
	// summary row, all inside a single transaction.
	ReplaceBlastRadius(ctx context.Context, project, sourceFile string, edges []models.BlastRadiusEdge, summary *models.BlastSummary) error

	// GetBlastSummary returns the cached summary or ErrNotFound.
	GetBlastSummary(ctx context.Context, project, filePath string) (*models.BlastSummary, error)

	// GetBlastEdges returns the persisted edges for a source file,
	// ordered by distance then affected file.
	GetBlastEdges(ctx context.Context, project, sourceFile string) ([]models.BlastRadiusEdge, error)

	// HighImpactFiles returns summaries with blast_score >= minScore,
	// ordered by score descending, capped at 20.
	HighImpactFiles(ctx context.Context, project string, minScore float64) ([]models.BlastSummary, error)

	// Close closes the underlying connection
	Close() error
}
