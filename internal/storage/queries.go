package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/memograph/memograph-go/internal/errs"
	"github.com/memograph/memograph-go/internal/models"
)

// sqlStore implements Store over any sqlx-compatible driver. Placeholders
// are written in '?' form and rebound per driver, so SQLite and Postgres
// share every query; only schema creation differs per backend.
type sqlStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// Call graph (read-only)

func (s *sqlStore) DirectCallers(ctx context.Context, project, file, symbol string) ([]models.CallGraphEdge, error) {
	query := s.db.Rebind(`
		SELECT project, caller_file, caller_symbol, callee_file, callee_symbol, confidence
		FROM call_graph
		WHERE project = ? AND callee_file = ? AND callee_symbol = ?
		ORDER BY confidence DESC
	`)

	var edges []models.CallGraphEdge
	if err := s.db.SelectContext(ctx, &edges, query, project, file, symbol); err != nil {
		return nil, fmt.Errorf("query direct callers: %w", err)
	}
	return edges, nil
}

type callerAgg struct {
	CallerFile   string  `db:"caller_file"`
	CallerSymbol string  `db:"caller_symbol"`
	Confidence   float64 `db:"confidence"`
}

func (s *sqlStore) FileCallers(ctx context.Context, project, file string, limit int) ([]models.CallGraphEdge, error) {
	query := s.db.Rebind(`
		SELECT caller_file, caller_symbol, MAX(confidence) AS confidence
		FROM call_graph
		WHERE project = ? AND callee_file = ?
		GROUP BY caller_file, caller_symbol
		ORDER BY confidence DESC
		LIMIT ?
	`)

	var rows []callerAgg
	if err := s.db.SelectContext(ctx, &rows, query, project, file, limit); err != nil {
		return nil, fmt.Errorf("query file callers: %w", err)
	}

	edges := make([]models.CallGraphEdge, 0, len(rows))
	for _, r := range rows {
		edges = append(edges, models.CallGraphEdge{
			Project:      project,
			CallerFile:   r.CallerFile,
			CallerSymbol: r.CallerSymbol,
			CalleeFile:   file,
			Confidence:   r.Confidence,
		})
	}
	return edges, nil
}

func (s *sqlStore) CallersOf(ctx context.Context, project, callerFile, callerSymbol string, limit int) ([]models.CallGraphEdge, error) {
	query := s.db.Rebind(`
		SELECT project, caller_file, caller_symbol, callee_file, callee_symbol, confidence
		FROM call_graph
		WHERE project = ? AND callee_file = ? AND callee_symbol = ?
		ORDER BY confidence DESC
		LIMIT ?
	`)

	var edges []models.CallGraphEdge
	if err := s.db.SelectContext(ctx, &edges, query, project, callerFile, callerSymbol, limit); err != nil {
		return nil, fmt.Errorf("query transitive callers: %w", err)
	}
	return edges, nil
}

// Test-source map

func (s *sqlStore) ReplaceTestMappings(ctx context.Context, project, testFile string, mappings []models.TestMapping) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Persistence(err, "begin test map transaction")
	}
	defer tx.Rollback()

	del := tx.Rebind(`DELETE FROM test_source_map WHERE project = ? AND test_file = ?`)
	if _, err := tx.ExecContext(ctx, del, project, testFile); err != nil {
		return errs.Persistence(err, "delete test mappings")
	}

	// First insert wins on the uniqueness key; conflicting mappings from a
	// lower-priority match strategy are dropped, not compared.
	ins := tx.Rebind(`
		INSERT INTO test_source_map (project, test_file, source_file, source_symbol, match_type, confidence)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (project, test_file, source_file, source_symbol) DO NOTHING
	`)

	for _, m := range mappings {
		_, err := tx.ExecContext(ctx, ins,
			project, testFile, m.SourceFile, m.SourceSymbol, m.MatchType, m.Confidence)
		if err != nil {
			return errs.Persistence(err, "insert test mapping")
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Persistence(err, "commit test map transaction")
	}
	return nil
}

func (s *sqlStore) TestsForSource(ctx context.Context, project, sourceFile string, limit int) ([]models.TestMapping, error) {
	query := `
		SELECT project, test_file, source_file, source_symbol, match_type, confidence
		FROM test_source_map
		WHERE project = ? AND source_file = ?
		ORDER BY confidence DESC
	`
	args := []interface{}{project, sourceFile}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var mappings []models.TestMapping
	if err := s.db.SelectContext(ctx, &mappings, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query tests for source: %w", err)
	}
	return mappings, nil
}

func (s *sqlStore) SourcesForTest(ctx context.Context, project, testFile string) ([]models.TestMapping, error) {
	query := s.db.Rebind(`
		SELECT project, test_file, source_file, source_symbol, match_type, confidence
		FROM test_source_map
		WHERE project = ? AND test_file = ?
		ORDER BY confidence DESC
	`)

	var mappings []models.TestMapping
	if err := s.db.SelectContext(ctx, &mappings, query, project, testFile); err != nil {
		return nil, fmt.Errorf("query sources for test: %w", err)
	}
	return mappings, nil
}

// Blast radius

type blastEdgeRow struct {
	Project        string       `db:"project"`
	SourceFile     string       `db:"source_file"`
	AffectedFile   string       `db:"affected_file"`
	Distance       int          `db:"distance"`
	DependencyPath string       `db:"dependency_path"`
	IsTest         bool         `db:"is_test"`
	IsRoute        bool         `db:"is_route"`
	ComputedAt     sql.NullTime `db:"computed_at"`
}

func (s *sqlStore) ReplaceBlastRadius(ctx context.Context, project, sourceFile string, edges []models.BlastRadiusEdge, summary *models.BlastSummary) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Persistence(err, "begin blast radius transaction")
	}
	defer tx.Rollback()

	del := tx.Rebind(`DELETE FROM blast_radius WHERE project = ? AND source_file = ?`)
	if _, err := tx.ExecContext(ctx, del, project, sourceFile); err != nil {
		return errs.Persistence(err, "delete blast radius")
	}

	ins := tx.Rebind(`
		INSERT INTO blast_radius (project, source_file, affected_file, distance, dependency_path, is_test, is_route, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, e := range edges {
		path, err := json.Marshal(e.DependencyPath)
		if err != nil {
			return errs.Persistence(err, "serialize dependency path")
		}
		_, err = tx.ExecContext(ctx, ins,
			project, sourceFile, e.AffectedFile, e.Distance, string(path),
			e.IsTest, e.IsRoute, e.ComputedAt)
		if err != nil {
			return errs.Persistence(err, "insert blast radius edge")
		}
	}

	up := tx.Rebind(`
		INSERT INTO blast_summary (project, file_path, direct_dependents, transitive_dependents,
			total_affected, max_depth, affected_tests, affected_routes, blast_score, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project, file_path) DO UPDATE SET
			direct_dependents = EXCLUDED.direct_dependents,
			transitive_dependents = EXCLUDED.transitive_dependents,
			total_affected = EXCLUDED.total_affected,
			max_depth = EXCLUDED.max_depth,
			affected_tests = EXCLUDED.affected_tests,
			affected_routes = EXCLUDED.affected_routes,
			blast_score = EXCLUDED.blast_score,
			computed_at = EXCLUDED.computed_at
	`)
	_, err = tx.ExecContext(ctx, up,
		project, summary.FilePath, summary.DirectDependents, summary.TransitiveDependents,
		summary.TotalAffected, summary.MaxDepth, summary.AffectedTests, summary.AffectedRoutes,
		summary.BlastScore, summary.ComputedAt)
	if err != nil {
		return errs.Persistence(err, "upsert blast summary")
	}

	if err := tx.Commit(); err != nil {
		return errs.Persistence(err, "commit blast radius transaction")
	}
	return nil
}

func (s *sqlStore) GetBlastSummary(ctx context.Context, project, filePath string) (*models.BlastSummary, error) {
	query := s.db.Rebind(`
		SELECT project, file_path, direct_dependents, transitive_dependents, total_affected,
			max_depth, affected_tests, affected_routes, blast_score, computed_at
		FROM blast_summary
		WHERE project = ? AND file_path = ?
	`)

	var summary models.BlastSummary
	err := s.db.GetContext(ctx, &summary, query, project, filePath)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query blast summary: %w", err)
	}
	return &summary, nil
}

func (s *sqlStore) GetBlastEdges(ctx context.Context, project, sourceFile string) ([]models.BlastRadiusEdge, error) {
	query := s.db.Rebind(`
		SELECT project, source_file, affected_file, distance, dependency_path, is_test, is_route, computed_at
		FROM blast_radius
		WHERE project = ? AND source_file = ?
		ORDER BY distance ASC, affected_file ASC
	`)

	var rows []blastEdgeRow
	if err := s.db.SelectContext(ctx, &rows, query, project, sourceFile); err != nil {
		return nil, fmt.Errorf("query blast edges: %w", err)
	}

	edges := make([]models.BlastRadiusEdge, 0, len(rows))
	for _, r := range rows {
		var path []string
		if err := json.Unmarshal([]byte(r.DependencyPath), &path); err != nil {
			s.logger.WithError(err).WithField("file", r.AffectedFile).Debug("unparseable dependency path, keeping edge without it")
			path = nil
		}
		edge := models.BlastRadiusEdge{
			Project:        r.Project,
			SourceFile:     r.SourceFile,
			AffectedFile:   r.AffectedFile,
			Distance:       r.Distance,
			DependencyPath: path,
			IsTest:         r.IsTest,
			IsRoute:        r.IsRoute,
		}
		if r.ComputedAt.Valid {
			edge.ComputedAt = r.ComputedAt.Time
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

func (s *sqlStore) HighImpactFiles(ctx context.Context, project string, minScore float64) ([]models.BlastSummary, error) {
	query := s.db.Rebind(`
		SELECT project, file_path, direct_dependents, transitive_dependents, total_affected,
			max_depth, affected_tests, affected_routes, blast_score, computed_at
		FROM blast_summary
		WHERE project = ? AND blast_score >= ?
		ORDER BY blast_score DESC
		LIMIT 20
	`)

	var summaries []models.BlastSummary
	if err := s.db.SelectContext(ctx, &summaries, query, project, minScore); err != nil {
		return nil, fmt.Errorf("query high impact files: %w", err)
	}
	return summaries, nil
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}
