package storage

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// PostgresStore implements storage using PostgreSQL (for team deployments)
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore creates a new PostgreSQL storage
func NewPostgresStore(dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{sqlStore{db: db, logger: logger}}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS call_graph (
		project TEXT NOT NULL,
		caller_file TEXT NOT NULL,
		caller_symbol TEXT NOT NULL,
		callee_file TEXT NOT NULL,
		callee_symbol TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL DEFAULT 1.0
	);

	CREATE TABLE IF NOT EXISTS test_source_map (
		project TEXT NOT NULL,
		test_file TEXT NOT NULL,
		source_file TEXT NOT NULL,
		source_symbol TEXT,
		match_type TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		UNIQUE (project, test_file, source_file, source_symbol)
	);

	CREATE TABLE IF NOT EXISTS blast_radius (
		project TEXT NOT NULL,
		source_file TEXT NOT NULL,
		affected_file TEXT NOT NULL,
		distance INTEGER NOT NULL,
		dependency_path TEXT NOT NULL,
		is_test BOOLEAN NOT NULL DEFAULT FALSE,
		is_route BOOLEAN NOT NULL DEFAULT FALSE,
		computed_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS blast_summary (
		project TEXT NOT NULL,
		file_path TEXT NOT NULL,
		direct_dependents INTEGER NOT NULL DEFAULT 0,
		transitive_dependents INTEGER NOT NULL DEFAULT 0,
		total_affected INTEGER NOT NULL DEFAULT 0,
		max_depth INTEGER NOT NULL DEFAULT 0,
		affected_tests INTEGER NOT NULL DEFAULT 0,
		affected_routes INTEGER NOT NULL DEFAULT 0,
		blast_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		computed_at TIMESTAMPTZ,
		UNIQUE (project, file_path)
	);

	CREATE INDEX IF NOT EXISTS idx_call_graph_callee ON call_graph(project, callee_file, callee_symbol);
	CREATE INDEX IF NOT EXISTS idx_test_map_test ON test_source_map(project, test_file);
	CREATE INDEX IF NOT EXISTS idx_test_map_source ON test_source_map(project, source_file);
	CREATE INDEX IF NOT EXISTS idx_blast_radius_source ON blast_radius(project, source_file);
	CREATE INDEX IF NOT EXISTS idx_blast_summary_score ON blast_summary(project, blast_score);
	`

	_, err := s.db.Exec(schema)
	return err
}
