package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteStore implements storage using SQLite (for local/development)
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore creates a new SQLite storage
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	// WAL mode for better concurrency between the CLI and background jobs
	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{sqlStore{db: db, logger: logger}}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS call_graph (
		project TEXT NOT NULL,
		caller_file TEXT NOT NULL,
		caller_symbol TEXT NOT NULL,
		callee_file TEXT NOT NULL,
		callee_symbol TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 1.0
	);

	CREATE TABLE IF NOT EXISTS test_source_map (
		project TEXT NOT NULL,
		test_file TEXT NOT NULL,
		source_file TEXT NOT NULL,
		source_symbol TEXT,
		match_type TEXT NOT NULL,
		confidence REAL NOT NULL,
		UNIQUE (project, test_file, source_file, source_symbol)
	);

	CREATE TABLE IF NOT EXISTS blast_radius (
		project TEXT NOT NULL,
		source_file TEXT NOT NULL,
		affected_file TEXT NOT NULL,
		distance INTEGER NOT NULL,
		dependency_path TEXT NOT NULL,
		is_test INTEGER NOT NULL DEFAULT 0,
		is_route INTEGER NOT NULL DEFAULT 0,
		computed_at DATETIME
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
		blast_score REAL NOT NULL DEFAULT 0,
		computed_at DATETIME,
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
