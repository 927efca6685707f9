package models

import (
	"time"
)

// MatchType describes how a test-to-source link was derived
type MatchType string

const (
	// MatchNaming - filename convention (foo.test.ts -> foo.ts)
	MatchNaming MatchType = "naming"
	// MatchImport - module-level import with no specific symbol
	MatchImport MatchType = "import"
	// MatchSymbol - a specific identifier imported by the test
	MatchSymbol MatchType = "symbol"
)

// TestMapping links a test file to a source file it exercises
type TestMapping struct {
	Project      string    `json:"project" db:"project"`
	TestFile     string    `json:"test_file" db:"test_file"`
	SourceFile   string    `json:"source_file" db:"source_file"`
	SourceSymbol *string   `json:"source_symbol,omitempty" db:"source_symbol"`
	MatchType    MatchType `json:"match_type" db:"match_type"`
	Confidence   float64   `json:"confidence" db:"confidence"`
}

// CallGraphEdge represents one caller->callee edge built by the indexer.
// This engine only reads these rows, it never writes them.
type CallGraphEdge struct {
	Project      string  `json:"project" db:"project"`
	CallerFile   string  `json:"caller_file" db:"caller_file"`
	CallerSymbol string  `json:"caller_symbol" db:"caller_symbol"`
	CalleeFile   string  `json:"callee_file" db:"callee_file"`
	CalleeSymbol string  `json:"callee_symbol" db:"callee_symbol"`
	Confidence   float64 `json:"confidence" db:"confidence"`
}

// CallerInfo is one caller discovered during impact analysis
type CallerInfo struct {
	File       string  `json:"file"`
	Symbol     string  `json:"symbol"`
	Distance   int     `json:"distance"` // BFS hops from the changed symbol, >= 1
	Confidence float64 `json:"confidence"`
}

// TestInfo is one test correlated with a changed file
type TestInfo struct {
	TestFile     string    `json:"test_file"`
	SourceSymbol *string   `json:"source_symbol,omitempty"`
	MatchType    MatchType `json:"match_type"`
	Confidence   float64   `json:"confidence"`
}

// ImpactResult is the per-query output of the impact analyzer.
// It is computed on demand and never persisted.
type ImpactResult struct {
	File              string       `json:"file"`
	Symbol            *string      `json:"symbol,omitempty"`
	DirectCallers     []CallerInfo `json:"direct_callers"`
	TransitiveCallers []CallerInfo `json:"transitive_callers"`
	AffectedTests     []TestInfo   `json:"affected_tests"`
	RiskScore         float64      `json:"risk_score"` // 0-100
	RiskLevel         string       `json:"risk_level"`
}

// BlastRadiusEdge is one persisted row of a file's blast radius.
// Rows for a (project, source_file) pair are fully replaced on recompute.
type BlastRadiusEdge struct {
	Project        string    `json:"project" db:"project"`
	SourceFile     string    `json:"source_file" db:"source_file"`
	AffectedFile   string    `json:"affected_file" db:"affected_file"`
	Distance       int       `json:"distance" db:"distance"`
	DependencyPath []string  `json:"dependency_path"` // source -> ... -> affected
	IsTest         bool      `json:"is_test" db:"is_test"`
	IsRoute        bool      `json:"is_route" db:"is_route"`
	ComputedAt     time.Time `json:"computed_at" db:"computed_at"`
}

// BlastSummary is the per-file aggregate, one row per (project, file_path)
type BlastSummary struct {
	Project              string    `json:"project" db:"project"`
	FilePath             string    `json:"file_path" db:"file_path"`
	DirectDependents     int       `json:"direct_dependents" db:"direct_dependents"`
	TransitiveDependents int       `json:"transitive_dependents" db:"transitive_dependents"`
	TotalAffected        int       `json:"total_affected" db:"total_affected"`
	MaxDepth             int       `json:"max_depth" db:"max_depth"`
	AffectedTests        int       `json:"affected_tests" db:"affected_tests"`
	AffectedRoutes       int       `json:"affected_routes" db:"affected_routes"`
	BlastScore           float64   `json:"blast_score" db:"blast_score"`
	ComputedAt           time.Time `json:"computed_at" db:"computed_at"`
}

// BlastResult is what callers get back from a blast-radius lookup: the
// summary numbers plus the affected files grouped the way consumers
// (CLI formatting, MCP tool handlers) expect them.
type BlastResult struct {
	FilePath             string   `json:"file_path"`
	DirectDependents     []string `json:"direct_dependents"`
	TransitiveDependents []string `json:"transitive_dependents"`
	AffectedTests        []string `json:"affected_tests"`
	AffectedRoutes       []string `json:"affected_routes"`
	TotalAffected        int      `json:"total_affected"`
	MaxDepth             int      `json:"max_depth"`
	BlastScore           float64  `json:"blast_score"`
	RiskLevel            string   `json:"risk_level"`
}

// MapBuildResult reports what a test-map rebuild touched
type MapBuildResult struct {
	Tests    int `json:"tests"`
	Mappings int `json:"mappings"`
}

// BlastBatchResult reports a full blast-radius recomputation pass
type BlastBatchResult struct {
	Processed  int `json:"processed"`
	HighImpact int `json:"high_impact"` // blast score >= 50
	Errors     int `json:"errors"`
}
