// Package depgraph declares the contract against the background indexer's
// file-level dependency graph. The graph is built elsewhere; this engine
// only consumes the dependents adjacency it produces.
package depgraph

import "context"

// FileNode holds the dependents recorded for one file: the files that
// import it, directly.
type FileNode struct {
	Dependents []string `json:"dependents"`
}

// Builder produces the file -> dependents adjacency for a project tree.
type Builder interface {
	// BuildDependencyGraph scans at most maxFiles files under projectPath
	// and returns the dependents adjacency keyed by file path.
	BuildDependencyGraph(ctx context.Context, projectPath string, maxFiles int) (map[string]*FileNode, error)
}
