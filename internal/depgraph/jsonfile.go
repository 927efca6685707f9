package depgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultGraphFile is where the indexer exports its adjacency, relative to
// the project root.
const DefaultGraphFile = ".memograph/depgraph.json"

// JSONFileBuilder serves the adjacency the background indexer exported to
// disk. It never scans source code itself.
type JSONFileBuilder struct {
	// Path overrides the default export location when non-empty
	Path string
}

// NewJSONFileBuilder creates a builder reading from path, or from the
// default export location under the project root when path is empty.
func NewJSONFileBuilder(path string) *JSONFileBuilder {
	return &JSONFileBuilder{Path: path}
}

// BuildDependencyGraph loads the exported adjacency, truncated to maxFiles
// entries in stable (sorted) order.
func (b *JSONFileBuilder) BuildDependencyGraph(ctx context.Context, projectPath string, maxFiles int) (map[string]*FileNode, error) {
	path := b.Path
	if path == "" {
		path = filepath.Join(projectPath, DefaultGraphFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dependency graph export: %w", err)
	}

	var graph map[string]*FileNode
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("parse dependency graph export: %w", err)
	}

	if maxFiles > 0 && len(graph) > maxFiles {
		files := make([]string, 0, len(graph))
		for file := range graph {
			files = append(files, file)
		}
		sort.Strings(files)
		truncated := make(map[string]*FileNode, maxFiles)
		for _, file := range files[:maxFiles] {
			truncated[file] = graph[file]
		}
		graph = truncated
	}

	return graph, nil
}
