package blast

// DependentRecord is the best-known placement of one affected file
type DependentRecord struct {
	Distance int
	// Path is the dependency chain from the source file to this one,
	// source first.
	Path []string
}

// TransitiveResult holds a completed traversal
type TransitiveResult struct {
	// Records maps each reachable file to its shortest-path record
	Records map[string]DependentRecord
	// MaxDepth is the largest distance ever recorded
	MaxDepth int
}

type queueItem struct {
	file     string
	distance int
	path     []string
}

// maxBFSExpansions bounds a single traversal; the file graph may be cyclic
// and dense, and nothing else limits how much work one source file can
// trigger.
const maxBFSExpansions = 50000

// ComputeTransitiveDependents walks the dependents adjacency breadth-first
// from sourceFile. Distances are shortest-path: a node reached again at a
// smaller distance is re-recorded, and a recorded distance less than or
// equal to the incoming one is never replaced. Traversal never exceeds
// maxDepth hops, which keeps it terminating over cyclic graphs.
func ComputeTransitiveDependents(sourceFile string, dependents map[string][]string, maxDepth int) *TransitiveResult {
	result := &TransitiveResult{Records: make(map[string]DependentRecord)}

	queue := make([]queueItem, 0, len(dependents[sourceFile]))
	for _, dep := range dependents[sourceFile] {
		queue = append(queue, queueItem{
			file:     dep,
			distance: 1,
			path:     []string{sourceFile, dep},
		})
	}

	expansions := 0
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if existing, ok := result.Records[item.file]; ok && existing.Distance <= item.distance {
			continue
		}
		if item.distance > maxDepth {
			continue
		}
		if expansions >= maxBFSExpansions {
			break
		}
		expansions++

		result.Records[item.file] = DependentRecord{Distance: item.distance, Path: item.path}
		if item.distance > result.MaxDepth {
			result.MaxDepth = item.distance
		}

		for _, next := range dependents[item.file] {
			if existing, ok := result.Records[next]; ok && existing.Distance <= item.distance+1 {
				continue
			}
			nextPath := make([]string, len(item.path), len(item.path)+1)
			copy(nextPath, item.path)
			nextPath = append(nextPath, next)
			queue = append(queue, queueItem{file: next, distance: item.distance + 1, path: nextPath})
		}
	}

	return result
}
