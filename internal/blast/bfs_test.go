package blast

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTransitiveDependents_Chain(t *testing.T) {
	dependents := map[string][]string{
		"x": {"y"},
		"y": {"z.test.ts"},
	}

	result := ComputeTransitiveDependents("x", dependents, DefaultMaxDepth)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Records["y"].Distance)
	assert.Equal(t, []string{"x", "y"}, result.Records["y"].Path)
	assert.Equal(t, 2, result.Records["z.test.ts"].Distance)
	assert.Equal(t, []string{"x", "y", "z.test.ts"}, result.Records["z.test.ts"].Path)
	assert.Equal(t, 2, result.MaxDepth)
}

func TestComputeTransitiveDependents_DepthClamp(t *testing.T) {
	// 15 nested links, traversal bounded at 10
	dependents := make(map[string][]string)
	for i := 0; i < 15; i++ {
		dependents[fmt.Sprintf("f%d", i)] = []string{fmt.Sprintf("f%d", i+1)}
	}

	result := ComputeTransitiveDependents("f0", dependents, 10)

	assert.Len(t, result.Records, 10)
	assert.Equal(t, 10, result.MaxDepth)
	_, beyond := result.Records["f11"]
	assert.False(t, beyond, "nothing beyond distance 10 should be recorded")
	assert.Equal(t, 10, result.Records["f10"].Distance)
}

func TestComputeTransitiveDependents_ShortestPath(t *testing.T) {
	// b is reachable directly from a and via the longer a -> c -> d -> b
	dependents := map[string][]string{
		"a": {"c", "b"},
		"c": {"d"},
		"d": {"b"},
	}

	result := ComputeTransitiveDependents("a", dependents, DefaultMaxDepth)

	assert.Equal(t, 1, result.Records["b"].Distance, "recorded distance must be the shorter path")
	assert.Equal(t, []string{"a", "b"}, result.Records["b"].Path)
}

func TestComputeTransitiveDependents_Cycle(t *testing.T) {
	dependents := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	}

	result := ComputeTransitiveDependents("a", dependents, DefaultMaxDepth)

	// a itself re-enters at distance 3; the traversal terminates anyway
	require.Len(t, result.Records, 3)
	assert.Equal(t, 1, result.Records["b"].Distance)
	assert.Equal(t, 2, result.Records["c"].Distance)
	assert.Equal(t, 3, result.Records["a"].Distance)
}

func TestComputeTransitiveDependents_NoDependents(t *testing.T) {
	result := ComputeTransitiveDependents("lonely.ts", map[string][]string{}, DefaultMaxDepth)

	assert.Empty(t, result.Records)
	assert.Equal(t, 0, result.MaxDepth)
}
