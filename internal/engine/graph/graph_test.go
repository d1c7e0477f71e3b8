package graph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, maxNodes int) *Graph {
	t.Helper()
	g, err := Open(filepath.Join(t.TempDir(), "graph.json"), maxNodes, 0.9)
	require.NoError(t, err)
	return g
}

func TestObserveAndRelatedDepthOne(t *testing.T) {
	g := newTestGraph(t, 100)
	require.NoError(t, g.Observe("a", "b"))
	require.NoError(t, g.Observe("a", "b"))
	require.NoError(t, g.Observe("a", "c"))

	related := g.Related("a", 1)
	require.Len(t, related, 2)
	assert.Equal(t, "b", related[0].ID, "strongest edge first")
	assert.Equal(t, 2.0, related[0].Weight)
	assert.Equal(t, 1, related[0].Depth)
}

func TestRelatedDepthTwo(t *testing.T) {
	g := newTestGraph(t, 100)
	require.NoError(t, g.Observe("a", "b"))
	require.NoError(t, g.Observe("b", "c"))

	depth1 := g.Related("a", 1)
	require.Len(t, depth1, 1)

	depth2 := g.Related("a", 2)
	require.Len(t, depth2, 2)
	var foundC bool
	for _, r := range depth2 {
		if r.ID == "c" {
			foundC = true
			assert.Equal(t, 2, r.Depth)
		}
	}
	assert.True(t, foundC, "two-hop neighbor reachable at depth 2")
}

func TestRelatedExcludesOrigin(t *testing.T) {
	g := newTestGraph(t, 100)
	require.NoError(t, g.Observe("a", "b"))

	for _, r := range g.Related("a", 3) {
		assert.NotEqual(t, "a", r.ID)
	}
}

func TestRelatedUnknownNode(t *testing.T) {
	g := newTestGraph(t, 100)
	assert.Empty(t, g.Related("ghost", 2))
}

func TestSelfObservationIgnored(t *testing.T) {
	g := newTestGraph(t, 100)
	require.NoError(t, g.Observe("a", "a"))
	require.NoError(t, g.Observe("", "b"))
	assert.Zero(t, g.Stats().Nodes)
}

func TestDecayPrunesWeakEdges(t *testing.T) {
	g := newTestGraph(t, 100)
	require.NoError(t, g.Observe("a", "b"))

	// 1.0 * 0.9^n drops below the prune threshold eventually.
	for i := 0; i < 30; i++ {
		require.NoError(t, g.Decay())
	}
	assert.Zero(t, g.Stats().Nodes)
	assert.Empty(t, g.Related("a", 2))
}

func TestEvictionKeepsStrongestNodes(t *testing.T) {
	g := newTestGraph(t, 2)
	require.NoError(t, g.Observe("a", "b"))
	require.NoError(t, g.Observe("a", "b"))
	require.NoError(t, g.Observe("a", "c"))

	stats := g.Stats()
	assert.LessOrEqual(t, stats.Nodes, 2)

	related := g.Related("a", 1)
	require.NotEmpty(t, related)
	assert.Equal(t, "b", related[0].ID, "weakest node evicted first")
}

func TestPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	g, err := Open(path, 100, 0.9)
	require.NoError(t, err)
	require.NoError(t, g.Observe("a", "b"))

	g2, err := Open(path, 100, 0.9)
	require.NoError(t, err)
	assert.Equal(t, 2, g2.Stats().Nodes)
	assert.NotEmpty(t, g2.Related("a", 1))
}

func TestStats(t *testing.T) {
	g := newTestGraph(t, 100)
	require.NoError(t, g.Observe("a", "b"))
	require.NoError(t, g.Observe("b", "c"))

	stats := g.Stats()
	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 2, stats.Edges)
	assert.Equal(t, 100, stats.MaxNodes)
	assert.Equal(t, 0.9, stats.DecayFactor)
}

func TestOpenRejectsBadDecay(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "g.json"), 100, 1.5)
	assert.Error(t, err)
}
