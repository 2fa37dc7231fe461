package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ttpr0/go-transitmap/graph"
)

func TestFreezeTrackIdentity(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	addEdge(g, a, b)

	snapshot := g.Freeze()
	track := g.FreezeTrack(snapshot)
	require.Equal(2, track.Length())
	require.Equal(a, track[a])
	require.Equal(b, track[b])
}

func TestFreezeTrackFollowsMerges(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	c := addNode(g, "C", 200, 0)
	addEdge(g, a, b)
	addEdge(g, b, c)

	snapshot := g.Freeze()
	g.MergeNodes(b, c)

	track := g.FreezeTrack(snapshot)
	require.Equal(c, track[b])
	require.Equal(a, track[a])
	require.Equal(c, track[c])
}

func TestFreezeTrackChain(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 10, 0)
	c := addNode(g, "C", 20, 0)
	addEdge(g, a, b)
	addEdge(g, b, c)

	snapshot := g.Freeze()
	g.MergeNodes(a, b)
	g.MergeNodes(b, c)

	track := g.FreezeTrack(snapshot)
	require.Equal(c, track[a])
	require.Equal(c, track[b])
	require.Equal(c, track[c])
}

func TestFreezeTrackTombstones(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	addEdge(g, a, b)

	snapshot := g.Freeze()
	g.DelNode(b)

	track := g.FreezeTrack(snapshot)
	require.True(track.ContainsKey(a))
	require.False(track.ContainsKey(b))
}

func TestFreezeSnapshotsAreIndependent(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	addEdge(g, a, b)

	first := g.Freeze()
	g.MergeNodes(a, b)
	second := g.Freeze()

	require.NotEqual(first, second)
	require.Equal(2, g.FreezeTrack(first).Length())
	require.Equal(1, g.FreezeTrack(second).Length())

	// an unknown snapshot id resolves to nothing
	require.Equal(0, g.FreezeTrack(99).Length())
}

func TestFreezeRegistryResolve(t *testing.T) {
	require := require.New(t)

	registry := graph.NewFreezeRegistry()
	registry.RecordMerge(1, 2)
	registry.RecordMerge(2, 3)

	resolved := registry.Resolve(1)
	require.True(resolved.HasValue())
	require.Equal(int32(3), resolved.Value)

	registry.RecordDelete(3)
	require.False(registry.Resolve(1).HasValue())
}
