package topo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ttpr0/go-transitmap/graph"
	"github.com/ttpr0/go-transitmap/topo"
)

// Two junctions collapse into one, the inferrer severs the route
// continuations the merged topology would newly allow.
func TestInferRestoresOriginalContinuations(t *testing.T) {
	require := require.New(t)

	cfg := testConfig()
	g := buildGraph()
	r1 := g.AddRoute(&graph.Route{ID: "R1"})

	a := addNode(g, "A", 0, 0)
	n1 := addNode(g, "N1", 100, 0)
	b := addNode(g, "B", 200, 0)
	c := addNode(g, "C", 0, 10)
	n2 := addNode(g, "N2", 100, 10)
	d := addNode(g, "D", 200, 10)
	e1 := addEdge(g, a, n1, r1, graph.DIR_NONE)
	e2 := addEdge(g, n1, b, r1, graph.DIR_NONE)
	e3 := addEdge(g, c, n2, r1, graph.DIR_NONE)
	e4 := addEdge(g, n2, d, r1, graph.DIR_NONE)

	ri := topo.NewRestrInferrer(&cfg, g)
	ri.Init()
	snapshot := g.Freeze()

	// collapse the two junctions into one
	g.MergeNodes(n2, n1)

	ri.Infer(g.FreezeTrack(snapshot))

	// original continuations survive
	require.True(g.ConnOccurs(n1, r1, e1, e2))
	require.True(g.ConnOccurs(n1, r1, e3, e4))
	// cross continuations were never driven and get severed
	require.False(g.ConnOccurs(n1, r1, e1, e3))
	require.False(g.ConnOccurs(n1, r1, e1, e4))
	require.False(g.ConnOccurs(n1, r1, e2, e3))
	require.False(g.ConnOccurs(n1, r1, e2, e4))
	require.NoError(g.CheckInvariants(1e-6))
}

// Continuations permitted through directions stay open, opposing
// directions never count as continuations in the first place.
func TestInferRespectsDirections(t *testing.T) {
	require := require.New(t)

	cfg := testConfig()
	g := buildGraph()
	r1 := g.AddRoute(&graph.Route{ID: "R1"})

	a := addNode(g, "A", 0, 0)
	n := addNode(g, "N", 100, 0)
	b := addNode(g, "B", 200, 0)
	e1 := addEdge(g, a, n, r1, graph.DIR_TO)
	e2 := addEdge(g, n, b, r1, graph.DIR_FROM)

	ri := topo.NewRestrInferrer(&cfg, g)
	ri.Init()
	snapshot := g.Freeze()
	ri.Infer(g.FreezeTrack(snapshot))

	// a dead-end reversal is not a continuation, no exception needed
	require.True(g.ConnOccurs(n, r1, e1, e2))
}

// Snapshots of nodes that vanished entirely are discarded.
func TestInferDiscardsDeletedNodes(t *testing.T) {
	require := require.New(t)

	cfg := testConfig()
	g := buildGraph()
	r1 := g.AddRoute(&graph.Route{ID: "R1"})

	a := addNode(g, "A", 0, 0)
	n := addNode(g, "N", 100, 0)
	b := addNode(g, "B", 200, 0)
	addEdge(g, a, n, r1, graph.DIR_NONE)
	addEdge(g, n, b, r1, graph.DIR_NONE)

	ri := topo.NewRestrInferrer(&cfg, g)
	ri.Init()
	snapshot := g.Freeze()

	g.DelNode(n)
	ri.Infer(g.FreezeTrack(snapshot))
	require.NoError(g.CheckInvariants(1e-6))
}

// Identity collapse: nothing moved, nothing gets severed.
func TestInferIdentity(t *testing.T) {
	require := require.New(t)

	cfg := testConfig()
	g := buildGraph()
	r1 := g.AddRoute(&graph.Route{ID: "R1"})

	a := addNode(g, "A", 0, 0)
	n := addNode(g, "N", 100, 0)
	b := addNode(g, "B", 200, 0)
	e1 := addEdge(g, a, n, r1, graph.DIR_NONE)
	e2 := addEdge(g, n, b, r1, graph.DIR_NONE)

	ri := topo.NewRestrInferrer(&cfg, g)
	ri.Init()
	snapshot := g.Freeze()
	ri.Infer(g.FreezeTrack(snapshot))

	require.True(g.ConnOccurs(n, r1, e1, e2))
	require.Equal(0, g.GetNode(n).ConnExc.Length())
}
