package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ttpr0/go-transitmap/geo"
	"github.com/ttpr0/go-transitmap/graph"
)

func buildGraph() *graph.TransitGraph {
	return graph.NewTransitGraph(100)
}

func addNode(g *graph.TransitGraph, id string, x, y float64) int32 {
	return g.AddNode(graph.NewNodePL(id, geo.Coord{x, y}))
}

func addEdge(g *graph.TransitGraph, a, b int32) int32 {
	geom := geo.NewPolyLine(g.GetNode(a).Pos, g.GetNode(b).Pos)
	inserted := g.AddEdge(a, b, geom)
	return inserted.Value
}

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	inserted := g.AddEdge(a, a, geo.NewPolyLine(geo.Coord{0, 0}, geo.Coord{0, 0}))
	require.False(inserted.HasValue())
	require.Equal(0, g.EdgeCount())
}

func TestAddEdgeMergesParallel(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	e1 := addEdge(g, a, b)
	e2 := addEdge(g, b, a)
	require.Equal(e1, e2)
	require.Equal(1, g.EdgeCount())
}

func TestGetEdgeBetweenAbsent(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	require.False(g.GetEdgeBetween(a, b).HasValue())

	e := addEdge(g, a, b)
	found := g.GetEdgeBetween(b, a)
	require.True(found.HasValue())
	require.Equal(e, found.Value)
}

func TestRouteOccDedup(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	e := addEdge(g, a, b)
	r1 := g.AddRoute(&graph.Route{ID: "R1"})

	edge := g.GetEdge(e)
	edge.AddRouteOcc(r1, graph.DIR_TO)
	edge.AddRouteOcc(r1, graph.DIR_TO)
	require.Equal(1, edge.Routes.Length())

	// a different direction is a different occurrence
	edge.AddRouteOcc(r1, graph.DIR_FROM)
	require.Equal(2, edge.Routes.Length())
}

func TestAddRouteOccAsFlips(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	e := addEdge(g, a, b)
	r1 := g.AddRoute(&graph.Route{ID: "R1"})

	// direction relative to b as from-node lands reversed on the edge
	g.GetEdge(e).AddRouteOccAs(r1, graph.DIR_TO, b)
	require.Equal(graph.DIR_FROM, g.GetEdge(e).Routes[0].Dir)
}

func TestExceptionSymmetry(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	c := addNode(g, "C", 200, 0)
	e1 := addEdge(g, a, b)
	e2 := addEdge(g, b, c)
	r1 := g.AddRoute(&graph.Route{ID: "R1"})

	require.True(g.ConnOccurs(b, r1, e1, e2))
	g.AddRouteConnException(b, r1, e1, e2)
	require.False(g.ConnOccurs(b, r1, e1, e2))
	require.False(g.ConnOccurs(b, r1, e2, e1))

	// other routes stay unaffected
	r2 := g.AddRoute(&graph.Route{ID: "R2"})
	require.True(g.ConnOccurs(b, r2, e1, e2))

	require.NoError(g.CheckInvariants(1e-6))
}

func TestDelEdgeCleansExceptions(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	c := addNode(g, "C", 200, 0)
	e1 := addEdge(g, a, b)
	e2 := addEdge(g, b, c)
	r1 := g.AddRoute(&graph.Route{ID: "R1"})
	g.AddRouteConnException(b, r1, e1, e2)

	g.DelEdge(e1)
	require.Equal(0, g.GetNode(b).ConnExc.Length())
	require.True(g.ConnOccurs(b, r1, e1, e2))
	require.NoError(g.CheckInvariants(1e-6))
}

func TestMergeNodesReparents(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	c := addNode(g, "C", 100, 10)
	d := addNode(g, "D", 200, 0)
	addEdge(g, a, b)
	addEdge(g, b, d)
	e3 := addEdge(g, c, d)

	// contract c into b, its edge to d re-parents and folds into b-d
	g.MergeNodes(c, b)
	require.False(g.IsNode(c))
	require.False(g.IsEdge(e3))
	require.Equal(2, g.EdgeCount())
	require.Equal(2, g.GetNode(b).Degree())
	require.NoError(g.CheckInvariants(1e-6))
}

func TestMergeNodesUnionsRoutes(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	c := addNode(g, "C", 100, 10)
	d := addNode(g, "D", 200, 0)
	e1 := addEdge(g, b, d)
	e2 := addEdge(g, c, d)
	_ = a
	r1 := g.AddRoute(&graph.Route{ID: "R1"})
	r2 := g.AddRoute(&graph.Route{ID: "R2"})
	g.GetEdge(e1).AddRouteOcc(r1, graph.DIR_TO)
	g.GetEdge(e2).AddRouteOcc(r2, graph.DIR_TO)

	g.MergeNodes(c, b)
	survivor := g.GetEdgeBetween(b, d)
	require.True(survivor.HasValue())
	edge := g.GetEdge(survivor.Value)
	require.Equal(2, edge.Routes.Length())
	require.True(edge.HasRoute(r1))
	require.True(edge.HasRoute(r2))
}

func TestMergeNodesTransfersStations(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	addEdge(g, a, b)
	g.GetNode(a).AddStation(graph.Station{ID: "s1", Label: "Main St", Pos: geo.Coord{0, 0}})

	g.MergeNodes(a, b)
	require.Equal(1, g.GetNode(b).Stations.Length())
	require.Equal("s1", g.GetNode(b).Stations[0].ID)
	// the connecting edge vanished with the contraction
	require.Equal(0, g.EdgeCount())
}

func TestSplitEdge(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	e := addEdge(g, a, b)
	r1 := g.AddRoute(&graph.Route{ID: "R1"})
	g.GetEdge(e).AddRouteOcc(r1, graph.DIR_TO)

	mid, left, right := g.SplitEdge(e, 40, 1)
	require.False(g.IsEdge(e))
	require.True(g.IsEdge(left))
	require.True(g.IsEdge(right))
	require.Equal(geo.Coord{40, 0}, g.GetNode(mid).Pos)
	require.InDelta(40.0, g.GetEdge(left).Geom.Length(), 1e-9)
	require.InDelta(60.0, g.GetEdge(right).Geom.Length(), 1e-9)
	// occurrences carried to both halves
	require.True(g.GetEdge(left).HasRoute(r1))
	require.True(g.GetEdge(right).HasRoute(r1))
	// origins inherited from the parent
	require.True(g.GetEdge(left).Origins[e])
	require.True(g.GetEdge(right).Origins[e])
	require.NoError(g.CheckInvariants(1e-6))
}

func TestSplitEdgeSnapsToEndpoints(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	e := addEdge(g, a, b)

	node, left, right := g.SplitEdge(e, 0.5, 1)
	require.Equal(a, node)
	require.Equal(int32(-1), left)
	require.Equal(int32(-1), right)
	require.True(g.IsEdge(e))

	node, _, _ = g.SplitEdge(e, 99.8, 1)
	require.Equal(b, node)
	require.True(g.IsEdge(e))
}

func TestDelNodeDropsIncidentEdges(t *testing.T) {
	require := require.New(t)

	g := buildGraph()
	a := addNode(g, "A", 0, 0)
	b := addNode(g, "B", 100, 0)
	c := addNode(g, "C", 200, 0)
	addEdge(g, a, b)
	addEdge(g, b, c)

	g.DelNode(b)
	require.False(g.IsNode(b))
	require.Equal(0, g.EdgeCount())
	require.Equal(0, g.GetNode(a).Degree())
	require.NoError(g.CheckInvariants(1e-6))
}
