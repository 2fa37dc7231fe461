package parser_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ttpr0/go-transitmap/graph"
	"github.com/ttpr0/go-transitmap/output"
	"github.com/ttpr0/go-transitmap/parser"
)

const SAMPLE = `{
	"nodes": [
		{"id": "A", "x": 0, "y": 0, "stations": [{"id": "s1", "label": "Main St", "x": 0, "y": 0}]},
		{"id": "B", "x": 100, "y": 0},
		{"id": "C", "x": 200, "y": 0}
	],
	"edges": [
		{"from": "A", "to": "B", "polyline": [[0,0],[50,1],[100,0]], "lines": [{"id": "R1", "label": "1", "color": "ff0000", "direction": 2}]},
		{"from": "B", "to": "C", "polyline": [[100,0],[200,0]], "lines": [{"id": "R1", "label": "1", "color": "ff0000", "direction": 2}, {"id": "R2", "label": "2", "color": "00ff00", "direction": 0}]}
	]
}`

func TestReadJSON(t *testing.T) {
	require := require.New(t)

	g, err := parser.ReadJSON(strings.NewReader(SAMPLE), 100)
	require.NoError(err)
	require.Equal(3, g.NodeCount())
	require.Equal(2, g.EdgeCount())
	routes := g.Routes()
	require.Equal(2, routes.Length())
	require.NoError(g.CheckInvariants(1e-6))

	route := g.GetRoute("R1")
	require.True(route.HasValue())
	require.Equal("1", route.Value.Label)
	require.Equal("ff0000", route.Value.Color)

	// station landed on its node
	found := false
	for _, nid := range g.Nodes() {
		node := g.GetNode(nid)
		if node.ID == "A" {
			require.Equal(1, node.Stations.Length())
			require.Equal("Main St", node.Stations[0].Label)
			found = true
		}
	}
	require.True(found)
}

func TestReadJSONUnknownNode(t *testing.T) {
	require := require.New(t)

	malformed := `{"nodes": [{"id": "A", "x": 0, "y": 0}], "edges": [{"from": "A", "to": "Z", "polyline": [], "lines": []}]}`
	_, err := parser.ReadJSON(strings.NewReader(malformed), 100)
	require.ErrorIs(err, graph.ErrInputMalformed)
}

func TestReadJSONDropsDegenerateEdges(t *testing.T) {
	require := require.New(t)

	degenerate := `{
		"nodes": [{"id": "A", "x": 0, "y": 0}, {"id": "B", "x": 0, "y": 0}],
		"edges": [{"from": "A", "to": "B", "polyline": [[0,0],[0,0]], "lines": []}]
	}`
	g, err := parser.ReadJSON(strings.NewReader(degenerate), 100)
	require.NoError(err)
	require.Equal(0, g.EdgeCount())
}

func TestJSONRoundTrip(t *testing.T) {
	require := require.New(t)

	g, err := parser.ReadJSON(strings.NewReader(SAMPLE), 100)
	require.NoError(err)

	// bake an exception in, it must survive the round trip
	b := int32(-1)
	for _, nid := range g.Nodes() {
		if g.GetNode(nid).ID == "B" {
			b = nid
		}
	}
	edges := g.GetNode(b).Edges
	g.AddRouteConnException(b, g.GetRoute("R1").Value, edges[0], edges[1])

	var buf bytes.Buffer
	require.NoError(output.WriteJSON(g, &buf))

	g2, err := parser.ReadJSON(&buf, 100)
	require.NoError(err)
	require.Equal(g.NodeCount(), g2.NodeCount())
	require.Equal(g.EdgeCount(), g2.EdgeCount())
	gRoutes := g.Routes()
	g2Routes := g2.Routes()
	require.Equal(gRoutes.Length(), g2Routes.Length())
	require.NoError(g2.CheckInvariants(1e-6))

	// geometry preserved
	for _, eid := range g2.Edges() {
		edge := g2.GetEdge(eid)
		require.GreaterOrEqual(edge.Geom.PointCount(), 2)
	}

	// the exception came back
	b2 := int32(-1)
	for _, nid := range g2.Nodes() {
		if g2.GetNode(nid).ID == "B" {
			b2 = nid
		}
	}
	require.NotEqual(int32(-1), b2)
	e2 := g2.GetNode(b2).Edges
	require.False(g2.ConnOccurs(b2, g2.GetRoute("R1").Value, e2[0], e2[1]))

	// serializing again yields the identical document
	var buf2 bytes.Buffer
	require.NoError(output.WriteJSON(g2, &buf2))
	var buf3 bytes.Buffer
	require.NoError(output.WriteJSON(g, &buf3))
	require.Equal(buf3.String(), buf2.String())
}

func TestDOTRoundTrip(t *testing.T) {
	require := require.New(t)

	g, err := parser.ReadJSON(strings.NewReader(SAMPLE), 100)
	require.NoError(err)

	var buf bytes.Buffer
	require.NoError(output.WriteDOT(g, &buf))

	g2, err := parser.ReadDOT(&buf, 100)
	require.NoError(err)
	require.Equal(g.NodeCount(), g2.NodeCount())
	require.Equal(g.EdgeCount(), g2.EdgeCount())
	gRoutes := g.Routes()
	g2Routes := g2.Routes()
	require.Equal(gRoutes.Length(), g2Routes.Length())
	require.NoError(g2.CheckInvariants(1e-6))
}

func TestWriteGeoJSON(t *testing.T) {
	require := require.New(t)

	g, err := parser.ReadJSON(strings.NewReader(SAMPLE), 100)
	require.NoError(err)

	var buf bytes.Buffer
	require.NoError(output.WriteGeoJSON(g, &buf))
	out := buf.String()
	require.Contains(out, "FeatureCollection")
	require.Contains(out, "LineString")
	require.Contains(out, "Main St")
}
