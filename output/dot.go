package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ttpr0/go-transitmap/graph"
)

//*******************************************
// dot graph output
//*******************************************

// Writes the DOT dialect the parser package reads back, mainly for
// eyeballing intermediate graphs with standard tooling.
func WriteDOT(g *graph.TransitGraph, w io.Writer) error {
	var b strings.Builder
	b.WriteString("graph transitmap {\n")

	for _, nid := range g.Nodes() {
		node := g.GetNode(nid)
		b.WriteString(fmt.Sprintf("  \"%s\" [x=%g, y=%g", node.ID, node.Pos[0], node.Pos[1]))
		if node.Stations.Length() > 0 {
			stations := make([]string, 0, node.Stations.Length())
			for _, station := range node.Stations {
				stations = append(stations, fmt.Sprintf("%s;%s;%g;%g", station.ID, station.Label, station.Pos[0], station.Pos[1]))
			}
			b.WriteString(fmt.Sprintf(", stations=\"%s\"", strings.Join(stations, "|")))
		}
		b.WriteString("];\n")
	}

	for _, eid := range g.Edges() {
		edge := g.GetEdge(eid)
		coords := make([]string, 0, edge.Geom.PointCount())
		for _, c := range edge.Geom.Line() {
			coords = append(coords, fmt.Sprintf("%g,%g", c[0], c[1]))
		}
		lines := make([]string, 0, edge.Routes.Length())
		for _, occ := range edge.Routes {
			lines = append(lines, fmt.Sprintf("%s;%s;%s;%d", occ.Route.ID, occ.Route.Label, occ.Route.Color, occ.Dir))
		}
		b.WriteString(fmt.Sprintf("  \"%s\" -- \"%s\" [geom=\"%s\", lines=\"%s\"];\n",
			g.GetNode(edge.NodeA).ID, g.GetNode(edge.NodeB).ID,
			strings.Join(coords, " "), strings.Join(lines, "|")))
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}
