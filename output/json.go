package output

import (
	"encoding/json"
	"io"

	"github.com/ttpr0/go-transitmap/graph"
	"github.com/ttpr0/go-transitmap/parser"
	. "github.com/ttpr0/go-transitmap/util"
)

//*******************************************
// json graph output
//*******************************************

// Serializes the graph into the plain interchange schema, including the
// inferred connection exceptions. Parsing the result again yields an
// isomorphic graph.
func BuildDoc(g *graph.TransitGraph) parser.GraphDoc {
	doc := parser.GraphDoc{
		Nodes: make([]parser.NodeDoc, 0, g.NodeCount()),
		Edges: make([]parser.EdgeDoc, 0, g.EdgeCount()),
	}

	edge_index := NewDict[int32, int](g.EdgeCount())
	for i, eid := range g.Edges() {
		edge_index[eid] = i
		edge := g.GetEdge(eid)
		node_a := g.GetNode(edge.NodeA)
		node_b := g.GetNode(edge.NodeB)

		polyline := make([][2]float64, 0, edge.Geom.PointCount())
		for _, c := range edge.Geom.Line() {
			polyline = append(polyline, [2]float64(c))
		}
		lines := make([]parser.LineDoc, 0, edge.Routes.Length())
		for _, occ := range edge.Routes {
			lines = append(lines, parser.LineDoc{
				ID:        occ.Route.ID,
				Label:     occ.Route.Label,
				Color:     occ.Route.Color,
				Direction: int(occ.Dir),
			})
		}
		doc.Edges = append(doc.Edges, parser.EdgeDoc{
			From:     node_a.ID,
			To:       node_b.ID,
			Polyline: polyline,
			Lines:    lines,
		})
	}

	for _, nid := range g.Nodes() {
		node := g.GetNode(nid)
		stations := make([]parser.StationDoc, 0, node.Stations.Length())
		for _, station := range node.Stations {
			stations = append(stations, parser.StationDoc{
				ID:    station.ID,
				Label: station.Label,
				X:     station.Pos[0],
				Y:     station.Pos[1],
			})
		}
		excluded := make([]parser.ExcConnDoc, 0)
		for _, route := range g.Routes() {
			for i := 0; i < node.Edges.Length(); i++ {
				for j := i + 1; j < node.Edges.Length(); j++ {
					ea := node.Edges[i]
					eb := node.Edges[j]
					if g.ConnOccurs(nid, route, ea, eb) {
						continue
					}
					ia := edge_index[ea]
					ib := edge_index[eb]
					if ib < ia {
						ia, ib = ib, ia
					}
					excluded = append(excluded, parser.ExcConnDoc{
						Route: route.ID,
						EdgeA: ia,
						EdgeB: ib,
					})
				}
			}
		}
		doc.Nodes = append(doc.Nodes, parser.NodeDoc{
			ID:           node.ID,
			X:            node.Pos[0],
			Y:            node.Pos[1],
			Stations:     stations,
			ExcludedConn: excluded,
		})
	}

	return doc
}

func WriteJSON(g *graph.TransitGraph, w io.Writer) error {
	doc := BuildDoc(g)
	enc := json.NewEncoder(w)
	return enc.Encode(doc)
}
