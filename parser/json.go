package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ttpr0/go-transitmap/geo"
	"github.com/ttpr0/go-transitmap/graph"
	. "github.com/ttpr0/go-transitmap/util"
	"golang.org/x/exp/slog"
)

//*******************************************
// json graph input
//*******************************************

func ReadJSON(r io.Reader, cellsize float64) (*graph.TransitGraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := GraphDoc{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", graph.ErrInputMalformed, err)
	}
	return BuildGraph(doc, cellsize)
}

// Builds a transit graph from a graph document. Edges referencing
// unknown node ids fail the build, degenerate edges are dropped.
func BuildGraph(doc GraphDoc, cellsize float64) (*graph.TransitGraph, error) {
	g := graph.NewTransitGraph(cellsize)

	node_ids := NewDict[string, int32](len(doc.Nodes))
	for _, node := range doc.Nodes {
		if node_ids.ContainsKey(node.ID) {
			return nil, fmt.Errorf("%w: duplicate node id %v", graph.ErrInputMalformed, node.ID)
		}
		pl := graph.NewNodePL(node.ID, geo.Coord{node.X, node.Y})
		for _, station := range node.Stations {
			pl.AddStation(graph.Station{
				ID:    station.ID,
				Label: station.Label,
				Pos:   geo.Coord{station.X, station.Y},
			})
		}
		node_ids[node.ID] = g.AddNode(pl)
	}

	edge_ids := NewArray[int32](len(doc.Edges))
	for i, edge := range doc.Edges {
		edge_ids[i] = -1
		if !node_ids.ContainsKey(edge.From) || !node_ids.ContainsKey(edge.To) {
			return nil, fmt.Errorf("%w: edge %v-%v references unknown node", graph.ErrInputMalformed, edge.From, edge.To)
		}
		from := node_ids[edge.From]
		to := node_ids[edge.To]

		coords := make([]geo.Coord, 0, len(edge.Polyline))
		for _, c := range edge.Polyline {
			coords = append(coords, geo.Coord(c))
		}
		if len(coords) < 2 {
			coords = []geo.Coord{g.GetNode(from).Pos, g.GetNode(to).Pos}
		}
		geom := geo.NewPolyLine(coords...)
		if from == to || geom.Length() == 0 {
			slog.Warn(graph.ErrGeometryDegenerate.Error()+", dropping edge", "from", edge.From, "to", edge.To)
			continue
		}

		inserted := g.AddEdge(from, to, geom)
		if !inserted.HasValue() {
			continue
		}
		edge_ids[i] = inserted.Value
		pl := g.GetEdge(inserted.Value)
		for _, line := range edge.Lines {
			route := g.AddRoute(&graph.Route{ID: line.ID, Label: line.Label, Color: line.Color})
			dir := graph.Direction(line.Direction)
			if dir > graph.DIR_TO {
				dir = graph.DIR_NONE
			}
			pl.AddRouteOccAs(route, dir, from)
		}
	}

	// exceptions resolve against the edge array, apply them after all
	// edges exist
	for _, node := range doc.Nodes {
		nid := node_ids[node.ID]
		for _, exc := range node.ExcludedConn {
			if exc.EdgeA < 0 || exc.EdgeA >= len(edge_ids) || exc.EdgeB < 0 || exc.EdgeB >= len(edge_ids) {
				return nil, fmt.Errorf("%w: exception at node %v references unknown edge", graph.ErrInputMalformed, node.ID)
			}
			ea := edge_ids[exc.EdgeA]
			eb := edge_ids[exc.EdgeB]
			if ea == -1 || eb == -1 {
				continue
			}
			route := g.GetRoute(exc.Route)
			if !route.HasValue() {
				return nil, fmt.Errorf("%w: exception at node %v references unknown route %v", graph.ErrInputMalformed, node.ID, exc.Route)
			}
			g.AddRouteConnException(nid, route.Value, ea, eb)
		}
	}

	return g, nil
}
