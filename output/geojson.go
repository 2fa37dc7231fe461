package output

import (
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/ttpr0/go-transitmap/graph"
)

//*******************************************
// geojson graph output
//*******************************************

// Renders the graph as a FeatureCollection: one point feature per node,
// one linestring feature per edge. Handy for dropping the result onto
// any geojson-aware map viewer.
func WriteGeoJSON(g *graph.TransitGraph, w io.Writer) error {
	fc := geojson.NewFeatureCollection()

	for _, nid := range g.Nodes() {
		node := g.GetNode(nid)
		feature := geojson.NewFeature(orb.Point(node.Pos))
		feature.Properties["id"] = node.ID
		feature.Properties["deg"] = node.Degree()
		if node.Stations.Length() > 0 {
			stations := make([]map[string]any, 0, node.Stations.Length())
			for _, station := range node.Stations {
				stations = append(stations, map[string]any{
					"id":    station.ID,
					"label": station.Label,
				})
			}
			feature.Properties["stations"] = stations
		}
		if node.ConnExc.Length() > 0 {
			excluded := make([]map[string]any, 0)
			for _, route := range g.Routes() {
				for i := 0; i < node.Edges.Length(); i++ {
					for j := i + 1; j < node.Edges.Length(); j++ {
						if g.ConnOccurs(nid, route, node.Edges[i], node.Edges[j]) {
							continue
						}
						excluded = append(excluded, map[string]any{
							"route":  route.ID,
							"edge_a": int(node.Edges[i]),
							"edge_b": int(node.Edges[j]),
						})
					}
				}
			}
			feature.Properties["excluded_conn"] = excluded
		}
		fc.Append(feature)
	}

	for _, eid := range g.Edges() {
		edge := g.GetEdge(eid)
		feature := geojson.NewFeature(edge.Geom.Line())
		feature.Properties["id"] = int(eid)
		feature.Properties["from"] = g.GetNode(edge.NodeA).ID
		feature.Properties["to"] = g.GetNode(edge.NodeB).ID
		lines := make([]map[string]any, 0, edge.Routes.Length())
		for _, occ := range edge.Routes {
			lines = append(lines, map[string]any{
				"id":        occ.Route.ID,
				"label":     occ.Route.Label,
				"color":     occ.Route.Color,
				"direction": int(occ.Dir),
			})
		}
		feature.Properties["lines"] = lines
		fc.Append(feature)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
