package parser

import (
	"context"
	"os"
	"runtime"
	"strconv"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/ttpr0/go-transitmap/geo"
	"github.com/ttpr0/go-transitmap/graph"
	. "github.com/ttpr0/go-transitmap/util"
	"golang.org/x/exp/slog"
)

//*******************************************
// osm importer
//*******************************************

var OSM_RAILWAYS = Dict[string, bool]{
	"rail":       true,
	"light_rail": true,
	"subway":     true,
	"tram":       true,
}

type osmRoute struct {
	route *graph.Route
	ways  Dict[int64, bool]
	stops Dict[int64, bool]
}

// Builds the initial graph from an .osm.pbf extract: every type=route
// relation over rail infrastructure becomes a route, its member ways
// contribute one edge each, member nodes with role stop become
// stations. Coordinates are projected to web mercator.
func ParseOSM(pbf_file string, cellsize float64) (*graph.TransitGraph, error) {
	file, err := os.Open(pbf_file)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	g := graph.NewTransitGraph(cellsize)

	// first pass: route relations
	routes := NewList[*osmRoute](10)
	way_refs := NewDict[int64, bool](1000)
	scanner := osmpbf.New(context.Background(), file, runtime.GOMAXPROCS(-1))
	scanner.SkipNodes = true
	scanner.SkipWays = true
	for scanner.Scan() {
		relation, ok := scanner.Object().(*osm.Relation)
		if !ok {
			continue
		}
		tags := relation.TagMap()
		if tags["type"] != "route" || !OSM_RAILWAYS[tags["route"]] {
			continue
		}
		id := tags["ref"]
		if id == "" {
			id = strconv.FormatInt(int64(relation.ID), 10)
		}
		route := &osmRoute{
			route: &graph.Route{ID: id, Label: tags["name"], Color: tags["colour"]},
			ways:  NewDict[int64, bool](16),
			stops: NewDict[int64, bool](16),
		}
		for _, member := range relation.Members {
			switch member.Type {
			case osm.TypeWay:
				route.ways[member.Ref] = true
				way_refs[member.Ref] = true
			case osm.TypeNode:
				if member.Role == "stop" {
					route.stops[member.Ref] = true
				}
			}
		}
		routes.Add(route)
	}
	scanner.Close()

	// second pass: member ways and their node refs
	file.Seek(0, 0)
	ways := NewDict[int64, []int64](way_refs.Length())
	node_refs := NewDict[int64, bool](way_refs.Length() * 8)
	scanner = osmpbf.New(context.Background(), file, runtime.GOMAXPROCS(-1))
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !way_refs[int64(way.ID)] {
			continue
		}
		refs := make([]int64, 0, len(way.Nodes))
		for _, id := range way.Nodes.NodeIDs() {
			refs = append(refs, int64(id))
			node_refs[int64(id)] = true
		}
		ways[int64(way.ID)] = refs
	}
	scanner.Close()

	// third pass: node coordinates and stop names
	file.Seek(0, 0)
	coords := NewDict[int64, geo.Coord](node_refs.Length())
	names := NewDict[int64, string](100)
	stop_coords := NewDict[int64, geo.Coord](100)
	scanner = osmpbf.New(context.Background(), file, runtime.GOMAXPROCS(-1))
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		id := int64(node.ID)
		pos := geo.LatLngToWebMerc(node.Lat, node.Lon)
		if node_refs[id] {
			coords[id] = pos
		}
		tags := node.TagMap()
		if tags["name"] != "" {
			names[id] = tags["name"]
		}
		stop_coords[id] = pos
	}
	scanner.Close()

	// assemble: one edge per member way, endpoints shared across ways
	node_ids := NewDict[int64, int32](1000)
	getNode := func(ref int64) int32 {
		if id, ok := node_ids[ref]; ok {
			return id
		}
		id := g.AddNode(graph.NewNodePL(strconv.FormatInt(ref, 10), coords[ref]))
		node_ids[ref] = id
		return id
	}

	for _, route := range routes {
		r := g.AddRoute(route.route)
		for way_id := range route.ways {
			refs, ok := ways[way_id]
			if !ok || len(refs) < 2 {
				continue
			}
			line := make([]geo.Coord, 0, len(refs))
			for _, ref := range refs {
				if c, ok := coords[ref]; ok {
					line = append(line, c)
				}
			}
			if len(line) < 2 {
				slog.Warn("way without usable geometry, skipping", "way", way_id)
				continue
			}
			from := getNode(refs[0])
			to := getNode(refs[len(refs)-1])
			if from == to {
				continue
			}
			geom := geo.NewPolyLine(line...).WithFirst(g.GetNode(from).Pos).WithLast(g.GetNode(to).Pos)
			inserted := g.AddEdge(from, to, geom)
			if !inserted.HasValue() {
				continue
			}
			g.GetEdge(inserted.Value).AddRouteOccAs(r, graph.DIR_NONE, from)
		}
		for stop_ref := range route.stops {
			pos, ok := stop_coords[stop_ref]
			if !ok {
				continue
			}
			station := graph.Station{
				ID:    strconv.FormatInt(stop_ref, 10),
				Label: names[stop_ref],
				Pos:   pos,
			}
			// attach to the nearest route node
			best := int32(-1)
			best_dist := float64(-1)
			for _, nid := range g.NeighborNodes(pos, 500) {
				d := geo.Dist(pos, g.GetNode(nid).Pos)
				if best == -1 || d < best_dist {
					best = nid
					best_dist = d
				}
			}
			if best == -1 {
				continue
			}
			g.GetNode(best).AddStation(station)
		}
	}

	return g, nil
}
