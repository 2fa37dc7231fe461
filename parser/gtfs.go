package parser

import (
	"sort"

	"github.com/ttpr0/go-transitmap/geo"
	"github.com/ttpr0/go-transitmap/graph"
	. "github.com/ttpr0/go-transitmap/util"
	"golang.org/x/exp/slog"
)

//*******************************************
// gtfs structs
//*******************************************

type GTFSStop struct {
	ID   string  `csv:"stop_id"`
	Name string  `csv:"stop_name"`
	Lat  float64 `csv:"stop_lat"`
	Lon  float64 `csv:"stop_lon"`
}

type GTFSRoute struct {
	ID        string `csv:"route_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	Color     string `csv:"route_color"`
}

type GTFSTrip struct {
	ID          string `csv:"trip_id"`
	RouteID     string `csv:"route_id"`
	ShapeID     string `csv:"shape_id"`
	DirectionID int    `csv:"direction_id"`
}

type GTFSStopTime struct {
	TripID   string `csv:"trip_id"`
	StopID   string `csv:"stop_id"`
	Sequence int    `csv:"stop_sequence"`
}

type GTFSShapePoint struct {
	ShapeID  string  `csv:"shape_id"`
	Lat      float64 `csv:"shape_pt_lat"`
	Lon      float64 `csv:"shape_pt_lon"`
	Sequence int     `csv:"shape_pt_sequence"`
}

//*******************************************
// gtfs importer
//*******************************************

// Builds the initial trip-per-edge graph from a static GTFS feed
// directory. Every consecutive stop pair of every trip becomes an edge
// carrying the trip's route, geometry is cut from the trip shape where
// one exists. Stop coordinates are projected to web mercator.
func ParseGTFS(gtfs_path string, cellsize float64) (*graph.TransitGraph, error) {
	g := graph.NewTransitGraph(cellsize)

	stops := NewDict[string, GTFSStop](100)
	for stop := range ReadCSVFromFile[GTFSStop](gtfs_path+"/stops.txt", ',') {
		stops[stop.ID] = stop
	}
	routes := NewDict[string, GTFSRoute](10)
	for route := range ReadCSVFromFile[GTFSRoute](gtfs_path+"/routes.txt", ',') {
		routes[route.ID] = route
	}
	trips := NewList[GTFSTrip](100)
	for trip := range ReadCSVFromFile[GTFSTrip](gtfs_path+"/trips.txt", ',') {
		trips.Add(trip)
	}
	stop_times := NewDict[string, List[GTFSStopTime]](trips.Length())
	for st := range ReadCSVFromFile[GTFSStopTime](gtfs_path+"/stop_times.txt", ',') {
		times := stop_times[st.TripID]
		times.Add(st)
		stop_times[st.TripID] = times
	}
	shape_points := NewDict[string, List[GTFSShapePoint]](10)
	for sp := range ReadCSVFromFile[GTFSShapePoint](gtfs_path+"/shapes.txt", ',') {
		points := shape_points[sp.ShapeID]
		points.Add(sp)
		shape_points[sp.ShapeID] = points
	}

	shapes := NewDict[string, geo.PolyLine](shape_points.Length())
	for id, points := range shape_points {
		sort.Slice(points, func(i, j int) bool { return points[i].Sequence < points[j].Sequence })
		coords := make([]geo.Coord, 0, points.Length())
		for _, p := range points {
			coords = append(coords, geo.LatLngToWebMerc(p.Lat, p.Lon))
		}
		if len(coords) >= 2 {
			shapes[id] = geo.NewPolyLine(coords...)
		}
	}

	node_ids := NewDict[string, int32](stops.Length())
	getNode := func(stop GTFSStop) int32 {
		if id, ok := node_ids[stop.ID]; ok {
			return id
		}
		pos := geo.LatLngToWebMerc(stop.Lat, stop.Lon)
		pl := graph.NewNodePL(stop.ID, pos)
		pl.AddStation(graph.Station{ID: stop.ID, Label: stop.Name, Pos: pos})
		id := g.AddNode(pl)
		node_ids[stop.ID] = id
		return id
	}

	for _, trip := range trips {
		times, ok := stop_times[trip.ID]
		if !ok || times.Length() < 2 {
			continue
		}
		sort.Slice(times, func(i, j int) bool { return times[i].Sequence < times[j].Sequence })

		gtfs_route, ok := routes[trip.RouteID]
		if !ok {
			slog.Warn("trip references unknown route, skipping", "trip", trip.ID, "route", trip.RouteID)
			continue
		}
		label := gtfs_route.ShortName
		if label == "" {
			label = gtfs_route.LongName
		}
		route := g.AddRoute(&graph.Route{ID: gtfs_route.ID, Label: label, Color: gtfs_route.Color})

		// stop times are in travel order, the occurrence always points
		// towards the hop's to-stop
		dir := graph.DIR_TO

		shape, has_shape := shapes[trip.ShapeID]

		for i := 0; i < times.Length()-1; i++ {
			stop_a, ok_a := stops[times[i].StopID]
			stop_b, ok_b := stops[times[i+1].StopID]
			if !ok_a || !ok_b {
				slog.Warn("stop time references unknown stop, skipping hop", "trip", trip.ID)
				continue
			}
			from := getNode(stop_a)
			to := getNode(stop_b)
			if from == to {
				continue
			}

			pos_a := g.GetNode(from).Pos
			pos_b := g.GetNode(to).Pos
			geom := geo.NewPolyLine(pos_a, pos_b)
			if has_shape {
				// cut the hop geometry out of the trip shape
				proj_a := shape.ProjectOn(pos_a)
				proj_b := shape.ProjectOn(pos_b)
				if proj_b.Dist > proj_a.Dist {
					geom = shape.SegmentDist(proj_a.Dist, proj_b.Dist).WithFirst(pos_a).WithLast(pos_b)
				}
			}
			if geom.Length() == 0 {
				continue
			}

			inserted := g.AddEdge(from, to, geom)
			if !inserted.HasValue() {
				continue
			}
			g.GetEdge(inserted.Value).AddRouteOccAs(route, dir, from)
		}
	}

	return g, nil
}
