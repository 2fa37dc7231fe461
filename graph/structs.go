package graph

import (
	"github.com/ttpr0/go-transitmap/geo"
	. "github.com/ttpr0/go-transitmap/util"
)

//*******************************************
// routes and stations
//*******************************************

// Immutable after registration, owned by the graph's route registry.
// Edges reference routes, they never own them.
type Route struct {
	ID    string
	Label string
	Color string
}

type Station struct {
	ID    string
	Label string
	Pos   geo.Coord
}

//*******************************************
// route occurrence
//*******************************************

// A route travelling over an edge in a given orientation. Identity
// within an edge is (route id, direction).
type RouteOcc struct {
	Route *Route
	Dir   Direction
}

//*******************************************
// node payload
//*******************************************

type NodePL struct {
	ID       string
	Pos      geo.Coord
	Stations List[Station]
	// incident edge ids, undirected
	Edges List[int32]
	// route id -> edge id -> set of edge ids the route does NOT
	// continue to, kept symmetric
	ConnExc Dict[string, Dict[int32, Dict[int32, bool]]]
}

func NewNodePL(id string, pos geo.Coord) *NodePL {
	return &NodePL{
		ID:      id,
		Pos:     pos,
		Edges:   NewList[int32](4),
		ConnExc: NewDict[string, Dict[int32, Dict[int32, bool]]](0),
	}
}

func (self *NodePL) AddStation(station Station) {
	for _, s := range self.Stations {
		if s.ID == station.ID {
			return
		}
	}
	self.Stations.Add(station)
}

func (self *NodePL) HasEdge(edge int32) bool {
	for _, e := range self.Edges {
		if e == edge {
			return true
		}
	}
	return false
}

func (self *NodePL) Degree() int {
	return self.Edges.Length()
}

//*******************************************
// edge payload
//*******************************************

type EdgePL struct {
	NodeA int32
	NodeB int32
	Geom  geo.PolyLine
	// ordered, unique by (route id, direction)
	Routes List[RouteOcc]
	// input edge ids this edge descends from, carried through splits
	// and merges so later phases can match edges against snapshots
	Origins Dict[int32, bool]
}

func NewEdgePL(a int32, b int32, geom geo.PolyLine) *EdgePL {
	return &EdgePL{
		NodeA:   a,
		NodeB:   b,
		Geom:    geom,
		Routes:  NewList[RouteOcc](2),
		Origins: NewDict[int32, bool](2),
	}
}

func (self *EdgePL) OtherNode(node int32) int32 {
	if self.NodeA == node {
		return self.NodeB
	}
	return self.NodeA
}

func (self *EdgePL) HasNode(node int32) bool {
	return self.NodeA == node || self.NodeB == node
}

// Adds an occurrence, deduplicating on (route id, direction).
func (self *EdgePL) AddRouteOcc(route *Route, dir Direction) {
	for _, occ := range self.Routes {
		if occ.Route.ID == route.ID && occ.Dir == dir {
			return
		}
	}
	self.Routes.Add(RouteOcc{Route: route, Dir: dir})
}

// Adds an occurrence whose direction is expressed relative to an edge
// with from-node node_a, flipping it if this edge is oriented the other
// way around.
func (self *EdgePL) AddRouteOccAs(route *Route, dir Direction, node_a int32) {
	if self.NodeA != node_a {
		dir = dir.Reversed()
	}
	self.AddRouteOcc(route, dir)
}

func (self *EdgePL) HasRoute(route *Route) bool {
	for _, occ := range self.Routes {
		if occ.Route.ID == route.ID {
			return true
		}
	}
	return false
}

func (self *EdgePL) GetRouteOcc(route *Route) Optional[RouteOcc] {
	for _, occ := range self.Routes {
		if occ.Route.ID == route.ID {
			return Some(occ)
		}
	}
	return None[RouteOcc]()
}

// True if a trip on the route can travel into the given endpoint.
func (self *EdgePL) RoutableTowards(occ RouteOcc, node int32) bool {
	if occ.Dir == DIR_NONE {
		return true
	}
	if self.NodeA == node {
		return occ.Dir == DIR_FROM
	}
	return occ.Dir == DIR_TO
}

// True if a trip on the route can travel out of the given endpoint.
func (self *EdgePL) RoutableFrom(occ RouteOcc, node int32) bool {
	if occ.Dir == DIR_NONE {
		return true
	}
	if self.NodeA == node {
		return occ.Dir == DIR_TO
	}
	return occ.Dir == DIR_FROM
}
