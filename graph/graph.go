package graph

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/ttpr0/go-transitmap/geo"
	. "github.com/ttpr0/go-transitmap/util"
)

//*******************************************
// transit graph
//*******************************************

// Undirected geometric graph over NodePL/EdgePL payloads. The graph owns
// all nodes and edges in central containers, nodes hold non-owning edge
// id lists. Any mutation invalidates raw ids held by callers across
// phases, long-lived references go through the freeze registry.
type TransitGraph struct {
	nodes     Dict[int32, *NodePL]
	edges     Dict[int32, *EdgePL]
	routes    Dict[string, *Route]
	node_grid geo.Grid[int32]
	edge_grid geo.Grid[int32]
	freeze    *FreezeRegistry
	next_node int32
	next_edge int32
}

func NewTransitGraph(cellsize float64) *TransitGraph {
	return &TransitGraph{
		nodes:     NewDict[int32, *NodePL](100),
		edges:     NewDict[int32, *EdgePL](100),
		routes:    NewDict[string, *Route](10),
		node_grid: geo.NewGrid[int32](cellsize),
		edge_grid: geo.NewGrid[int32](cellsize),
		freeze:    NewFreezeRegistry(),
	}
}

//*******************************************
// accessors
//*******************************************

func (self *TransitGraph) NodeCount() int {
	return self.nodes.Length()
}

func (self *TransitGraph) EdgeCount() int {
	return self.edges.Length()
}

func (self *TransitGraph) IsNode(node int32) bool {
	return self.nodes.ContainsKey(node)
}

func (self *TransitGraph) IsEdge(edge int32) bool {
	return self.edges.ContainsKey(edge)
}

func (self *TransitGraph) GetNode(node int32) *NodePL {
	return self.nodes[node]
}

func (self *TransitGraph) GetEdge(edge int32) *EdgePL {
	return self.edges[edge]
}

// Node ids in ascending order, for deterministic iteration.
func (self *TransitGraph) Nodes() List[int32] {
	ret := NewList[int32](self.nodes.Length())
	for id := range self.nodes {
		ret.Add(id)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// Edge ids in ascending order, for deterministic iteration.
func (self *TransitGraph) Edges() List[int32] {
	ret := NewList[int32](self.edges.Length())
	for id := range self.edges {
		ret.Add(id)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// The edge between two nodes, absent if none exists.
func (self *TransitGraph) GetEdgeBetween(a int32, b int32) Optional[int32] {
	node := self.nodes[a]
	if node == nil {
		return None[int32]()
	}
	for _, eid := range node.Edges {
		edge := self.edges[eid]
		if edge.OtherNode(a) == b {
			return Some(eid)
		}
	}
	return None[int32]()
}

func (self *TransitGraph) BBox() orb.Bound {
	bound := orb.Bound{}
	first := true
	for _, node := range self.nodes {
		if first {
			bound = orb.Bound{Min: node.Pos, Max: node.Pos}
			first = false
		} else {
			bound = bound.Extend(node.Pos)
		}
	}
	for _, edge := range self.edges {
		bound = bound.Union(edge.Geom.Bound())
	}
	return bound
}

//*******************************************
// route registry
//*******************************************

func (self *TransitGraph) AddRoute(route *Route) *Route {
	if existing, ok := self.routes[route.ID]; ok {
		return existing
	}
	self.routes[route.ID] = route
	return route
}

func (self *TransitGraph) GetRoute(id string) Optional[*Route] {
	if route, ok := self.routes[id]; ok {
		return Some(route)
	}
	return None[*Route]()
}

func (self *TransitGraph) Routes() List[*Route] {
	ret := NewList[*Route](self.routes.Length())
	for _, route := range self.routes {
		ret.Add(route)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

//*******************************************
// node mutation
//*******************************************

func (self *TransitGraph) AddNode(pl *NodePL) int32 {
	id := self.next_node
	self.next_node += 1
	if pl.ID == "" {
		pl.ID = uuid.NewString()
	}
	self.nodes[id] = pl
	self.node_grid.Add(id, orb.Bound{Min: pl.Pos, Max: pl.Pos})
	return id
}

func (self *TransitGraph) SetNodePos(node int32, pos geo.Coord) {
	pl := self.nodes[node]
	pl.Pos = pos
	self.node_grid.Add(node, orb.Bound{Min: pos, Max: pos})
}

// Deletes the node and every incident edge.
func (self *TransitGraph) DelNode(node int32) {
	pl := self.nodes[node]
	if pl == nil {
		return
	}
	edges := make([]int32, pl.Edges.Length())
	copy(edges, pl.Edges)
	for _, eid := range edges {
		self.DelEdge(eid)
	}
	self.freeze.RecordDelete(node)
	self.node_grid.Remove(node)
	self.nodes.Delete(node)
}

//*******************************************
// edge mutation
//*******************************************

// Inserts an edge between a and b. Self-loops are rejected, a parallel
// edge is merged into the existing one (occurrences stay unique per
// edge). Returns the id of the edge now connecting a and b.
func (self *TransitGraph) AddEdge(a int32, b int32, geom geo.PolyLine) Optional[int32] {
	if a == b {
		return None[int32]()
	}
	if existing := self.GetEdgeBetween(a, b); existing.HasValue() {
		return existing
	}
	id := self.next_edge
	self.next_edge += 1
	pl := NewEdgePL(a, b, geom)
	pl.Origins[id] = true
	self.edges[id] = pl
	self.nodes[a].Edges.Add(id)
	self.nodes[b].Edges.Add(id)
	self.edge_grid.Add(id, geom.Bound())
	return Some(id)
}

func (self *TransitGraph) SetEdgeGeom(edge int32, geom geo.PolyLine) {
	pl := self.edges[edge]
	pl.Geom = geom
	self.edge_grid.Add(edge, geom.Bound())
}

func (self *TransitGraph) DelEdge(edge int32) {
	pl := self.edges[edge]
	if pl == nil {
		return
	}
	for _, nid := range []int32{pl.NodeA, pl.NodeB} {
		node := self.nodes[nid]
		if node == nil {
			continue
		}
		for i := node.Edges.Length() - 1; i >= 0; i-- {
			if node.Edges[i] == edge {
				node.Edges.Remove(i)
			}
		}
		self._DropExceptionRefs(nid, edge)
	}
	self.edge_grid.Remove(edge)
	self.edges.Delete(edge)
}

//*******************************************
// exceptions
//*******************************************

// Records that the route does not continue between the two edges at the
// node. Indexed in both directions, lookups stay symmetric.
func (self *TransitGraph) AddRouteConnException(node int32, route *Route, edge_a int32, edge_b int32) {
	pl := self.nodes[node]
	if pl == nil || edge_a == edge_b {
		return
	}
	excs, ok := pl.ConnExc[route.ID]
	if !ok {
		excs = NewDict[int32, Dict[int32, bool]](2)
		pl.ConnExc[route.ID] = excs
	}
	if _, ok := excs[edge_a]; !ok {
		excs[edge_a] = NewDict[int32, bool](2)
	}
	excs[edge_a][edge_b] = true
	if _, ok := excs[edge_b]; !ok {
		excs[edge_b] = NewDict[int32, bool](2)
	}
	excs[edge_b][edge_a] = true
}

// Whether the route continues between the two edges at the node.
// Defaults to true when no exception is recorded.
func (self *TransitGraph) ConnOccurs(node int32, route *Route, edge_a int32, edge_b int32) bool {
	pl := self.nodes[node]
	if pl == nil {
		return true
	}
	excs, ok := pl.ConnExc[route.ID]
	if !ok {
		return true
	}
	set, ok := excs[edge_a]
	if !ok {
		return true
	}
	return !set[edge_b]
}

func (self *TransitGraph) _DropExceptionRefs(node int32, edge int32) {
	pl := self.nodes[node]
	if pl == nil {
		return
	}
	for route, excs := range pl.ConnExc {
		excs.Delete(edge)
		for other, set := range excs {
			set.Delete(edge)
			if set.Length() == 0 {
				excs.Delete(other)
			}
		}
		if excs.Length() == 0 {
			pl.ConnExc.Delete(route)
		}
	}
}

func (self *TransitGraph) RemapExceptionRefs(node int32, old_edge int32, new_edge int32) {
	pl := self.nodes[node]
	if pl == nil || old_edge == new_edge {
		return
	}
	for _, excs := range pl.ConnExc {
		if set, ok := excs[old_edge]; ok {
			excs.Delete(old_edge)
			target, ok := excs[new_edge]
			if !ok {
				target = NewDict[int32, bool](set.Length())
				excs[new_edge] = target
			}
			for e := range set {
				if e != new_edge {
					target[e] = true
				}
			}
		}
		for _, set := range excs {
			if set[old_edge] {
				set.Delete(old_edge)
				set[new_edge] = true
			}
		}
	}
}

//*******************************************
// contraction and splitting
//*******************************************

// Contracts from into to: the connecting edge is removed, all other
// incident edges are re-parented onto to, stations and exceptions are
// transferred and the freeze registry records the survivor. The position
// of to is left untouched, callers average it beforehand if needed.
func (self *TransitGraph) MergeNodes(from int32, to int32) {
	if from == to || !self.IsNode(from) || !self.IsNode(to) {
		return
	}
	if conn := self.GetEdgeBetween(from, to); conn.HasValue() {
		self.DelEdge(conn.Value)
	}
	node_from := self.nodes[from]
	node_to := self.nodes[to]

	edges := make([]int32, node_from.Edges.Length())
	copy(edges, node_from.Edges)
	for _, eid := range edges {
		edge := self.edges[eid]
		other := edge.OtherNode(from)
		if existing := self.GetEdgeBetween(other, to); existing.HasValue() {
			// re-parenting would create a parallel edge, merge into it
			target := self.edges[existing.Value]
			same_orient := (edge.NodeA == from) == (target.NodeA == to)
			for _, occ := range edge.Routes {
				dir := occ.Dir
				if !same_orient {
					dir = dir.Reversed()
				}
				target.AddRouteOcc(occ.Route, dir)
			}
			for o := range edge.Origins {
				target.Origins[o] = true
			}
			self.RemapExceptionRefs(other, eid, existing.Value)
			self.RemapExceptionRefs(from, eid, existing.Value)
			self.DelEdge(eid)
		} else {
			if edge.NodeA == from {
				edge.NodeA = to
				edge.Geom = edge.Geom.WithFirst(node_to.Pos)
			} else {
				edge.NodeB = to
				edge.Geom = edge.Geom.WithLast(node_to.Pos)
			}
			node_to.Edges.Add(eid)
			for i := node_from.Edges.Length() - 1; i >= 0; i-- {
				if node_from.Edges[i] == eid {
					node_from.Edges.Remove(i)
				}
			}
			self.edge_grid.Add(eid, edge.Geom.Bound())
		}
	}

	for _, station := range node_from.Stations {
		node_to.AddStation(station)
	}
	for route, excs := range node_from.ConnExc {
		for edge_a, set := range excs {
			if !self.IsEdge(edge_a) {
				continue
			}
			for edge_b := range set {
				if !self.IsEdge(edge_b) {
					continue
				}
				r := self.routes[route]
				if r != nil {
					self.AddRouteConnException(to, r, edge_a, edge_b)
				}
			}
		}
	}

	self.freeze.RecordMerge(from, to)
	self.node_grid.Remove(from)
	self.nodes.Delete(from)
}

// Splits the edge at the given arclength. If the position falls within
// snap of an endpoint no split happens and the endpoint is returned with
// edge ids -1. Otherwise returns the new node and the two half edges
// (the first incident to the edge's from-node).
func (self *TransitGraph) SplitEdge(edge int32, dist float64, snap float64) (int32, int32, int32) {
	pl := self.edges[edge]
	length := pl.Geom.Length()
	if dist <= snap {
		return pl.NodeA, -1, -1
	}
	if dist >= length-snap {
		return pl.NodeB, -1, -1
	}
	node_a := pl.NodeA
	node_b := pl.NodeB
	pos := pl.Geom.PointAtDist(dist)
	mid := self.AddNode(NewNodePL("", pos))

	left := self.AddEdge(node_a, mid, pl.Geom.SegmentDist(0, dist))
	right := self.AddEdge(mid, node_b, pl.Geom.SegmentDist(dist, length))
	left_pl := self.edges[left.Value]
	right_pl := self.edges[right.Value]
	for _, occ := range pl.Routes {
		left_pl.AddRouteOcc(occ.Route, occ.Dir)
		right_pl.AddRouteOcc(occ.Route, occ.Dir)
	}
	for o := range pl.Origins {
		left_pl.Origins[o] = true
		right_pl.Origins[o] = true
	}
	self.RemapExceptionRefs(node_a, edge, left.Value)
	self.RemapExceptionRefs(node_b, edge, right.Value)
	self.DelEdge(edge)
	return mid, left.Value, right.Value
}

//*******************************************
// freeze registry access
//*******************************************

// Snapshots the current node set, returning an id that FreezeTrack later
// resolves against.
func (self *TransitGraph) Freeze() int {
	return self.freeze.Freeze(self.Nodes())
}

// Maps every node id captured by the snapshot to the node it has since
// collapsed into. Deleted nodes are absent from the result.
func (self *TransitGraph) FreezeTrack(snapshot int) Dict[int32, int32] {
	return self.freeze.Track(snapshot)
}

//*******************************************
// spatial queries
//*******************************************

func (self *TransitGraph) NeighborNodes(pos geo.Coord, radius float64) List[int32] {
	return self.node_grid.Neighbors(orb.Bound{Min: pos, Max: pos}, radius)
}

func (self *TransitGraph) NeighborEdges(bound orb.Bound, radius float64) List[int32] {
	return self.edge_grid.Neighbors(bound, radius)
}

//*******************************************
// invariants
//*******************************************

// Verifies the structural invariants, returning an ErrInvariantViolation
// wrap naming the offender.
func (self *TransitGraph) CheckInvariants(eps float64) error {
	for _, eid := range self.Edges() {
		edge := self.edges[eid]
		if edge.NodeA == edge.NodeB {
			return fmt.Errorf("%w: self-loop on edge %v", ErrInvariantViolation, eid)
		}
		node_a := self.nodes[edge.NodeA]
		node_b := self.nodes[edge.NodeB]
		if node_a == nil || node_b == nil {
			return fmt.Errorf("%w: edge %v references missing node", ErrInvariantViolation, eid)
		}
		if geo.Dist(edge.Geom.First(), node_a.Pos) > eps || geo.Dist(edge.Geom.Last(), node_b.Pos) > eps {
			return fmt.Errorf("%w: geometry of edge %v detached from endpoints", ErrInvariantViolation, eid)
		}
		if !self.edge_grid.Contains(eid) {
			return fmt.Errorf("%w: edge %v missing from grid", ErrInvariantViolation, eid)
		}
		seen := NewDict[Tuple[string, Direction], bool](edge.Routes.Length())
		for _, occ := range edge.Routes {
			key := MakeTuple(occ.Route.ID, occ.Dir)
			if seen[key] {
				return fmt.Errorf("%w: duplicate occurrence of route %v on edge %v", ErrInvariantViolation, occ.Route.ID, eid)
			}
			seen[key] = true
		}
	}
	for _, nid := range self.Nodes() {
		node := self.nodes[nid]
		adjacent := NewDict[int32, bool](node.Edges.Length())
		for _, eid := range node.Edges {
			edge := self.edges[eid]
			if edge == nil {
				return fmt.Errorf("%w: node %v references missing edge %v", ErrInvariantViolation, nid, eid)
			}
			other := edge.OtherNode(nid)
			if adjacent[other] {
				return fmt.Errorf("%w: parallel edges between %v and %v", ErrInvariantViolation, nid, other)
			}
			adjacent[other] = true
		}
		for route, excs := range node.ConnExc {
			for edge_a, set := range excs {
				for edge_b := range set {
					if !excs.ContainsKey(edge_b) || !excs[edge_b][edge_a] {
						return fmt.Errorf("%w: asymmetric exception for route %v at node %v", ErrInvariantViolation, route, nid)
					}
				}
			}
		}
	}
	return nil
}
