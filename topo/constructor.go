package topo

import (
	"sort"

	"github.com/ttpr0/go-transitmap/geo"
	"github.com/ttpr0/go-transitmap/graph"
	. "github.com/ttpr0/go-transitmap/util"
	"golang.org/x/exp/slog"
)

//*******************************************
// map constructor
//*******************************************

// Iteratively collapses shared segments of the graph into trunk edges
// and cleans up the artifacts this leaves behind. All mutation happens
// in place on the given graph.
type MapConstructor struct {
	cfg *TopoConfig
	g   *graph.TransitGraph
	// edge pairs whose contraction was refused, keyed by edge id
	blocked Dict[int32, bool]
}

func NewMapConstructor(cfg *TopoConfig, g *graph.TransitGraph) *MapConstructor {
	return &MapConstructor{
		cfg:     cfg,
		g:       g,
		blocked: NewDict[int32, bool](16),
	}
}

func (self *MapConstructor) Freeze() int {
	return self.g.Freeze()
}

func (self *MapConstructor) FreezeTrack(snapshot int) Dict[int32, int32] {
	return self.g.FreezeTrack(snapshot)
}

// Runs the full collapsing ladder: one pass at a small fixed distance,
// then d0 .. LadderMult*d0 in steps of d0 with artifact removal between
// passes.
func (self *MapConstructor) Collapse() {
	self.CollapseShrdSegs(self.cfg.InitialDist)

	step := self.cfg.MaxAggrDistance
	for d := step; d <= step*float64(self.cfg.LadderMult); d += step {
		slog.Info("Collapsing shared segments", "d", d)
		for self.CollapseShrdSegs(d) {
			self.RemoveNodeArtifacts()
			self.RemoveEdgeArtifacts()
		}
	}
}

//*******************************************
// shared segment collapsing
//*******************************************

// One collapsing pass at aggregation distance d. Candidate pairs come
// from the edge grid and are worked off with route-sharing pairs first,
// each group in order of decreasing shared length; pairs whose overlap
// shrank below the minimum due to earlier collapses are skipped.
// Returns whether anything collapsed.
func (self *MapConstructor) CollapseShrdSegs(d float64) bool {
	min_len := self.cfg.MinSharedLen

	cands := NewList[SharedSegment](16)
	for _, ea := range self.g.Edges() {
		bound := self.g.GetEdge(ea).Geom.Bound()
		for _, eb := range self.g.NeighborEdges(bound, d) {
			if eb <= ea {
				continue
			}
			seg, ok := _FindSharedSegment(self.g, ea, eb, d, min_len)
			if !ok {
				continue
			}
			cands.Add(seg)
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Shared != cands[j].Shared {
			return cands[i].Shared
		}
		if cands[i].Length != cands[j].Length {
			return cands[i].Length > cands[j].Length
		}
		if cands[i].EdgeA != cands[j].EdgeA {
			return cands[i].EdgeA < cands[j].EdgeA
		}
		return cands[i].EdgeB < cands[j].EdgeB
	})

	changed := false
	for _, cand := range cands {
		if !self.g.IsEdge(cand.EdgeA) || !self.g.IsEdge(cand.EdgeB) {
			continue
		}
		// re-validate, earlier collapses may have eaten the overlap
		seg, ok := _FindSharedSegment(self.g, cand.EdgeA, cand.EdgeB, d, min_len)
		if !ok {
			continue
		}
		if self._CollapsePair(seg) {
			changed = true
		}
	}
	return changed
}

// Splits the edge at the two arclength bounds. Returns the two boundary
// nodes, the middle edge between them and the outer stub edges (-1 where
// the bound snapped to an edge end and no stub exists).
func (self *MapConstructor) _SplitAround(edge int32, d0 float64, d1 float64) (int32, int32, int32, [2]int32) {
	snap := self.cfg.SnapDist
	stubs := [2]int32{-1, -1}

	node_a, stub_a, mid := self.g.SplitEdge(edge, d0, snap)
	consumed := float64(0)
	mid_edge := edge
	if mid != -1 {
		stubs[0] = stub_a
		mid_edge = mid
		consumed = d0
	} else if node_a == self.g.GetEdge(edge).NodeB {
		// overlap degenerated to the far end
		return node_a, node_a, edge, stubs
	}

	node_b, mid2, stub_b := self.g.SplitEdge(mid_edge, d1-consumed, snap)
	if mid2 != -1 {
		stubs[1] = stub_b
		mid_edge = mid2
	}
	return node_a, node_b, mid_edge, stubs
}

// Collapses one matched pair: split both edges at the overlap bounds,
// snap the boundary nodes together and merge the two middle edges into a
// trunk carrying the union of both route sets. Routes present on only
// one side get connection exceptions against the other side's stubs.
func (self *MapConstructor) _CollapsePair(seg SharedSegment) bool {
	g := self.g

	a1, b1, mid1, stubs1 := self._SplitAround(seg.EdgeA, seg.StartA, seg.EndA)
	if a1 == b1 {
		slog.Debug("skipping degenerate shared segment", "edge", seg.EdgeA)
		return false
	}

	lo, hi := seg.StartB, seg.EndB
	if seg.Reversed {
		lo, hi = hi, lo
	}
	a2, b2, mid2, stubs2 := self._SplitAround(seg.EdgeB, lo, hi)
	if a2 == b2 {
		slog.Debug("skipping degenerate shared segment", "edge", seg.EdgeB)
		return false
	}
	if seg.Reversed {
		a2, b2 = b2, a2
		stubs2[0], stubs2[1] = stubs2[1], stubs2[0]
	}
	if mid1 == mid2 {
		return false
	}

	edge_mid1 := g.GetEdge(mid1)
	edge_mid2 := g.GetEdge(mid2)

	// capture one-sided routes before occurrence sets get unioned
	only_a := NewList[*graph.Route](2)
	only_b := NewList[*graph.Route](2)
	for _, occ := range edge_mid1.Routes {
		if !edge_mid2.HasRoute(occ.Route) {
			only_a.Add(occ.Route)
		}
	}
	for _, occ := range edge_mid2.Routes {
		if !edge_mid1.HasRoute(occ.Route) {
			only_b.Add(occ.Route)
		}
	}

	// trunk geometry, the second middle re-oriented to the first's
	// stored direction before averaging
	geom2 := edge_mid2.Geom
	if (edge_mid2.NodeA == a2) != (edge_mid1.NodeA == a1) {
		geom2 = geom2.Reversed()
	}
	geom1 := edge_mid1.Geom
	trunk_geom := geo.Average([]geo.PolyLine{geom1, geom2})

	// snap boundary nodes, the e1-side nodes survive
	if a1 != a2 {
		pos := geo.Coord{(g.GetNode(a1).Pos[0] + g.GetNode(a2).Pos[0]) / 2, (g.GetNode(a1).Pos[1] + g.GetNode(a2).Pos[1]) / 2}
		g.SetNodePos(a1, pos)
		g.MergeNodes(a2, a1)
	}
	if b1 != b2 && g.IsNode(b2) && g.IsNode(b1) {
		pos := geo.Coord{(g.GetNode(b1).Pos[0] + g.GetNode(b2).Pos[0]) / 2, (g.GetNode(b1).Pos[1] + g.GetNode(b2).Pos[1]) / 2}
		g.SetNodePos(b1, pos)
		g.MergeNodes(b2, b1)
	}
	// the moved boundary nodes drag their remaining edges along
	for _, n := range []int32{a1, b1} {
		if g.IsNode(n) {
			self._RealignNode(n)
		}
	}

	if !g.IsEdge(mid1) {
		// the middle collapsed away entirely, nothing left to align
		return true
	}

	trunk_geom = trunk_geom.WithFirst(g.GetNode(edge_mid1.NodeA).Pos).WithLast(g.GetNode(edge_mid1.NodeB).Pos)
	g.SetEdgeGeom(mid1, trunk_geom)

	// preserve original through-routing: a route only on one side must
	// not continue from the trunk into the other side's stubs
	self._AddTrunkExceptions(mid1, only_a, stubs2, a1, b1)
	self._AddTrunkExceptions(mid1, only_b, stubs1, a1, b1)

	return true
}

func (self *MapConstructor) _AddTrunkExceptions(trunk int32, routes List[*graph.Route], stubs [2]int32, a int32, b int32) {
	g := self.g
	for _, stub := range stubs {
		if stub == -1 || !g.IsEdge(stub) || stub == trunk {
			continue
		}
		edge := g.GetEdge(stub)
		junction := int32(-1)
		if edge.HasNode(a) && g.IsNode(a) {
			junction = a
		} else if edge.HasNode(b) && g.IsNode(b) {
			junction = b
		}
		if junction == -1 {
			continue
		}
		for _, route := range routes {
			g.AddRouteConnException(junction, route, trunk, stub)
		}
	}
}

//*******************************************
// artifact removal
//*******************************************

// Dissolves degree-2 nodes without stations whose two edges carry the
// same route occurrences with the same directional continuation. The two
// edges merge into one with concatenated geometry.
func (self *MapConstructor) RemoveNodeArtifacts() bool {
	g := self.g
	changed := false
	for {
		dissolved := false
		for _, nid := range g.Nodes() {
			node := g.GetNode(nid)
			if node.Degree() != 2 || node.Stations.Length() > 0 {
				continue
			}
			e1 := node.Edges[0]
			e2 := node.Edges[1]
			if !self._Continuous(nid, e1, e2) {
				continue
			}
			if self._DissolveNode(nid, e1, e2) {
				dissolved = true
				changed = true
				break
			}
		}
		if !dissolved {
			break
		}
	}
	return changed
}

// Both edges carry the same occurrence set with matching travel
// direction through the node, and no exception severs them.
func (self *MapConstructor) _Continuous(node int32, e1 int32, e2 int32) bool {
	g := self.g
	edge1 := g.GetEdge(e1)
	edge2 := g.GetEdge(e2)
	if edge1.Routes.Length() != edge2.Routes.Length() {
		return false
	}
	for _, occ := range edge1.Routes {
		other := edge2.GetRouteOcc(occ.Route)
		if !other.HasValue() {
			return false
		}
		// normalize both to travel a -> node -> b
		d1 := occ.Dir
		if edge1.NodeA == node {
			d1 = d1.Reversed()
		}
		d2 := other.Value.Dir
		if edge2.NodeB == node {
			d2 = d2.Reversed()
		}
		if d1 != d2 {
			return false
		}
		if !g.ConnOccurs(node, occ.Route, e1, e2) {
			return false
		}
	}
	return true
}

func (self *MapConstructor) _DissolveNode(node int32, e1 int32, e2 int32) bool {
	g := self.g
	edge1 := g.GetEdge(e1)
	edge2 := g.GetEdge(e2)
	a := edge1.OtherNode(node)
	b := edge2.OtherNode(node)
	if a == b || a == node || b == node {
		return false
	}
	if g.GetEdgeBetween(a, b).HasValue() {
		return false
	}

	geom1 := edge1.Geom
	if edge1.NodeA == node {
		geom1 = geom1.Reversed()
	}
	geom2 := edge2.Geom
	if edge2.NodeB == node {
		geom2 = geom2.Reversed()
	}
	combined := geo.Concat(geom1, geom2)

	merged := g.AddEdge(a, b, combined)
	if !merged.HasValue() {
		return false
	}
	target := g.GetEdge(merged.Value)
	for _, occ := range edge1.Routes {
		target.AddRouteOccAs(occ.Route, occ.Dir, edge1.NodeA)
	}
	for o := range edge1.Origins {
		target.Origins[o] = true
	}
	for o := range edge2.Origins {
		target.Origins[o] = true
	}
	g.RemapExceptionRefs(a, e1, merged.Value)
	g.RemapExceptionRefs(b, e2, merged.Value)
	g.DelEdge(e1)
	g.DelEdge(e2)
	g.DelNode(node)
	return true
}

// Contracts edges shorter than ArtifactLen, merging their endpoints at
// the midpoint. Contractions that would fold parallel edges with
// incompatible route sets are blocked and left in place.
func (self *MapConstructor) RemoveEdgeArtifacts() bool {
	g := self.g
	changed := false
	// refused contractions stay blocked for this sweep only, later
	// sweeps see a different neighborhood and may succeed
	self.blocked = NewDict[int32, bool](16)
	for {
		contracted := false
		for _, eid := range g.Edges() {
			if self.blocked[eid] {
				continue
			}
			edge := g.GetEdge(eid)
			if edge.Geom.Length() >= self.cfg.ArtifactLen {
				continue
			}
			from := edge.NodeA
			to := edge.NodeB
			if !self._CanContract(from, to) {
				self.blocked[eid] = true
				slog.Debug("contraction blocked, incompatible parallel routes", "edge", eid)
				continue
			}
			node_from := g.GetNode(from)
			node_to := g.GetNode(to)
			// midpoint, biased to a station-bearing side
			pos := geo.Coord{(node_from.Pos[0] + node_to.Pos[0]) / 2, (node_from.Pos[1] + node_to.Pos[1]) / 2}
			if node_from.Stations.Length() > 0 && node_to.Stations.Length() == 0 {
				pos = node_from.Pos
			} else if node_to.Stations.Length() > 0 && node_from.Stations.Length() == 0 {
				pos = node_to.Pos
			}
			g.SetNodePos(to, pos)
			g.MergeNodes(from, to)
			self._RealignNode(to)
			contracted = true
			changed = true
			break
		}
		if !contracted {
			break
		}
	}
	return changed
}

// Whether contracting from onto to folds only route-compatible edges.
func (self *MapConstructor) _CanContract(from int32, to int32) bool {
	g := self.g
	node := g.GetNode(from)
	for _, eid := range node.Edges {
		edge := g.GetEdge(eid)
		other := edge.OtherNode(from)
		if other == to {
			continue
		}
		existing := g.GetEdgeBetween(other, to)
		if !existing.HasValue() {
			continue
		}
		if !self._RoutesEq(eid, existing.Value, other) {
			return false
		}
	}
	return true
}

// Equal route occurrence sets, directions normalized to travel towards
// the shared node.
func (self *MapConstructor) _RoutesEq(e1 int32, e2 int32, shared int32) bool {
	g := self.g
	edge1 := g.GetEdge(e1)
	edge2 := g.GetEdge(e2)
	if edge1.Routes.Length() != edge2.Routes.Length() {
		return false
	}
	for _, occ := range edge1.Routes {
		other := edge2.GetRouteOcc(occ.Route)
		if !other.HasValue() {
			return false
		}
		d1 := occ.Dir
		if edge1.NodeA == shared {
			d1 = d1.Reversed()
		}
		d2 := other.Value.Dir
		if edge2.NodeA == shared {
			d2 = d2.Reversed()
		}
		if d1 != d2 {
			return false
		}
	}
	return true
}

//*******************************************
// geometry cleanup
//*******************************************

// Arclength from the node end used to sample incident tangents.
const AVERAGING_DIST = 5.0

// Moves every node to the centroid of its incident edges, sampled a
// small arclength inward so the local tangent direction dominates over
// raw endpoint positions.
func (self *MapConstructor) AverageNodePositions() {
	g := self.g
	for _, nid := range g.Nodes() {
		node := g.GetNode(nid)
		// terminals stay put, sampling inward would creep them along
		// their only edge on every pass
		if node.Degree() < 2 {
			continue
		}
		var x, y float64
		count := 0
		for _, eid := range node.Edges {
			edge := g.GetEdge(eid)
			length := edge.Geom.Length()
			sample := AVERAGING_DIST
			if sample > length/2 {
				sample = length / 2
			}
			var p geo.Coord
			if edge.NodeA == nid {
				p = edge.Geom.PointAtDist(sample)
			} else {
				p = edge.Geom.PointAtDist(length - sample)
			}
			x += p[0]
			y += p[1]
			count += 1
		}
		g.SetNodePos(nid, geo.Coord{x / float64(count), y / float64(count)})
		self._RealignNode(nid)
	}
}

// Re-aligns each edge's geometry to its endpoint nodes, drops zero
// length spans and applies the configured smoothing.
func (self *MapConstructor) CleanUpGeoms() {
	g := self.g
	eps := self.cfg.Smooth * self.cfg.MaxAggrDistance * 0.1
	for _, eid := range g.Edges() {
		edge := g.GetEdge(eid)
		geom := edge.Geom.Dedupe(1e-9)
		if eps > 0 {
			geom = geom.Simplify(eps)
		}
		geom = geom.WithFirst(g.GetNode(edge.NodeA).Pos).WithLast(g.GetNode(edge.NodeB).Pos)
		g.SetEdgeGeom(eid, geom)
	}
}

func (self *MapConstructor) _RealignNode(node int32) {
	g := self.g
	pl := g.GetNode(node)
	for _, eid := range pl.Edges {
		edge := g.GetEdge(eid)
		if edge.NodeA == node {
			g.SetEdgeGeom(eid, edge.Geom.WithFirst(pl.Pos))
		} else {
			g.SetEdgeGeom(eid, edge.Geom.WithLast(pl.Pos))
		}
	}
}
