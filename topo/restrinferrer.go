package topo

import (
	"github.com/ttpr0/go-transitmap/graph"
	. "github.com/ttpr0/go-transitmap/util"
)

//*******************************************
// restriction inferrer
//*******************************************

// An unordered pair of input-era edge ids a route continued between.
type originPair = Tuple[int32, int32]

func _MakeOriginPair(a int32, b int32) originPair {
	if b < a {
		a, b = b, a
	}
	return MakeTuple(a, b)
}

// Snapshots the route continuations the raw graph permits at every node
// and, after collapsing, writes a connection exception for every
// continuation the simplified topology would newly allow. Edges are
// matched across the collapse through their origin id sets, nodes
// through the freeze registry.
type RestrInferrer struct {
	cfg       *TopoConfig
	g         *graph.TransitGraph
	permitted Dict[int32, Dict[string, Dict[originPair, bool]]]
}

func NewRestrInferrer(cfg *TopoConfig, g *graph.TransitGraph) *RestrInferrer {
	return &RestrInferrer{
		cfg:       cfg,
		g:         g,
		permitted: NewDict[int32, Dict[string, Dict[originPair, bool]]](100),
	}
}

// Records, for every node and route, the incident edge pairs the route
// currently continues between.
func (self *RestrInferrer) Init() {
	g := self.g
	for _, nid := range g.Nodes() {
		node := g.GetNode(nid)
		routes := NewDict[string, Dict[originPair, bool]](2)
		for i := 0; i < node.Edges.Length(); i++ {
			for j := i + 1; j < node.Edges.Length(); j++ {
				ea := node.Edges[i]
				eb := node.Edges[j]
				for _, route := range self._ContinuingRoutes(nid, ea, eb) {
					pairs, ok := routes[route.ID]
					if !ok {
						pairs = NewDict[originPair, bool](4)
						routes[route.ID] = pairs
					}
					for oa := range g.GetEdge(ea).Origins {
						for ob := range g.GetEdge(eb).Origins {
							if oa != ob {
								pairs[_MakeOriginPair(oa, ob)] = true
							}
						}
					}
				}
			}
		}
		if routes.Length() > 0 {
			self.permitted[nid] = routes
		}
	}
}

// Routes present on both edges whose directions allow travelling through
// the node and which no exception severs.
func (self *RestrInferrer) _ContinuingRoutes(node int32, ea int32, eb int32) List[*graph.Route] {
	g := self.g
	edge_a := g.GetEdge(ea)
	edge_b := g.GetEdge(eb)
	ret := NewList[*graph.Route](2)
	for _, occ := range edge_a.Routes {
		other := edge_b.GetRouteOcc(occ.Route)
		if !other.HasValue() {
			continue
		}
		in_out := edge_a.RoutableTowards(occ, node) && edge_b.RoutableFrom(other.Value, node)
		out_in := edge_b.RoutableTowards(other.Value, node) && edge_a.RoutableFrom(occ, node)
		if !in_out && !out_in {
			continue
		}
		if !g.ConnOccurs(node, occ.Route, ea, eb) {
			continue
		}
		ret.Add(occ.Route)
	}
	return ret
}

// Writes exceptions at every surviving node for continuations the
// collapse introduced. Snapshots of deleted nodes are already absent
// from the track mapping and are discarded.
func (self *RestrInferrer) Infer(track Dict[int32, int32]) {
	g := self.g

	// several originals may have collapsed into one survivor, their
	// permitted sets apply unioned
	survivors := NewDict[int32, Dict[string, Dict[originPair, bool]]](track.Length())
	for orig, current := range track {
		routes, ok := self.permitted[orig]
		if !ok {
			continue
		}
		target, ok := survivors[current]
		if !ok {
			target = NewDict[string, Dict[originPair, bool]](routes.Length())
			survivors[current] = target
		}
		for route, pairs := range routes {
			set, ok := target[route]
			if !ok {
				set = NewDict[originPair, bool](pairs.Length())
				target[route] = set
			}
			for pair := range pairs {
				set[pair] = true
			}
		}
	}

	for current, routes := range survivors {
		if !g.IsNode(current) {
			continue
		}
		node := g.GetNode(current)
		for i := 0; i < node.Edges.Length(); i++ {
			for j := i + 1; j < node.Edges.Length(); j++ {
				ea := node.Edges[i]
				eb := node.Edges[j]
				for _, route := range self._ContinuingRoutes(current, ea, eb) {
					if self._WasPermitted(routes, route.ID, ea, eb) {
						continue
					}
					g.AddRouteConnException(current, route, ea, eb)
				}
			}
		}
	}
}

func (self *RestrInferrer) _WasPermitted(routes Dict[string, Dict[originPair, bool]], route string, ea int32, eb int32) bool {
	pairs, ok := routes[route]
	if !ok {
		return false
	}
	g := self.g
	for oa := range g.GetEdge(ea).Origins {
		for ob := range g.GetEdge(eb).Origins {
			if oa == ob {
				continue
			}
			if pairs[_MakeOriginPair(oa, ob)] {
				return true
			}
		}
	}
	return false
}
