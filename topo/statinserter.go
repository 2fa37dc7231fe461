package topo

import (
	"github.com/paulmach/orb"
	"github.com/ttpr0/go-transitmap/geo"
	"github.com/ttpr0/go-transitmap/graph"
	. "github.com/ttpr0/go-transitmap/util"
	"golang.org/x/exp/slog"
)

//*******************************************
// station inserter
//*******************************************

// Detaches stations before the graph collapses and folds them back onto
// the simplified skeleton afterwards. Stations that find no edge within
// the snap distance are kept as isolated nodes and reported.
type StationInserter struct {
	cfg      *TopoConfig
	g        *graph.TransitGraph
	stations List[Tuple[int32, graph.Station]]
	Orphans  List[graph.Station]
}

func NewStationInserter(cfg *TopoConfig, g *graph.TransitGraph) *StationInserter {
	return &StationInserter{
		cfg:      cfg,
		g:        g,
		stations: NewList[Tuple[int32, graph.Station]](16),
		Orphans:  NewList[graph.Station](0),
	}
}

// Snapshots all station-bearing nodes and strips their stations so the
// collapsing phases treat them as plain topology.
func (self *StationInserter) Init() {
	for _, nid := range self.g.Nodes() {
		node := self.g.GetNode(nid)
		for _, station := range node.Stations {
			self.stations.Add(MakeTuple(nid, station))
		}
		node.Stations.Clear()
	}
}

// Re-attaches every snapshotted station to the nearest point on the
// current skeleton. The track mapping widens the search to wherever the
// station's original node has drifted.
func (self *StationInserter) InsertStations(track Dict[int32, int32]) {
	// projections within snap of an existing node attach there instead
	// of splitting off a sliver edge
	node_snap := self.cfg.SnapDist

	for _, entry := range self.stations {
		orig_node := entry.A
		station := entry.B

		cands := self.g.NeighborEdges(orb.Bound{Min: station.Pos, Max: station.Pos}, self.cfg.StationSnapDist)
		if survivor, ok := track[orig_node]; ok && self.g.IsNode(survivor) {
			pos := self.g.GetNode(survivor).Pos
			for _, eid := range self.g.NeighborEdges(orb.Bound{Min: pos, Max: pos}, self.cfg.StationSnapDist) {
				found := false
				for _, c := range cands {
					if c == eid {
						found = true
						break
					}
				}
				if !found {
					cands.Add(eid)
				}
			}
		}

		best_edge := int32(-1)
		best := geo.LinePoint{}
		best_dist := self.cfg.StationSnapDist
		for _, eid := range cands {
			proj := self.g.GetEdge(eid).Geom.ProjectOn(station.Pos)
			d := geo.Dist(station.Pos, proj.Coord)
			if d <= best_dist {
				best_dist = d
				best = proj
				best_edge = eid
			}
		}

		if best_edge == -1 {
			slog.Warn("station has no edge in reach, keeping original position", "station", station.ID)
			node := self.g.AddNode(graph.NewNodePL("", station.Pos))
			self.g.GetNode(node).AddStation(station)
			self.Orphans.Add(station)
			continue
		}

		node, _, _ := self.g.SplitEdge(best_edge, best.Dist, node_snap)
		self.g.GetNode(node).AddStation(station)
	}
}
