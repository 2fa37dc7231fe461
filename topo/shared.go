package topo

import (
	"math"

	"github.com/ttpr0/go-transitmap/geo"
	"github.com/ttpr0/go-transitmap/graph"
)

//*******************************************
// shared segment detection
//*******************************************

// Sub-polylines of two edges running parallel within the aggregation
// distance. Bounds are arclength positions on the respective edge,
// reversed tells whether the second edge runs the other way along the
// overlap.
type SharedSegment struct {
	EdgeA    int32
	EdgeB    int32
	StartA   float64
	EndA     float64
	StartB   float64
	EndB     float64
	Reversed bool
	Length   float64
	// a route occurrence is shared across the overlap
	Shared bool
}

// True if the two edges share at least one route occurrence, matched by
// route id with compatible direction after the reversal check. Shared
// pairs collapse first within a pass.
func _ShareRoute(edge_a *graph.EdgePL, edge_b *graph.EdgePL, reversed bool) bool {
	for _, occ := range edge_a.Routes {
		other := edge_b.GetRouteOcc(occ.Route)
		if !other.HasValue() {
			continue
		}
		dir := other.Value.Dir
		if reversed {
			dir = dir.Reversed()
		}
		if occ.Dir == graph.DIR_NONE || dir == graph.DIR_NONE || occ.Dir == dir {
			return true
		}
	}
	return false
}

// Samples along edge a and projects onto edge b, looking for the longest
// contiguous stretch closer than d. Returns false if no stretch of at
// least min_len exists.
func _FindSharedSegment(g *graph.TransitGraph, ea int32, eb int32, d float64, min_len float64) (SharedSegment, bool) {
	edge_a := g.GetEdge(ea)
	edge_b := g.GetEdge(eb)
	geom_a := edge_a.Geom
	geom_b := edge_b.Geom
	length_a := geom_a.Length()
	if length_a == 0 || geom_b.Length() == 0 {
		return SharedSegment{}, false
	}

	step := d / 2
	if step < 0.5 {
		step = 0.5
	}
	if step > 5 {
		step = 5
	}

	// longest run of close samples
	best_start := float64(-1)
	best_end := float64(-1)
	var best_proj_start, best_proj_end float64
	run_start := float64(-1)
	var run_proj_start, run_proj_end float64
	flush := func(run_end float64) {
		if run_start < 0 {
			return
		}
		if run_end-run_start > best_end-best_start {
			best_start = run_start
			best_end = run_end
			best_proj_start = run_proj_start
			best_proj_end = run_proj_end
		}
		run_start = -1
	}
	last := float64(-1)
	for da := float64(0); ; da += step {
		if da > length_a {
			da = length_a
		}
		p := geom_a.PointAtDist(da)
		proj := geom_b.ProjectOn(p)
		if geo.Dist(p, proj.Coord) <= d {
			if run_start < 0 {
				run_start = da
				run_proj_start = proj.Dist
			}
			run_proj_end = proj.Dist
			last = da
		} else {
			flush(last)
		}
		if da >= length_a {
			break
		}
	}
	flush(last)

	if best_start < 0 || best_end-best_start < min_len {
		return SharedSegment{}, false
	}
	reversed := best_proj_end < best_proj_start
	if math.Abs(best_proj_end-best_proj_start) < min_len/2 {
		// the overlap degenerates to a point on the other edge,
		// typically a sharp crossing rather than a parallel run
		return SharedSegment{}, false
	}
	return SharedSegment{
		EdgeA:    ea,
		EdgeB:    eb,
		StartA:   best_start,
		EndA:     best_end,
		StartB:   best_proj_start,
		EndB:     best_proj_end,
		Reversed: reversed,
		Length:   best_end - best_start,
		Shared:   _ShareRoute(edge_a, edge_b, reversed),
	}, true
}
