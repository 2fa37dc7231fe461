package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

//*******************************************
// convex hull
//*******************************************

const POINTS_PER_CIRCLE = 36

// Andrew's monotone chain. The result is closed (first == last).
func ConvexHull(points []Coord) orb.Ring {
	if len(points) < 3 {
		ring := make(orb.Ring, 0, len(points)+1)
		ring = append(ring, points...)
		if len(points) > 0 {
			ring = append(ring, points[0])
		}
		return ring
	}
	pts := make([]Coord, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] == pts[j][0] {
			return pts[i][1] < pts[j][1]
		}
		return pts[i][0] < pts[j][0]
	})

	cross := func(o, a, b Coord) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	hull := make([]Coord, 0, len(pts)+1)
	// lower
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return orb.Ring(hull)
}

// Buffered convex hull of a set of polylines: every line point is blown
// up to a circle of radius d, the hull is taken over all circle points.
func ConvexFrontHull(lines []PolyLine, d float64) orb.Polygon {
	points := make([]Coord, 0, 64)
	for _, l := range lines {
		for _, c := range l.Line() {
			for i := 0; i < POINTS_PER_CIRCLE; i++ {
				angle := 2 * math.Pi * float64(i) / POINTS_PER_CIRCLE
				points = append(points, Coord{c[0] + d*math.Cos(angle), c[1] + d*math.Sin(angle)})
			}
		}
	}
	if len(points) == 0 {
		return orb.Polygon{}
	}
	return orb.Polygon{ConvexHull(points)}
}
