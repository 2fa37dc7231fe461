package geo

import (
	"math"

	"github.com/paulmach/orb"
)

//*******************************************
// basic geometry
//*******************************************

type Coord = orb.Point

func Dist(a Coord, b Coord) float64 {
	return math.Sqrt(math.Pow(a[0]-b[0], 2) + math.Pow(a[1]-b[1], 2))
}

func PointInDist(start Coord, end Coord, dist float64) Coord {
	d := Dist(start, end)
	if d == 0 {
		return start
	}
	dx := end[0] - start[0]
	dy := end[1] - start[1]
	return Coord{start[0] + dx*dist/d, start[1] + dy*dist/d}
}

// Projects p onto the segment a-b, clamped to the segment ends.
func SnapToSegment(p Coord, a Coord, b Coord) Coord {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	l := dx*dx + dy*dy
	if l == 0 {
		return a
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Coord{a[0] + t*dx, a[1] + t*dy}
}

// Intersection point of the segments a-b and c-d, if any.
func SegmentIntersection(a Coord, b Coord, c Coord, d Coord) (Coord, bool) {
	r0 := b[0] - a[0]
	r1 := b[1] - a[1]
	s0 := d[0] - c[0]
	s1 := d[1] - c[1]
	denom := r0*s1 - r1*s0
	if denom == 0 {
		return Coord{}, false
	}
	t := ((c[0]-a[0])*s1 - (c[1]-a[1])*s0) / denom
	u := ((c[0]-a[0])*r1 - (c[1]-a[1])*r0) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Coord{}, false
	}
	return Coord{a[0] + t*r0, a[1] + t*r1}, true
}

// Web mercator projection, meters.
func LatLngToWebMerc(lat float64, lng float64) Coord {
	x := 6378137.0 * lng * math.Pi / 180.0
	a := lat * math.Pi / 180.0
	y := 3189068.5 * math.Log((1.0+math.Sin(a))/(1.0-math.Sin(a)))
	return Coord{x, y}
}

func BoundBuffer(bound orb.Bound, d float64) orb.Bound {
	return orb.Bound{
		Min: Coord{bound.Min[0] - d, bound.Min[1] - d},
		Max: Coord{bound.Max[0] + d, bound.Max[1] + d},
	}
}

func BoundsOverlap(a orb.Bound, b orb.Bound) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] && a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1]
}
