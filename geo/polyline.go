package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/resample"
	"github.com/paulmach/orb/simplify"
)

//*******************************************
// polyline
//*******************************************

// A point on a polyline together with its arclength position
// and relative position (0..1).
type LinePoint struct {
	Coord Coord
	Dist  float64
	T     float64
}

type PolyLine struct {
	line orb.LineString
}

func NewPolyLine(coords ...Coord) PolyLine {
	line := make(orb.LineString, len(coords))
	copy(line, coords)
	return PolyLine{line: line}
}

func PolyLineFromLineString(line orb.LineString) PolyLine {
	return PolyLine{line: line}
}

func (self PolyLine) Line() orb.LineString {
	return self.line
}

func (self PolyLine) PointCount() int {
	return len(self.line)
}

func (self PolyLine) First() Coord {
	return self.line[0]
}

func (self PolyLine) Last() Coord {
	return self.line[len(self.line)-1]
}

func (self PolyLine) Length() float64 {
	length := float64(0)
	for i := 0; i < len(self.line)-1; i++ {
		length += Dist(self.line[i], self.line[i+1])
	}
	return length
}

func (self PolyLine) Bound() orb.Bound {
	return self.line.Bound()
}

func (self PolyLine) Reversed() PolyLine {
	line := make(orb.LineString, len(self.line))
	for i, c := range self.line {
		line[len(self.line)-1-i] = c
	}
	return PolyLine{line: line}
}

func (self PolyLine) Copy() PolyLine {
	line := make(orb.LineString, len(self.line))
	copy(line, self.line)
	return PolyLine{line: line}
}

// Returns the point at the given arclength, clamped to the line ends.
func (self PolyLine) PointAtDist(dist float64) Coord {
	if dist <= 0 {
		return self.First()
	}
	length := float64(0)
	for i := 0; i < len(self.line)-1; i++ {
		seg := Dist(self.line[i], self.line[i+1])
		if length+seg >= dist {
			return PointInDist(self.line[i], self.line[i+1], dist-length)
		}
		length += seg
	}
	return self.Last()
}

func (self PolyLine) PointAt(t float64) Coord {
	return self.PointAtDist(t * self.Length())
}

// Sub-line between two arclength positions. The result always contains
// at least two points.
func (self PolyLine) SegmentDist(d0 float64, d1 float64) PolyLine {
	if d1 < d0 {
		d0, d1 = d1, d0
	}
	total := self.Length()
	if d0 < 0 {
		d0 = 0
	}
	if d1 > total {
		d1 = total
	}
	line := make(orb.LineString, 0, len(self.line))
	line = append(line, self.PointAtDist(d0))
	length := float64(0)
	for i := 0; i < len(self.line)-1; i++ {
		seg := Dist(self.line[i], self.line[i+1])
		pos := length + seg
		if pos > d0 && pos < d1 {
			line = append(line, self.line[i+1])
		}
		length = pos
	}
	line = append(line, self.PointAtDist(d1))
	return PolyLine{line: line}
}

// Sub-line between two relative positions (0..1).
func (self PolyLine) Segment(t0 float64, t1 float64) PolyLine {
	length := self.Length()
	return self.SegmentDist(t0*length, t1*length)
}

// Closest point on the line to p.
func (self PolyLine) ProjectOn(p Coord) LinePoint {
	best := LinePoint{Coord: self.First(), Dist: 0, T: 0}
	best_dist := math.Inf(1)
	length := float64(0)
	total := self.Length()
	for i := 0; i < len(self.line)-1; i++ {
		a := self.line[i]
		b := self.line[i+1]
		s := SnapToSegment(p, a, b)
		d := Dist(p, s)
		if d < best_dist {
			best_dist = d
			best.Coord = s
			best.Dist = length + Dist(a, s)
		}
		length += Dist(a, b)
	}
	if total > 0 {
		best.T = best.Dist / total
	}
	return best
}

// Intersection points with another line, sorted by position on this line.
func (self PolyLine) Intersections(other PolyLine) []LinePoint {
	ret := make([]LinePoint, 0, 4)
	length := float64(0)
	total := self.Length()
	ol := other.line
	for i := 0; i < len(self.line)-1; i++ {
		a := self.line[i]
		b := self.line[i+1]
		for j := 0; j < len(ol)-1; j++ {
			is, ok := SegmentIntersection(a, b, ol[j], ol[j+1])
			if !ok {
				continue
			}
			d := length + Dist(a, is)
			t := float64(0)
			if total > 0 {
				t = d / total
			}
			ret = append(ret, LinePoint{Coord: is, Dist: d, T: t})
		}
		length += Dist(a, b)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Dist < ret[j].Dist })
	return ret
}

// Unit tangent between two arclength positions, computed from the
// endpoint difference.
func (self PolyLine) SlopeBetween(d0 float64, d1 float64) (float64, float64) {
	a := self.PointAtDist(d0)
	b := self.PointAtDist(d1)
	d := Dist(a, b)
	if d == 0 {
		return 0, 0
	}
	return (b[0] - a[0]) / d, (b[1] - a[1]) / d
}

// Shifts the line laterally by d (positive is left of travel direction).
func (self PolyLine) OffsetPerp(d float64) PolyLine {
	if len(self.line) < 2 || d == 0 {
		return self.Copy()
	}
	line := make(orb.LineString, 0, len(self.line))
	for i := 0; i < len(self.line); i++ {
		var dx, dy float64
		if i == 0 {
			dx = self.line[1][0] - self.line[0][0]
			dy = self.line[1][1] - self.line[0][1]
		} else if i == len(self.line)-1 {
			dx = self.line[i][0] - self.line[i-1][0]
			dy = self.line[i][1] - self.line[i-1][1]
		} else {
			dx = self.line[i+1][0] - self.line[i-1][0]
			dy = self.line[i+1][1] - self.line[i-1][1]
		}
		l := math.Sqrt(dx*dx + dy*dy)
		if l == 0 {
			continue
		}
		line = append(line, Coord{self.line[i][0] - dy*d/l, self.line[i][1] + dx*d/l})
	}
	offset := PolyLine{line: line}
	return offset._RemoveSelfIntersections()
}

// Cuts loops introduced by perpendicular offsets on sharp bends.
func (self PolyLine) _RemoveSelfIntersections() PolyLine {
	line := self.line
	for i := 0; i < len(line)-1; i++ {
		for j := i + 2; j < len(line)-1; j++ {
			is, ok := SegmentIntersection(line[i], line[i+1], line[j], line[j+1])
			if !ok {
				continue
			}
			cut := make(orb.LineString, 0, len(line))
			cut = append(cut, line[:i+1]...)
			cut = append(cut, is)
			cut = append(cut, line[j+1:]...)
			line = cut
			j = i + 1
		}
	}
	return PolyLine{line: line}
}

// Douglas-Peucker simplification.
func (self PolyLine) Simplify(eps float64) PolyLine {
	if len(self.line) < 3 || eps <= 0 {
		return self.Copy()
	}
	line := simplify.DouglasPeucker(eps).LineString(self.line.Clone())
	return PolyLine{line: line}
}

// Drops consecutive duplicate points (within eps).
func (self PolyLine) Dedupe(eps float64) PolyLine {
	line := make(orb.LineString, 0, len(self.line))
	for _, c := range self.line {
		if len(line) > 0 && Dist(line[len(line)-1], c) <= eps {
			continue
		}
		line = append(line, c)
	}
	if len(line) == 1 {
		line = append(line, self.Last())
	}
	return PolyLine{line: line}
}

func (self PolyLine) EqualsEps(other PolyLine, eps float64) bool {
	if len(self.line) != len(other.line) {
		return false
	}
	for i := range self.line {
		if Dist(self.line[i], other.line[i]) > eps {
			return false
		}
	}
	return true
}

// Replaces the first point of the line.
func (self PolyLine) WithFirst(c Coord) PolyLine {
	out := self.Copy()
	out.line[0] = c
	return out
}

// Replaces the last point of the line.
func (self PolyLine) WithLast(c Coord) PolyLine {
	out := self.Copy()
	out.line[len(out.line)-1] = c
	return out
}

// Joins two lines end to start, merging the seam point.
func Concat(a PolyLine, b PolyLine) PolyLine {
	line := make(orb.LineString, 0, len(a.line)+len(b.line))
	line = append(line, a.line...)
	start := 0
	if len(line) > 0 && len(b.line) > 0 && Dist(line[len(line)-1], b.line[0]) == 0 {
		start = 1
	}
	line = append(line, b.line[start:]...)
	return PolyLine{line: line}
}

// Point-wise mean of a set of polylines. Lines are resampled to a common
// point count first, so inputs of different resolution average cleanly.
func Average(lines []PolyLine) PolyLine {
	if len(lines) == 0 {
		return PolyLine{}
	}
	if len(lines) == 1 {
		return lines[0].Copy()
	}
	points := 0
	for _, l := range lines {
		if len(l.line) > points {
			points = len(l.line)
		}
	}
	if points < 2 {
		points = 2
	}
	resampled := make([]orb.LineString, len(lines))
	for i, l := range lines {
		resampled[i] = resample.Resample(l.line.Clone(), planar.Distance, points)
	}
	line := make(orb.LineString, points)
	for i := 0; i < points; i++ {
		var x, y float64
		for _, l := range resampled {
			x += l[i][0]
			y += l[i][1]
		}
		line[i] = Coord{x / float64(len(resampled)), y / float64(len(resampled))}
	}
	return PolyLine{line: line}
}
