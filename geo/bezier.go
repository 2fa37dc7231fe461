package geo

//*******************************************
// bezier curve
//*******************************************

type BezierCurve struct {
	a Coord
	b Coord
	c Coord
	d Coord
}

func NewBezierCurve(a Coord, b Coord, c Coord, d Coord) BezierCurve {
	return BezierCurve{a: a, b: b, c: c, d: d}
}

// Builds a cubic curve between p and pp whose control points lie along
// the given unit tangents at half the endpoint distance.
func BezierFromTangents(p Coord, pp Coord, slope_a [2]float64, slope_b [2]float64) BezierCurve {
	d := Dist(p, pp) / 2
	b := Coord{p[0] + slope_a[0]*d, p[1] + slope_a[1]*d}
	c := Coord{pp[0] + slope_b[0]*d, pp[1] + slope_b[1]*d}
	return BezierCurve{a: p, b: b, c: c, d: pp}
}

func (self BezierCurve) PointAt(t float64) Coord {
	s := 1 - t
	x := s*s*s*self.a[0] + 3*s*s*t*self.b[0] + 3*s*t*t*self.c[0] + t*t*t*self.d[0]
	y := s*s*s*self.a[1] + 3*s*s*t*self.b[1] + 3*s*t*t*self.c[1] + t*t*t*self.d[1]
	return Coord{x, y}
}

// Samples the curve into a polyline with the given step width in t.
func (self BezierCurve) Render(prec float64) PolyLine {
	if prec <= 0 || prec > 1 {
		prec = 0.1
	}
	line := NewPolyLine()
	for t := float64(0); t < 1; t += prec {
		line.line = append(line.line, self.PointAt(t))
	}
	line.line = append(line.line, self.d)
	return line
}
