package geom

import "math"

// DistToSegment returns the distance from p to the segment ab.
func DistToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = max(0, min(1, t))
	return p.Dist(a.Add(ab.Mul(t)))
}

// NearPolyline reports whether p lies within tol of any segment of pts.
func NearPolyline(p Point, pts []Point, tol float64) bool {
	if len(pts) == 1 {
		return p.Dist(pts[0]) <= tol
	}
	for i := 1; i < len(pts); i++ {
		if DistToSegment(p, pts[i-1], pts[i]) <= tol {
			return true
		}
	}
	return false
}

// PolygonContains reports whether p is inside the closed polygon (even-odd rule).
func PolygonContains(poly []Point, p Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// SegmentsIntersect reports whether segments p1p2 and q1q2 cross or touch.
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, p Point) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

// PolylineIntersectsRect reports whether any segment of pts touches r.
func PolylineIntersectsRect(pts []Point, r Rect) bool {
	r = r.Normalize()
	for _, p := range pts {
		if r.Contains(p) {
			return true
		}
	}
	c := r.Corners()
	for i := 1; i < len(pts); i++ {
		for k := range 4 {
			if SegmentsIntersect(pts[i-1], pts[i], c[k], c[(k+1)%4]) {
				return true
			}
		}
	}
	return false
}

// PolygonIntersectsRect reports whether the closed polygon and r overlap.
func PolygonIntersectsRect(poly []Point, r Rect) bool {
	if len(poly) == 0 {
		return false
	}
	closed := append(append([]Point(nil), poly...), poly[0])
	if PolylineIntersectsRect(closed, r) {
		return true
	}
	return PolygonContains(poly, r.Normalize().Center())
}

// EllipsePolygon approximates the ellipse inscribed in r with n vertices.
func EllipsePolygon(r Rect, n int) []Point {
	c := r.Center()
	rx, ry := math.Abs(r.Width())/2, math.Abs(r.Height())/2
	pts := make([]Point, n)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{c.X + rx*math.Cos(a), c.Y + ry*math.Sin(a)}
	}
	return pts
}

// EllipseContains reports whether p is inside the ellipse inscribed in r.
func EllipseContains(r Rect, p Point) bool {
	c := r.Center()
	rx, ry := math.Abs(r.Width())/2, math.Abs(r.Height())/2
	if rx == 0 || ry == 0 {
		return false
	}
	dx, dy := (p.X-c.X)/rx, (p.Y-c.Y)/ry
	return dx*dx+dy*dy <= 1
}

// SnapAngle constrains pt relative to origin. With diagonalOnly the result
// lies on a 45° diagonal; otherwise on the nearest multiple of 45°.
// Axis snaps keep the dominant component, diagonal snaps extend both
// components to the larger magnitude.
func SnapAngle(origin, pt Point, diagonalOnly bool) Point {
	dx, dy := pt.X-origin.X, pt.Y-origin.Y
	if dx == 0 && dy == 0 {
		return pt
	}
	if !diagonalOnly {
		deg := math.Atan2(dy, dx) * 180 / math.Pi
		sector := int(math.Round(deg/45)) & 7
		switch sector {
		case 0, 4:
			return Point{pt.X, origin.Y}
		case 2, 6:
			return Point{origin.X, pt.Y}
		}
	}
	m := max(math.Abs(dx), math.Abs(dy))
	return Point{origin.X + math.Copysign(m, dx), origin.Y + math.Copysign(m, dy)}
}
