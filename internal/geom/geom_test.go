package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapAngle(t *testing.T) {
	origin := Pt(0, 0)
	tests := []struct {
		name     string
		in       Point
		diagonal bool
		want     Point
	}{
		{"near horizontal", Pt(100, 5), false, Pt(100, 0)},
		{"near diagonal", Pt(100, 95), false, Pt(100, 100)},
		{"near vertical", Pt(-3, -80), false, Pt(0, -80)},
		{"upper left diagonal", Pt(-60, -50), false, Pt(-60, -60)},
		{"diagonal only", Pt(100, 5), true, Pt(100, 100)},
		{"diagonal only negative", Pt(-10, 40), true, Pt(-40, 40)},
		{"origin", Pt(0, 0), false, Pt(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SnapAngle(origin, tt.in, tt.diagonal))
		})
	}
}

func TestRotatedQuadInsideBounds(t *testing.T) {
	r := R(10, 20, 110, 70)
	for _, deg := range []float64{0, 15, 45, 90, 133, 270, -30} {
		m := RotateAt(deg, r.Center())
		quad := m.TransformQuad(r)
		b := m.TransformRect(r)
		for _, p := range quad {
			assert.True(t, b.Inflate(1e-9, 1e-9).Contains(p), "deg %v corner %v", deg, p)
		}
		touch := func(f func(Point) bool) bool {
			for _, p := range quad {
				if f(p) {
					return true
				}
			}
			return false
		}
		near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
		assert.True(t, touch(func(p Point) bool { return near(p.X, b.Left) }))
		assert.True(t, touch(func(p Point) bool { return near(p.X, b.Right) }))
		assert.True(t, touch(func(p Point) bool { return near(p.Y, b.Top) }))
		assert.True(t, touch(func(p Point) bool { return near(p.Y, b.Bottom) }))
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(5, -3).Multiply(Scale(2, 4)).Multiply(RotateDegrees(30))
	p := Pt(7, 11)
	back := m.Invert().TransformPoint(m.TransformPoint(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
	assert.True(t, m.Multiply(m.Invert()).IsIdentity())
}

func TestRectUnionIgnoresEmpty(t *testing.T) {
	a := R(0, 0, 10, 10)
	assert.Equal(t, a, Rect{}.Union(a))
	assert.Equal(t, a, a.Union(Rect{}))
	assert.Equal(t, R(0, 0, 20, 30), a.Union(R(15, 5, 20, 30)))
}

func TestPolygonIntersectsRect(t *testing.T) {
	ellipse := EllipsePolygon(R(0, 0, 100, 100), 64)
	assert.True(t, PolygonIntersectsRect(ellipse, R(40, 40, 60, 60)), "rect inside")
	assert.True(t, PolygonIntersectsRect(ellipse, R(-10, -10, 200, 200)), "rect around")
	assert.True(t, PolygonIntersectsRect(ellipse, R(90, 45, 120, 55)), "crossing edge")
	assert.False(t, PolygonIntersectsRect(ellipse, R(0, 0, 10, 10)), "corner outside the curve")
}

func TestDistToSegment(t *testing.T) {
	assert.InDelta(t, 5.0, DistToSegment(Pt(5, 5), Pt(0, 0), Pt(10, 0)), 1e-9)
	assert.InDelta(t, 5.0, DistToSegment(Pt(-3, 4), Pt(0, 0), Pt(10, 0)), 1e-9)
	assert.InDelta(t, 5.0, DistToSegment(Pt(3, 4), Pt(0, 0), Pt(0, 0)), 1e-9)
}

func TestTransformRect(t *testing.T) {
	r := R(0, 0, 40, 20)
	got := RotateAt(90, r.Center()).TransformRect(r)
	assert.InDelta(t, 10, got.Left, 1e-9)
	assert.InDelta(t, -10, got.Top, 1e-9)
	assert.InDelta(t, 30, got.Right, 1e-9)
	assert.InDelta(t, 30, got.Bottom, 1e-9)
	assert.Equal(t, R(5, 10, 85, 50), Translate(5, 10).Multiply(Scale(2, 2)).TransformRect(r))
}
