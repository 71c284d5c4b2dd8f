package graphic

import (
	"image/color"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
)

// Line is a straight segment. Handle 1 is the start, handle 2 the end.
type Line struct {
	Base
	Start geom.Point
	End   geom.Point
	Arrow bool
}

// NewLine creates a line from start to end.
func NewLine(start, end geom.Point, c color.NRGBA, lineWidth float64) *Line {
	return &Line{Base: newBase(c, lineWidth), Start: start, End: end}
}

// NewArrow creates a line with a triangular tip at end.
func NewArrow(start, end geom.Point, c color.NRGBA, lineWidth float64) *Line {
	g := NewLine(start, end, c, lineWidth)
	g.Arrow = true
	return g
}

func (g *Line) Kind() Kind {
	if g.Arrow {
		return KindArrow
	}
	return KindLine
}

// ArrowGeometry returns the shortened shaft end and the tip triangle.
// The tip is min(length/3, 8×lineWidth) long and its base vertices are the
// line direction rotated by ±165° around the end point.
func (g *Line) ArrowGeometry() (shaftEnd geom.Point, tip [3]geom.Point) {
	v := g.End.Sub(g.Start)
	length := v.Len()
	u := v.Unit()
	tipLen := min(length/3, g.LineWidth*8)
	shaftEnd = g.Start.Add(u.Mul(length - tipLen/2))
	arm := u.Mul(tipLen)
	p1 := g.End.Add(geom.RotateDegrees(165).TransformVector(arm))
	p2 := g.End.Add(geom.RotateDegrees(-165).TransformVector(arm))
	return shaftEnd, [3]geom.Point{g.End, p2, p1}
}

func (g *Line) Draw(dc draw.Context, ui UI) {
	pen := g.pen()
	if !g.Arrow {
		dc.DrawLine(g.Start, g.End, pen)
		return
	}
	shaftEnd, tip := g.ArrowGeometry()
	if shaftEnd.Dist(g.Start) > 0 {
		dc.DrawLine(g.Start, shaftEnd, pen)
	}
	dc.DrawPolygon(tip[:], g.Color, nil)
}

func (g *Line) Bounds() geom.Rect {
	hw := g.LineWidth / 2
	return geom.BoundsOf(g.Start, g.End).Inflate(hw, hw)
}

func (g *Line) Contains(p geom.Point, ui UI) bool {
	if geom.DistToSegment(p, g.Start, g.End) <= g.hitTolerance(ui) {
		return true
	}
	if g.Arrow {
		_, tip := g.ArrowGeometry()
		return geom.PolygonContains(tip[:], p)
	}
	return false
}

func (g *Line) IntersectsWith(r geom.Rect) bool {
	return geom.PolylineIntersectsRect([]geom.Point{g.Start, g.End}, r)
}

func (g *Line) HandleCount() int { return 2 }

func (g *Line) Handle(i int, ui UI) geom.Point {
	switch i {
	case 1:
		return g.Start
	case 2:
		return g.End
	}
	return geom.BoundsOf(g.Start, g.End).Center()
}

func (g *Line) HandleCursor(i int) Cursor {
	if i == 0 {
		return CursorSizeAll
	}
	return CursorCross
}

func (g *Line) MoveHandleTo(p geom.Point, i int) {
	switch i {
	case 0:
		c := g.Handle(0, UI{})
		g.Move(p.X-c.X, p.Y-c.Y)
	case 1:
		g.Start = p
	case 2:
		g.End = p
	}
}

func (g *Line) Move(dx, dy float64) {
	d := geom.Pt(dx, dy)
	g.Start = g.Start.Add(d)
	g.End = g.End.Add(d)
}

func (g *Line) Normalize() {}

func (g *Line) Clone() Graphic {
	c := *g
	return &c
}
