package graphic

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
)

// PolyLine is a freehand stroke. Each vertex is a handle.
type PolyLine struct {
	Base
	Points []geom.Point
}

// NewPolyLine creates a polyline; it needs at least two vertices.
func NewPolyLine(pts []geom.Point, c color.NRGBA, lineWidth float64) (*PolyLine, error) {
	if len(pts) < 2 {
		return nil, fmt.Errorf("polyline with %d points: %w", len(pts), ErrInvalidArgument)
	}
	return &PolyLine{Base: newBase(c, lineWidth), Points: slices.Clone(pts)}, nil
}

func (g *PolyLine) Kind() Kind { return KindPolyLine }

// AddPoint appends p, or replaces the last vertex when p is closer than
// minDist to the one before it or the last vertex has not left its
// predecessor yet.
func (g *PolyLine) AddPoint(p geom.Point, minDist float64) {
	n := len(g.Points)
	if n >= 2 && (g.Points[n-2] == g.Points[n-1] || g.Points[n-2].Dist(p) < minDist) {
		g.Points[n-1] = p
		return
	}
	g.Points = append(g.Points, p)
}

// IsDegenerate reports whether every vertex coincides.
func (g *PolyLine) IsDegenerate() bool {
	for _, p := range g.Points[1:] {
		if p != g.Points[0] {
			return false
		}
	}
	return true
}

func (g *PolyLine) Draw(dc draw.Context, ui UI) {
	dc.DrawPolyline(g.Points, g.pen())
}

func (g *PolyLine) Bounds() geom.Rect {
	hw := g.LineWidth / 2
	return geom.BoundsOf(g.Points...).Inflate(hw, hw)
}

func (g *PolyLine) Contains(p geom.Point, ui UI) bool {
	return geom.NearPolyline(p, g.Points, g.hitTolerance(ui))
}

func (g *PolyLine) IntersectsWith(r geom.Rect) bool {
	return geom.PolylineIntersectsRect(g.Points, r)
}

func (g *PolyLine) HandleCount() int { return len(g.Points) }

func (g *PolyLine) Handle(i int, ui UI) geom.Point {
	if i >= 1 && i <= len(g.Points) {
		return g.Points[i-1]
	}
	return geom.BoundsOf(g.Points...).Center()
}

func (g *PolyLine) HandleCursor(i int) Cursor {
	if i == 0 {
		return CursorSizeAll
	}
	return CursorCross
}

func (g *PolyLine) MoveHandleTo(p geom.Point, i int) {
	if i == 0 {
		c := g.Handle(0, UI{})
		g.Move(p.X-c.X, p.Y-c.Y)
		return
	}
	if i >= 1 && i <= len(g.Points) {
		g.Points[i-1] = p
	}
}

func (g *PolyLine) Move(dx, dy float64) {
	d := geom.Pt(dx, dy)
	for i := range g.Points {
		g.Points[i] = g.Points[i].Add(d)
	}
}

func (g *PolyLine) Normalize() {}

func (g *PolyLine) Clone() Graphic {
	c := *g
	c.Points = slices.Clone(g.Points)
	return &c
}
