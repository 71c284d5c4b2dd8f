package graphic

import (
	"image/color"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
)

// boxShape is the part shared by every graphic built on a RotatedRect.
type boxShape struct {
	Base
	RotatedRect
}

func (s *boxShape) rotated() RotatedRect { return s.RotatedRect }

func (s *boxShape) Bounds() geom.Rect { return s.RotatedRect.Bounds() }

func (s *boxShape) HandleCount() int { return RotateHandle }

func (s *boxShape) Handle(i int, ui UI) geom.Point { return s.RotatedRect.Handle(i, ui) }

func (s *boxShape) HandleCursor(i int) Cursor { return s.RotatedRect.HandleCursor(i) }

func (s *boxShape) MoveHandleTo(p geom.Point, i int) { s.RotatedRect.MoveHandleTo(p, i) }

func (s *boxShape) Move(dx, dy float64) { s.Rect = s.Rect.Offset(dx, dy) }

func (s *boxShape) Normalize() { s.RotatedRect.Normalize() }

func (s *boxShape) IntersectsWith(r geom.Rect) bool { return s.intersects(r) }

// Rotation returns the angle in degrees.
func (s *boxShape) Rotation() float64 { return s.Angle }

// SetRotation sets the angle in degrees, wrapped into (-180, 180].
func (s *boxShape) SetRotation(deg float64) { s.Angle = normalizeAngle(deg) }

// pushRotation applies the rotation about the center and returns the pop func.
func (s *boxShape) pushRotation(dc draw.Context) func() {
	if s.Angle == 0 {
		return func() {}
	}
	dc.PushTransform(geom.RotateAt(s.Angle, s.Rect.Center()))
	return dc.Pop
}

// Rectangle is an outlined or filled rectangle.
type Rectangle struct {
	boxShape
	Filled bool
}

// NewRectangle creates an outlined rectangle.
func NewRectangle(r geom.Rect, c color.NRGBA, lineWidth float64) *Rectangle {
	return &Rectangle{boxShape: boxShape{Base: newBase(c, lineWidth), RotatedRect: RotatedRect{Rect: r}}}
}

// NewFilledRectangle creates a solid rectangle.
func NewFilledRectangle(r geom.Rect, c color.NRGBA, lineWidth float64) *Rectangle {
	g := NewRectangle(r, c, lineWidth)
	g.Filled = true
	return g
}

func (g *Rectangle) Kind() Kind {
	if g.Filled {
		return KindFilledRectangle
	}
	return KindRectangle
}

func (g *Rectangle) Draw(dc draw.Context, ui UI) {
	defer g.pushRotation(dc)()
	if g.Filled {
		dc.DrawRectangle(g.Rect, g.Color, nil)
		return
	}
	pen := g.pen()
	dc.DrawRectangle(g.Rect, nil, &pen)
}

func (g *Rectangle) Contains(p geom.Point, ui UI) bool {
	tol := g.hitTolerance(ui)
	if g.Filled || g.Selected {
		return g.fillContains(p, tol)
	}
	return g.strokeContains(p, tol)
}

func (g *Rectangle) Clone() Graphic {
	c := *g
	return &c
}

// Ellipse is an ellipse inscribed in a rotated rect.
type Ellipse struct {
	boxShape
}

// NewEllipse creates an outlined ellipse.
func NewEllipse(r geom.Rect, c color.NRGBA, lineWidth float64) *Ellipse {
	return &Ellipse{boxShape: boxShape{Base: newBase(c, lineWidth), RotatedRect: RotatedRect{Rect: r}}}
}

func (g *Ellipse) Kind() Kind { return KindEllipse }

func (g *Ellipse) Draw(dc draw.Context, ui UI) {
	defer g.pushRotation(dc)()
	pen := g.pen()
	dc.DrawEllipse(g.Rect, nil, &pen)
}

// Contains tests the bounds when selected, otherwise the stroked outline
// widened by the hit tolerance.
func (g *Ellipse) Contains(p geom.Point, ui UI) bool {
	tol := g.hitTolerance(ui)
	l := g.ToLocal(p)
	n := g.Rect.Normalize()
	if g.Selected {
		return n.Inflate(tol, tol).Contains(l)
	}
	outer := geom.EllipseContains(n.Inflate(tol, tol), l)
	inner := n.Inflate(-tol, -tol)
	return outer && (inner.IsEmpty() || !geom.EllipseContains(inner, l))
}

// IntersectsWith intersects r with the rotated ellipse outline.
func (g *Ellipse) IntersectsWith(r geom.Rect) bool {
	poly := geom.EllipsePolygon(g.Rect, 64)
	m := g.matrix()
	for i := range poly {
		poly[i] = m.TransformPoint(poly[i])
	}
	return geom.PolygonIntersectsRect(poly, r)
}

func (g *Ellipse) Clone() Graphic {
	c := *g
	return &c
}
