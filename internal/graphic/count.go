package graphic

import (
	"image/color"
	"strconv"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
)

// CountMarker is a numbered disc. Its ordinal is assigned once and never
// renumbered.
type CountMarker struct {
	Base
	Center  geom.Point
	Ordinal int
}

// NewCountMarker creates marker number ordinal centered at p.
func NewCountMarker(p geom.Point, ordinal int, c color.NRGBA, lineWidth float64) *CountMarker {
	return &CountMarker{Base: newBase(c, lineWidth), Center: p, Ordinal: ordinal}
}

func (g *CountMarker) Kind() Kind { return KindCount }

// Radius grows with the line width so markers match the stroke weight.
func (g *CountMarker) Radius() float64 {
	return 8 + 2*g.LineWidth
}

func (g *CountMarker) circle() geom.Rect {
	r := g.Radius()
	return geom.RectFromCenter(g.Center, 2*r, 2*r)
}

func (g *CountMarker) Draw(dc draw.Context, ui UI) {
	dc.DrawEllipse(g.circle(), g.Color, nil)
	label := strconv.Itoa(g.Ordinal)
	font := draw.Font{Family: "Go", Size: g.Radius(), Weight: draw.WeightBold, Stretch: draw.StretchNormal}
	w, h := dc.MeasureText(label, font)
	dc.DrawText(label, geom.Pt(g.Center.X-w/2, g.Center.Y-h/2), font, contrast(g.Color))
}

// contrast picks black or white, whichever reads better on c.
func contrast(c color.NRGBA) color.NRGBA {
	lum := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if lum > 160 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}

func (g *CountMarker) Bounds() geom.Rect { return g.circle() }

func (g *CountMarker) Contains(p geom.Point, ui UI) bool {
	return p.Dist(g.Center) <= g.Radius()
}

func (g *CountMarker) IntersectsWith(r geom.Rect) bool {
	return geom.PolygonIntersectsRect(geom.EllipsePolygon(g.circle(), 32), r)
}

func (g *CountMarker) HandleCount() int { return 0 }

func (g *CountMarker) Handle(i int, ui UI) geom.Point { return g.Center }

func (g *CountMarker) HandleCursor(i int) Cursor { return CursorSizeAll }

func (g *CountMarker) MoveHandleTo(p geom.Point, i int) {
	if i == 0 {
		g.Center = p
	}
}

func (g *CountMarker) Move(dx, dy float64) {
	g.Center = g.Center.Add(geom.Pt(dx, dy))
}

func (g *CountMarker) Normalize() {}

func (g *CountMarker) Clone() Graphic {
	c := *g
	return &c
}
