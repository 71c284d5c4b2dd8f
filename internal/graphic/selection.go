package graphic

import (
	"image/color"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
)

// SelectionRectangle is the rubber band drawn by the pointer tool. It lives
// in the collection only while the drag lasts.
type SelectionRectangle struct {
	Base
	Rect geom.Rect
}

// NewSelectionRectangle starts a rubber band at p.
func NewSelectionRectangle(p geom.Point) *SelectionRectangle {
	return &SelectionRectangle{
		Base: newBase(color.NRGBA{R: 0x1E, G: 0x90, B: 0xFF, A: 0xFF}, 1),
		Rect: geom.R(p.X, p.Y, p.X+1, p.Y+1),
	}
}

func (g *SelectionRectangle) Kind() Kind { return KindSelection }

func (g *SelectionRectangle) Draw(dc draw.Context, ui UI) {
	s := ui.scale()
	fill := g.Color
	fill.A = 0x20
	dc.DrawRectangle(g.Rect, fill, &draw.Pen{Color: g.Color, Width: s, Dash: []float64{3 * s, 3 * s}})
}

func (g *SelectionRectangle) Bounds() geom.Rect { return g.Rect.Normalize() }

func (g *SelectionRectangle) Contains(geom.Point, UI) bool { return false }

func (g *SelectionRectangle) IntersectsWith(geom.Rect) bool { return false }

func (g *SelectionRectangle) HandleCount() int { return 0 }

func (g *SelectionRectangle) Handle(int, UI) geom.Point { return g.Rect.BottomRight() }

func (g *SelectionRectangle) HandleCursor(int) Cursor { return CursorCross }

// MoveHandleTo drags the free corner.
func (g *SelectionRectangle) MoveHandleTo(p geom.Point, i int) {
	if i == HandleBottomRight {
		g.Rect.Right, g.Rect.Bottom = p.X, p.Y
	}
}

func (g *SelectionRectangle) Move(dx, dy float64) { g.Rect = g.Rect.Offset(dx, dy) }

func (g *SelectionRectangle) Normalize() { g.Rect = g.Rect.Normalize() }

func (g *SelectionRectangle) Clone() Graphic {
	c := *g
	return &c
}

func (g *SelectionRectangle) writeFields(*fieldWriter) {}

func (g *SelectionRectangle) readField(field) error { return nil }
