package graphic

import (
	"image/color"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
)

// TextPadding is the gap between the anchor rect and the glyphs.
const TextPadding = 4.0

var textHandles = [...]int{HandleTopLeft, HandleTopRight, HandleBottomRight, HandleBottomLeft}

// Text is a block of text anchored in a rect. Only the corners resize it.
type Text struct {
	boxShape
	Body string
	Font draw.Font
}

// NewText creates a text graphic whose top-left corner is at p.
func NewText(p geom.Point, body string, font draw.Font, c color.NRGBA) *Text {
	g := &Text{
		boxShape: boxShape{Base: newBase(c, 1), RotatedRect: RotatedRect{Rect: geom.R(p.X, p.Y, p.X+1, p.Y+1)}},
		Body:     body,
		Font:     font,
	}
	g.fit()
	return g
}

func (g *Text) Kind() Kind { return KindText }

// fit grows the anchor rect so the measured text fits inside it.
func (g *Text) fit() {
	w, h := draw.MeasureText(g.Body, g.Font)
	if g.Body == "" {
		w = g.Font.Size * 4
	}
	w += 2 * TextPadding
	h += 2 * TextPadding
	n := g.Rect.Normalize()
	if n.Width() < w {
		n.Right = n.Left + w
	}
	if n.Height() < h {
		n.Bottom = n.Top + h
	}
	g.Rect = n
}

// SetBody replaces the text and grows the rect to fit it.
func (g *Text) SetBody(s string) {
	g.Body = s
	g.fit()
}

// SetFont changes the face and shrinks or grows the rect to the new text size.
func (g *Text) SetFont(f draw.Font) {
	g.Font = f
	n := g.Rect.Normalize()
	g.Rect = geom.R(n.Left, n.Top, n.Left+1, n.Top+1)
	g.fit()
}

func (g *Text) Draw(dc draw.Context, ui UI) {
	defer g.pushRotation(dc)()
	n := g.Rect.Normalize()
	dc.DrawText(g.Body, geom.Pt(n.Left+TextPadding, n.Top+TextPadding), g.Font, g.Color)
}

func (g *Text) Contains(p geom.Point, ui UI) bool {
	return g.fillContains(p, 0)
}

func (g *Text) HandleCount() int { return len(textHandles) }

func (g *Text) Handle(i int, ui UI) geom.Point {
	if i >= 1 && i <= len(textHandles) {
		return g.RotatedRect.Handle(textHandles[i-1], ui)
	}
	return g.RotatedRect.Handle(0, ui)
}

func (g *Text) HandleCursor(i int) Cursor {
	if i >= 1 && i <= len(textHandles) {
		return g.RotatedRect.HandleCursor(textHandles[i-1])
	}
	return CursorSizeAll
}

func (g *Text) MoveHandleTo(p geom.Point, i int) {
	if i >= 1 && i <= len(textHandles) {
		g.RotatedRect.MoveHandleTo(p, textHandles[i-1])
		return
	}
	g.RotatedRect.MoveHandleTo(p, 0)
}

func (g *Text) Normalize() {
	g.RotatedRect.Normalize()
	g.fit()
}

// Activate opens the in-place editor.
func (g *Text) Activate(a Activator) {
	if a != nil {
		a.EditText(g)
	}
}

func (g *Text) Clone() Graphic {
	c := *g
	return &c
}
