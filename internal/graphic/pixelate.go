package graphic

import (
	"image/color"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
)

// DefaultBlockSize is the pixelate block edge in logical pixels.
const DefaultBlockSize = 8.0

// Pixelate obscures whatever was drawn beneath its rect. It never rotates.
type Pixelate struct {
	boxShape
	Block float64
}

// NewPixelate creates a pixelate region.
func NewPixelate(r geom.Rect, block float64) *Pixelate {
	if block <= 0 {
		block = DefaultBlockSize
	}
	return &Pixelate{
		boxShape: boxShape{Base: newBase(color.NRGBA{}, 1), RotatedRect: RotatedRect{Rect: r}},
		Block:    block,
	}
}

func (g *Pixelate) Kind() Kind { return KindPixelate }

func (g *Pixelate) Draw(dc draw.Context, ui UI) {
	dc.Pixelate(g.Rect, g.Block)
}

func (g *Pixelate) Contains(p geom.Point, ui UI) bool {
	return g.fillContains(p, 0)
}

func (g *Pixelate) HandleCount() int { return HandleLeft }

func (g *Pixelate) MoveHandleTo(p geom.Point, i int) {
	if i == RotateHandle {
		return
	}
	g.RotatedRect.MoveHandleTo(p, i)
}

func (g *Pixelate) Clone() Graphic {
	c := *g
	return &c
}
