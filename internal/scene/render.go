package scene

import (
	"image"
	"math"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
)

// RenderImage rasterizes graphics over bg at the given DPI, cropped to
// their combined bounds. Selection trackers are not drawn. An empty input
// yields a 1×1 image.
func RenderImage(gs []graphic.Graphic, bg Background, dpi float64, ui graphic.UI) image.Image {
	var bounds geom.Rect
	for _, g := range gs {
		if g.Kind() != graphic.KindSelection {
			bounds = bounds.Union(g.Bounds())
		}
	}
	if dpi <= 0 {
		dpi = 1
	}
	w := max(1, int(math.Ceil(bounds.Width()*dpi)))
	h := max(1, int(math.Ceil(bounds.Height()*dpi)))

	r := draw.NewRaster(w, h, dpi)
	defer r.Close()
	r.PushTransform(geom.Translate(-bounds.Left, -bounds.Top))
	DrawBackground(r, bg, bounds)
	for _, g := range gs {
		if g.Kind() == graphic.KindSelection {
			continue
		}
		g.Draw(r, ui)
	}
	r.Pop()
	return r.Image()
}

// RenderImage rasterizes the whole collection.
func (c *Collection) RenderImage(bg Background, dpi float64, ui graphic.UI) image.Image {
	return RenderImage(c.items, bg, dpi, ui)
}
