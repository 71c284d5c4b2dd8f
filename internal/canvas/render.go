package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/imageio"
	"github.com/inamate/annotate/internal/scene"
)

var (
	backdropLight = color.NRGBA{R: 0xE4, G: 0xE4, B: 0xE4, A: 0xFF}
	backdropDark  = color.NRGBA{R: 0xD8, G: 0xD8, B: 0xD8, A: 0xFF}
)

// backdropCell is half the parallax period so the pattern tiles seamlessly.
const backdropCell = 50

// Render draws the viewport into dc: the backdrop, the drawing background
// under the content, then every graphic with its selection tracker.
func (c *Canvas) Render(dc draw.Context) error {
	if dc == nil {
		return fmt.Errorf("render: nil drawing context: %w", ErrInvalidArgument)
	}
	dc.PushTransform(c.view.Matrix())
	defer dc.Pop()
	dc.DrawChecker(c.view.Backdrop(), backdropCell, backdropLight, backdropDark)
	scene.DrawBackground(dc, c.background, c.sc.ContentBounds())
	return c.sc.Render(dc, c.UI())
}

// RenderJSON renders the viewport as recorded draw commands.
func (c *Canvas) RenderJSON() (string, error) {
	rec := draw.NewRecorder(geom.Identity())
	if err := c.Render(rec); err != nil {
		return "", err
	}
	return rec.JSON()
}

// RenderImage rasterizes the viewport at device resolution.
func (c *Canvas) RenderImage() (image.Image, error) {
	w, h := c.view.Size()
	dpi := c.view.DPI()
	r := draw.NewRaster(max(1, int(math.Ceil(w*dpi))), max(1, int(math.Ceil(h*dpi))), dpi)
	defer r.Close()
	if err := c.Render(r); err != nil {
		return nil, err
	}
	return r.Image(), nil
}

// RenderPNG rasterizes the viewport and encodes it as PNG.
func (c *Canvas) RenderPNG() ([]byte, error) {
	img, err := c.RenderImage()
	if err != nil {
		return nil, err
	}
	return imageio.PNGBytes(img)
}
