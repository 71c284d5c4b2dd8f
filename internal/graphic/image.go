package graphic

import (
	"image"
	"image/color"
	"math"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/imageio"
	"github.com/inamate/annotate/internal/logging"
)

// bitmapCache holds the decoded file of one image graphic.
type bitmapCache struct {
	img     image.Image
	err     error
	loading bool
}

// Image places a raster file on the canvas.
type Image struct {
	boxShape
	Path  string
	FlipX bool
	FlipY bool

	cache *bitmapCache
}

// NewImage creates an image graphic for the file at path.
// It fails with ErrFileNotFound when the file does not exist.
func NewImage(path string, r geom.Rect) (*Image, error) {
	if err := imageio.CheckExists(path); err != nil {
		return nil, err
	}
	return &Image{
		boxShape: boxShape{Base: newBase(color.NRGBA{A: 255}, 0), RotatedRect: RotatedRect{Rect: r}},
		Path:     path,
		cache:    &bitmapCache{},
	}, nil
}

func (g *Image) Kind() Kind { return KindImage }

// Bitmap returns the decoded image, loading it on first use. With an async
// loader in ui it returns nil until the decode has been posted back.
func (g *Image) Bitmap(ui UI) image.Image {
	if g.cache == nil {
		g.cache = &bitmapCache{}
	}
	c := g.cache
	if c.img != nil || c.err != nil || c.loading {
		return c.img
	}
	if ui.Loader != nil {
		c.loading = true
		ui.Loader.Load(g.Path, func(img image.Image, err error) {
			c.img, c.err, c.loading = img, err, false
			if ui.Invalidate != nil {
				ui.Invalidate()
			}
		})
		return nil
	}
	c.img, c.err = imageio.Load(g.Path)
	if c.err != nil {
		logging.Logger().Warn("image graphic unavailable, drawing placeholder", "path", g.Path, "error", c.err)
	}
	return c.img
}

// SetBitmap attaches an already decoded image.
func (g *Image) SetBitmap(img image.Image) {
	g.cache = &bitmapCache{img: img}
}

func (g *Image) Draw(dc draw.Context, ui UI) {
	img := g.Bitmap(ui)
	if img == nil {
		g.drawPlaceholder(dc)
		return
	}
	dst := g.Rect.Normalize()
	b := img.Bounds()
	// Aligned when one bitmap pixel lands on one device pixel: no rotation
	// here or in the context, and the effective scale is 1.
	m := dc.Transform()
	aligned := g.Angle == 0 && m[1] == 0 && m[2] == 0 &&
		float64(b.Dx()) == dst.Width()*m[0] && float64(b.Dy()) == dst.Height()*m[3]
	if aligned {
		o := m.TransformPoint(dst.TopLeft())
		dst = dst.Offset((math.Round(o.X)-o.X)/m[0], (math.Round(o.Y)-o.Y)/m[3])
	}
	dc.DrawImage(img, dst, draw.ImageOptions{
		Angle:  g.Angle,
		FlipX:  g.FlipX,
		FlipY:  g.FlipY,
		Smooth: !aligned,
		Source: g.Path,
	})
}

func (g *Image) drawPlaceholder(dc draw.Context) {
	defer g.pushRotation(dc)()
	pen := draw.Pen{Color: color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}, Width: 1}
	n := g.Rect.Normalize()
	dc.DrawRectangle(n, nil, &pen)
	dc.DrawLine(n.TopLeft(), n.BottomRight(), pen)
	dc.DrawLine(geom.Pt(n.Right, n.Top), geom.Pt(n.Left, n.Bottom), pen)
}

func (g *Image) Contains(p geom.Point, ui UI) bool {
	return g.fillContains(p, 0)
}

// Normalize orders the edges, recording a swapped axis as a flip so the
// picture stays mirrored the way the user dragged it.
func (g *Image) Normalize() {
	sx, sy := g.RotatedRect.Normalize()
	if sx {
		g.FlipX = !g.FlipX
	}
	if sy {
		g.FlipY = !g.FlipY
	}
}

// Clone copies the graphic with an empty bitmap cache.
func (g *Image) Clone() Graphic {
	c := *g
	c.cache = &bitmapCache{}
	return &c
}
