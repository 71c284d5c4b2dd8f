package draw

import (
	"image"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/gogpu/gg"

	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/logging"
)

// Raster is a Context backed by a gg software rasterizer.
// Logical coordinates are scaled by dpi into device pixels.
type Raster struct {
	dc     *gg.Context
	dpi    float64
	ms     matrixStack
	width  int
	height int
}

// NewRaster creates a surface of w×h device pixels whose base transform
// maps logical pixels to device pixels by dpi.
func NewRaster(w, h int, dpi float64) *Raster {
	if dpi <= 0 {
		dpi = 1
	}
	r := &Raster{
		dc:     gg.NewContext(w, h),
		dpi:    dpi,
		ms:     newMatrixStack(geom.Scale(dpi, dpi)),
		width:  w,
		height: h,
	}
	r.apply()
	return r
}

// Close releases the rasterizer.
func (r *Raster) Close() error {
	return r.dc.Close()
}

// Size returns the surface size in device pixels.
func (r *Raster) Size() (int, int) { return r.width, r.height }

// Image returns a copy of the current pixels.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// EncodePNG writes the surface as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

// Clear fills the whole surface with c.
func (r *Raster) Clear(c color.Color) {
	r.dc.ClearWithColor(gg.FromColor(c))
}

func toGG(m geom.Matrix2D) gg.Matrix {
	return gg.Matrix{A: m[0], B: m[2], C: m[4], D: m[1], E: m[3], F: m[5]}
}

func (r *Raster) apply() {
	r.dc.SetTransform(toGG(r.ms.cur))
}

func (r *Raster) PushTransform(m geom.Matrix2D) {
	r.ms.push(m)
	r.apply()
}

func (r *Raster) Pop() {
	r.ms.pop()
	r.apply()
}

func (r *Raster) Transform() geom.Matrix2D { return r.ms.cur }

// paint fills and strokes the path already built on dc.
func (r *Raster) paint(fill color.Color, pen *Pen) {
	if fill != nil {
		r.dc.SetColor(fill)
		if pen != nil {
			r.check(r.dc.FillPreserve())
		} else {
			r.check(r.dc.Fill())
		}
	}
	if pen != nil {
		r.setPen(*pen)
		r.check(r.dc.Stroke())
	}
	r.dc.ClearPath()
}

func (r *Raster) setPen(p Pen) {
	r.dc.SetColor(p.Color)
	r.dc.SetLineWidth(max(p.Width, 0.5))
	if len(p.Dash) > 0 {
		r.dc.SetDash(p.Dash...)
	} else {
		r.dc.ClearDash()
	}
}

func (r *Raster) check(err error) {
	if err != nil {
		logging.Logger().Warn("raster operation failed", "error", err)
	}
}

func (r *Raster) DrawRectangle(rc geom.Rect, fill color.Color, pen *Pen) {
	rc = rc.Normalize()
	r.dc.DrawRectangle(rc.Left, rc.Top, rc.Width(), rc.Height())
	r.paint(fill, pen)
}

func (r *Raster) DrawEllipse(rc geom.Rect, fill color.Color, pen *Pen) {
	rc = rc.Normalize()
	c := rc.Center()
	r.dc.DrawEllipse(c.X, c.Y, rc.Width()/2, rc.Height()/2)
	r.paint(fill, pen)
}

func (r *Raster) DrawLine(a, b geom.Point, pen Pen) {
	r.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	r.paint(nil, &pen)
}

func (r *Raster) DrawPolygon(pts []geom.Point, fill color.Color, pen *Pen) {
	if len(pts) < 2 {
		return
	}
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.dc.ClosePath()
	r.paint(fill, pen)
}

func (r *Raster) DrawPolyline(pts []geom.Point, pen Pen) {
	if len(pts) < 2 {
		return
	}
	r.dc.SetLineJoin(gg.LineJoinRound)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.paint(nil, &pen)
	r.dc.SetLineJoin(gg.LineJoinMiter)
	r.dc.SetLineCap(gg.LineCapButt)
}

// DrawText draws s with its top-left corner at the given point.
func (r *Raster) DrawText(s string, at geom.Point, font Font, c color.Color) {
	face, err := fonts.face(font)
	if err != nil {
		logging.Logger().Warn("font unavailable", "family", font.Family, "error", err)
		return
	}
	r.dc.SetFont(face)
	r.dc.SetColor(c)
	m := face.Metrics()
	lineH := m.Ascent + m.Descent + m.LineGap
	for i, line := range strings.Split(s, "\n") {
		r.dc.DrawString(line, at.X, at.Y+m.Ascent+float64(i)*lineH)
	}
}

func (r *Raster) MeasureText(s string, font Font) (float64, float64) {
	return MeasureText(s, font)
}

// DrawImage draws img into dst. Rotation and flips are applied to the
// pixels first since the rasterizer blits axis-aligned.
func (r *Raster) DrawImage(img image.Image, dst geom.Rect, opts ImageOptions) {
	dst = dst.Normalize()
	if opts.FlipX {
		img = transform.FlipH(img)
	}
	if opts.FlipY {
		img = transform.FlipV(img)
	}
	interp := gg.InterpBilinear
	if opts.Angle != 0 {
		img = transform.Rotate(img, opts.Angle, &transform.RotationOptions{ResizeBounds: true})
		dst = geom.RotateAt(opts.Angle, dst.Center()).TransformRect(dst)
	} else if !opts.Smooth {
		interp = gg.InterpNearest
	}
	r.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             dst.Left,
		Y:             dst.Top,
		DstWidth:      dst.Width(),
		DstHeight:     dst.Height(),
		Interpolation: interp,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

// deviceRect maps a logical rect to the clipped device pixel rectangle.
func (r *Raster) deviceRect(rc geom.Rect) image.Rectangle {
	d := r.ms.cur.TransformRect(rc.Normalize())
	out := image.Rect(
		int(math.Floor(d.Left)), int(math.Floor(d.Top)),
		int(math.Ceil(d.Right)), int(math.Ceil(d.Bottom)),
	)
	return out.Intersect(image.Rect(0, 0, r.width, r.height))
}

// deviceScale is the number of device pixels per logical pixel.
func (r *Raster) deviceScale() float64 {
	m := r.ms.cur
	return math.Sqrt(math.Abs(m.Determinant()))
}

// Pixelate averages each block of the composite under rc and redraws it.
func (r *Raster) Pixelate(rc geom.Rect, block float64) {
	dr := r.deviceRect(rc)
	if dr.Empty() {
		return
	}
	src, ok := r.dc.Image().(*image.RGBA)
	if !ok {
		return
	}
	b := max(1, block*r.deviceScale())
	w, h := dr.Dx(), dr.Dy()
	sw := max(1, int(math.Ceil(float64(w)/b)))
	sh := max(1, int(math.Ceil(float64(h)/b)))

	region := src.SubImage(dr)
	small := transform.Resize(region, sw, sh, transform.Box)
	blocks := transform.Resize(small, w, h, transform.NearestNeighbor)
	r.blit(blocks, dr)
}

// blit copies img to device rectangle dr, bypassing the logical transform.
func (r *Raster) blit(img image.Image, dr image.Rectangle) {
	r.dc.Push()
	r.dc.Identity()
	r.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             float64(dr.Min.X),
		Y:             float64(dr.Min.Y),
		DstWidth:      float64(dr.Dx()),
		DstHeight:     float64(dr.Dy()),
		Interpolation: gg.InterpNearest,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
	r.dc.Pop()
	r.apply()
}

// DrawChecker renders the checkerboard in device pixels so cells stay crisp.
func (r *Raster) DrawChecker(rc geom.Rect, cell float64, a, b color.Color) {
	dr := r.deviceRect(rc)
	if dr.Empty() {
		return
	}
	c := max(1, int(math.Round(cell*r.deviceScale())))
	tile := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	for y := range dr.Dy() {
		for x := range dr.Dx() {
			if ((x+dr.Min.X)/c+(y+dr.Min.Y)/c)%2 == 0 {
				tile.Set(x, y, a)
			} else {
				tile.Set(x, y, b)
			}
		}
	}
	r.blit(tile, dr)
}

var _ Context = (*Raster)(nil)
