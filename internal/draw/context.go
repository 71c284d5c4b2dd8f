// Package draw defines the drawing surface graphics render into and its two
// implementations: Raster, which rasterizes with gogpu/gg, and Recorder,
// which captures draw commands for a remote front-end.
package draw

import (
	"errors"
	"image"
	"image/color"

	"github.com/inamate/annotate/internal/geom"
)

// ErrInvalidArgument is returned when a caller passes a nil surface.
var ErrInvalidArgument = errors.New("invalid argument")

// Pen describes a stroke.
type Pen struct {
	Color color.NRGBA
	Width float64
	Dash  []float64
}

// FontStyle is the slant of a font face.
type FontStyle uint8

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
	FontStyleOblique
)

// Common font weights.
const (
	WeightNormal = 400
	WeightBold   = 700
)

// StretchNormal is the default font stretch (1 = ultra condensed, 9 = ultra expanded).
const StretchNormal = 5

// Font selects a face for text drawing.
type Font struct {
	Family  string    `json:"family"`
	Size    float64   `json:"size"`
	Style   FontStyle `json:"style"`
	Weight  int       `json:"weight"`
	Stretch int       `json:"stretch"`
}

// ImageOptions controls how DrawImage places a bitmap.
type ImageOptions struct {
	Angle  float64 // degrees about the destination center
	FlipX  bool
	FlipY  bool
	Smooth bool
	Source string // file the bitmap came from, for front-ends that fetch it themselves
}

// Context is the device-independent surface graphics draw into.
// Coordinates are logical pixels transformed by the pushed matrices.
// A nil fill or pen means "don't fill" or "don't stroke".
type Context interface {
	PushTransform(m geom.Matrix2D)
	Pop()
	Transform() geom.Matrix2D

	DrawRectangle(r geom.Rect, fill color.Color, pen *Pen)
	DrawEllipse(r geom.Rect, fill color.Color, pen *Pen)
	DrawLine(a, b geom.Point, pen Pen)
	DrawPolygon(pts []geom.Point, fill color.Color, pen *Pen)
	DrawPolyline(pts []geom.Point, pen Pen)
	DrawText(s string, at geom.Point, font Font, c color.Color)
	MeasureText(s string, font Font) (w, h float64)
	DrawImage(img image.Image, dst geom.Rect, opts ImageOptions)

	// Pixelate replaces the already drawn pixels under r with blocks of
	// the given logical size.
	Pixelate(r geom.Rect, block float64)
	// DrawChecker fills r with a two-colour checkerboard of the given cell size.
	DrawChecker(r geom.Rect, cell float64, a, b color.Color)
}

// matrixStack is the transform bookkeeping shared by both implementations.
type matrixStack struct {
	stack []geom.Matrix2D
	cur   geom.Matrix2D
}

func newMatrixStack(base geom.Matrix2D) matrixStack {
	return matrixStack{cur: base}
}

func (s *matrixStack) push(m geom.Matrix2D) {
	s.stack = append(s.stack, s.cur)
	s.cur = s.cur.Multiply(m)
}

func (s *matrixStack) pop() {
	if len(s.stack) == 0 {
		return
	}
	s.cur = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}
