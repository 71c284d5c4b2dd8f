package draw

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"

	"github.com/inamate/annotate/internal/geom"
)

// Command is a single drawing operation for a front-end to execute on a
// Canvas2D-like surface. Commands are in painter's order.
type Command struct {
	Op          string       `json:"op"` // rect, ellipse, line, polygon, polyline, text, image, pixelate, checker
	Transform   []float64    `json:"transform,omitempty"`
	Rect        *geom.Rect   `json:"rect,omitempty"`
	Points      []geom.Point `json:"points,omitempty"`
	Fill        string       `json:"fill,omitempty"`
	Stroke      string       `json:"stroke,omitempty"`
	StrokeWidth float64      `json:"strokeWidth,omitempty"`
	Dash        []float64    `json:"dash,omitempty"`
	Text        string       `json:"text,omitempty"`
	Font        *Font        `json:"font,omitempty"`
	Angle       float64      `json:"angle,omitempty"`
	FlipX       bool         `json:"flipX,omitempty"`
	FlipY       bool         `json:"flipY,omitempty"`
	ImageWidth  int          `json:"imageWidth,omitempty"`
	ImageHeight int          `json:"imageHeight,omitempty"`
	Smooth      bool         `json:"smooth,omitempty"`
	Block       float64      `json:"block,omitempty"`
	Source      string       `json:"source,omitempty"`
}

// Recorder is a Context that records commands instead of drawing.
type Recorder struct {
	ms       matrixStack
	Commands []Command
}

// NewRecorder returns a recorder with the given base transform.
func NewRecorder(base geom.Matrix2D) *Recorder {
	return &Recorder{ms: newMatrixStack(base)}
}

// JSON serializes the recorded commands.
func (r *Recorder) JSON() (string, error) {
	data, err := json.Marshal(r.Commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// Ops returns the op names in order, mostly useful to tests.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		ops[i] = c.Op
	}
	return ops
}

// Reset drops recorded commands, keeping the base transform.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
}

// ColorString formats c as #RRGGBBAA.
func ColorString(c color.Color) string {
	if c == nil {
		return ""
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X%02X", n.R, n.G, n.B, n.A)
}

// emit appends c. An identity transform is left out.
func (r *Recorder) emit(c Command) {
	if !r.ms.cur.IsIdentity() {
		c.Transform = r.ms.cur.ToSlice()
	}
	r.Commands = append(r.Commands, c)
}

func withPen(c Command, pen *Pen) Command {
	if pen != nil {
		c.Stroke = ColorString(pen.Color)
		c.StrokeWidth = pen.Width
		c.Dash = pen.Dash
	}
	return c
}

func (r *Recorder) PushTransform(m geom.Matrix2D) { r.ms.push(m) }
func (r *Recorder) Pop()                          { r.ms.pop() }
func (r *Recorder) Transform() geom.Matrix2D      { return r.ms.cur }

func (r *Recorder) DrawRectangle(rc geom.Rect, fill color.Color, pen *Pen) {
	rc = rc.Normalize()
	r.emit(withPen(Command{Op: "rect", Rect: &rc, Fill: ColorString(fill)}, pen))
}

func (r *Recorder) DrawEllipse(rc geom.Rect, fill color.Color, pen *Pen) {
	rc = rc.Normalize()
	r.emit(withPen(Command{Op: "ellipse", Rect: &rc, Fill: ColorString(fill)}, pen))
}

func (r *Recorder) DrawLine(a, b geom.Point, pen Pen) {
	r.emit(withPen(Command{Op: "line", Points: []geom.Point{a, b}}, &pen))
}

func (r *Recorder) DrawPolygon(pts []geom.Point, fill color.Color, pen *Pen) {
	r.emit(withPen(Command{Op: "polygon", Points: append([]geom.Point(nil), pts...), Fill: ColorString(fill)}, pen))
}

func (r *Recorder) DrawPolyline(pts []geom.Point, pen Pen) {
	r.emit(withPen(Command{Op: "polyline", Points: append([]geom.Point(nil), pts...)}, &pen))
}

func (r *Recorder) DrawText(s string, at geom.Point, font Font, c color.Color) {
	f := font
	r.emit(Command{Op: "text", Text: s, Points: []geom.Point{at}, Font: &f, Fill: ColorString(c)})
}

func (r *Recorder) MeasureText(s string, font Font) (float64, float64) {
	return MeasureText(s, font)
}

func (r *Recorder) DrawImage(img image.Image, dst geom.Rect, opts ImageOptions) {
	dst = dst.Normalize()
	c := Command{Op: "image", Rect: &dst, Angle: opts.Angle, FlipX: opts.FlipX, FlipY: opts.FlipY, Smooth: opts.Smooth, Source: opts.Source}
	if img != nil {
		c.ImageWidth, c.ImageHeight = img.Bounds().Dx(), img.Bounds().Dy()
	}
	r.emit(c)
}

func (r *Recorder) Pixelate(rc geom.Rect, block float64) {
	rc = rc.Normalize()
	r.emit(Command{Op: "pixelate", Rect: &rc, Block: block})
}

func (r *Recorder) DrawChecker(rc geom.Rect, cell float64, a, b color.Color) {
	rc = rc.Normalize()
	r.emit(Command{Op: "checker", Rect: &rc, Block: cell, Fill: ColorString(a), Stroke: ColorString(b)})
}

var _ Context = (*Recorder)(nil)
