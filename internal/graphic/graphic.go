// Package graphic implements the drawable objects of the canvas: the shape
// variants, their selection handles, hit-testing and binary payloads.
package graphic

import (
	"errors"
	"image/color"
	"sync/atomic"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/imageio"
)

var (
	// ErrInvalidArgument is returned for malformed construction arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrFileNotFound is returned when an image graphic's file is missing.
	ErrFileNotFound = imageio.ErrFileNotFound
)

// ID identifies a graphic for the lifetime of a session.
type ID uint32

var lastID atomic.Uint32

// NextID allocates a new, never before returned id.
func NextID() ID {
	return ID(lastID.Add(1))
}

// ObserveID advances the allocator past id so loaded graphics never collide
// with ones created later.
func ObserveID(id ID) {
	for {
		cur := lastID.Load()
		if uint32(id) <= cur || lastID.CompareAndSwap(cur, uint32(id)) {
			return
		}
	}
}

// Kind is the serialized variant discriminator.
type Kind uint16

const (
	KindRectangle Kind = iota + 1
	KindFilledRectangle
	KindEllipse
	KindLine
	KindArrow
	KindPolyLine
	KindText
	KindCount
	KindPixelate
	KindImage

	// KindSelection is the transient rubber band. It is never serialized.
	KindSelection Kind = 0xFFFF
)

var kindNames = map[Kind]string{
	KindRectangle:       "rectangle",
	KindFilledRectangle: "filledRectangle",
	KindEllipse:         "ellipse",
	KindLine:            "line",
	KindArrow:           "arrow",
	KindPolyLine:        "polyline",
	KindText:            "text",
	KindCount:           "count",
	KindPixelate:        "pixelate",
	KindImage:           "image",
	KindSelection:       "selection",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Cursor is the pointer shape shown over a handle.
type Cursor uint8

const (
	CursorArrow Cursor = iota
	CursorCross
	CursorSizeAll
	CursorSizeWE
	CursorSizeNESW
	CursorSizeNS
	CursorSizeNWSE
	CursorRotate
	CursorIBeam
	CursorHand
)

var cursorNames = [...]string{"default", "crosshair", "move", "ew-resize", "nesw-resize", "ns-resize", "nwse-resize", "grab", "text", "pointer"}

// CSS returns the CSS cursor keyword.
func (c Cursor) CSS() string {
	if int(c) < len(cursorNames) {
		return cursorNames[c]
	}
	return "default"
}

// Handle geometry in screen units, multiplied by UI.Scale.
const (
	HandleSize         = 8.0
	RotateHandleOffset = 20.0
	MinHitWidth        = 6.0
)

// UI carries the per-canvas render parameters graphics need but don't own.
type UI struct {
	// Scale converts screen units to logical units so handles keep a
	// constant on-screen size.
	Scale       float64
	HandleColor color.NRGBA
	// Loader, when set, decodes image graphics asynchronously.
	Loader *imageio.Loader
	// Invalidate is called when an asynchronous load completes.
	Invalidate func()
}

func (ui UI) scale() float64 {
	if ui.Scale <= 0 {
		return 1
	}
	return ui.Scale
}

// Activator receives requests from Activate; the canvas implements it.
type Activator interface {
	EditText(t *Text)
}

// Graphic is one drawable object.
type Graphic interface {
	Kind() Kind
	Attrs() *Base

	Draw(dc draw.Context, ui UI)
	Bounds() geom.Rect
	Contains(p geom.Point, ui UI) bool
	IntersectsWith(r geom.Rect) bool

	HandleCount() int
	Handle(i int, ui UI) geom.Point
	HandleCursor(i int) Cursor
	// MoveHandleTo drags handle i to p; i == 0 moves the whole body.
	MoveHandleTo(p geom.Point, i int)
	Move(dx, dy float64)
	Normalize()
	Clone() Graphic
	Activate(a Activator)

	writeFields(w *fieldWriter)
	readField(f field) error
}

// Base holds the attributes every graphic carries.
type Base struct {
	ID        ID
	Color     color.NRGBA
	LineWidth float64
	Selected  bool
}

func newBase(c color.NRGBA, lineWidth float64) Base {
	return Base{ID: NextID(), Color: c, LineWidth: lineWidth}
}

// Attrs returns the shared attributes.
func (b *Base) Attrs() *Base { return b }

// Activate does nothing for most graphics.
func (b *Base) Activate(Activator) {}

func (b *Base) pen() draw.Pen {
	return draw.Pen{Color: b.Color, Width: b.LineWidth}
}

// hitTolerance is half the effective stroke width used for hit-testing.
func (b *Base) hitTolerance(ui UI) float64 {
	return max(b.LineWidth, MinHitWidth*ui.scale()) / 2
}

func handleRect(p geom.Point, ui UI) geom.Rect {
	return geom.RectFromCenter(p, HandleSize*ui.scale(), HandleSize*ui.scale())
}

// HitTest returns -1 when p misses g, the handle index (≥ 1) when p is on a
// handle of a selected graphic, or 0 for the body.
func HitTest(g Graphic, p geom.Point, ui UI) int {
	if g.Attrs().Selected {
		for i := g.HandleCount(); i >= 1; i-- {
			if handleRect(g.Handle(i, ui), ui).Contains(p) {
				return i
			}
		}
	}
	if g.Contains(p, ui) {
		return 0
	}
	return -1
}

// DrawSelection draws g and, when selected, its tracker.
func DrawSelection(g Graphic, dc draw.Context, ui UI) {
	if dc == nil {
		return
	}
	g.Draw(dc, ui)
	if g.Attrs().Selected {
		drawTracker(g, dc, ui)
	}
}

func drawTracker(g Graphic, dc draw.Context, ui UI) {
	s := ui.scale()
	hc := ui.HandleColor
	if hc.A == 0 {
		hc = color.NRGBA{R: 0x1E, G: 0x90, B: 0xFF, A: 0xFF}
	}
	outline := draw.Pen{Color: hc, Width: s, Dash: []float64{4 * s, 2 * s}}
	if rr, ok := g.(interface{ rotated() RotatedRect }); ok {
		q := rr.rotated().Quad()
		dc.DrawPolygon(q[:], nil, &outline)
		if g.HandleCount() >= RotateHandle {
			top := g.Handle(2, ui)
			dc.DrawLine(top, g.Handle(RotateHandle, ui), draw.Pen{Color: hc, Width: s})
		}
	}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for i := 1; i <= g.HandleCount(); i++ {
		p := g.Handle(i, ui)
		if i == RotateHandle && isRotatable(g) {
			dc.DrawEllipse(handleRect(p, ui), white, &draw.Pen{Color: hc, Width: s})
			continue
		}
		dc.DrawRectangle(handleRect(p, ui), white, &draw.Pen{Color: hc, Width: s})
	}
}

func isRotatable(g Graphic) bool {
	switch g.Kind() {
	case KindRectangle, KindFilledRectangle, KindEllipse, KindImage:
		return true
	}
	return false
}

// Equal compares two graphics by their serialized form.
func Equal(a, b Graphic) bool {
	if a.Kind() != b.Kind() || *a.Attrs() != *b.Attrs() {
		return false
	}
	return string(EncodePayload(a)) == string(EncodePayload(b))
}
