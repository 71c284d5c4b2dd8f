// Package tool implements the canvas tools: the pointer, panning and one
// creation tool per graphic kind. Tools receive mouse gestures from the
// canvas and mutate its collection through Host.
package tool

import (
	"fmt"
	"image/color"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
	"github.com/inamate/annotate/internal/scene"
)

// ID names a tool.
type ID uint8

const (
	None ID = iota // pan
	Pointer
	Rectangle
	FilledRectangle
	Ellipse
	Line
	Arrow
	PolyLine
	Text
	Count
	Pixelate
)

var idNames = [...]string{
	None:            "none",
	Pointer:         "pointer",
	Rectangle:       "rectangle",
	FilledRectangle: "filled-rectangle",
	Ellipse:         "ellipse",
	Line:            "line",
	Arrow:           "arrow",
	PolyLine:        "polyline",
	Text:            "text",
	Count:           "count",
	Pixelate:        "pixelate",
}

func (id ID) String() string {
	if int(id) < len(idNames) {
		return idNames[id]
	}
	return fmt.Sprintf("tool(%d)", uint8(id))
}

// ParseID looks a tool up by name.
func ParseID(s string) (ID, error) {
	for i, n := range idNames {
		if n == s {
			return ID(i), nil
		}
	}
	return None, fmt.Errorf("unknown tool %q: %w", s, graphic.ErrInvalidArgument)
}

// Creates returns the kind of graphic the tool draws.
func (id ID) Creates() (graphic.Kind, bool) {
	switch id {
	case Rectangle:
		return graphic.KindRectangle, true
	case FilledRectangle:
		return graphic.KindFilledRectangle, true
	case Ellipse:
		return graphic.KindEllipse, true
	case Line:
		return graphic.KindLine, true
	case Arrow:
		return graphic.KindArrow, true
	case PolyLine:
		return graphic.KindPolyLine, true
	case Text:
		return graphic.KindText, true
	case Count:
		return graphic.KindCount, true
	case Pixelate:
		return graphic.KindPixelate, true
	}
	return 0, false
}

// SnapMode restricts drag points while Shift is held.
type SnapMode uint8

const (
	SnapNone SnapMode = iota
	// SnapDiagonal locks to the diagonals, keeping boxes square.
	SnapDiagonal
	// SnapAll locks to multiples of 45°.
	SnapAll
)

// Defaults are the attributes given to newly created graphics.
type Defaults struct {
	Color         color.NRGBA
	LineWidth     float64
	Font          draw.Font
	PixelateBlock float64
}

// Event is one mouse event.
type Event struct {
	Point geom.Point // logical coordinates
	View  geom.Point // viewport coordinates
	Shift bool
}

// Host is the canvas as seen by a tool.
type Host interface {
	Scene() *scene.Collection
	UI() graphic.UI
	Defaults() Defaults
	CaptureMouse()
	ReleaseMouseCapture()
	SetCursor(c graphic.Cursor)
	// Commit records the collection as a new history step.
	Commit()
	EditText(t *graphic.Text)
	NextOrdinal() int
	PanBy(dx, dy float64)
}

// Tool handles one mouse gesture at a time.
type Tool interface {
	ID() ID
	Cursor() graphic.Cursor
	OnMouseDown(h Host, e Event)
	OnMouseMove(h Host, e Event)
	OnMouseUp(h Host, e Event)
	// AbortOperation ends the gesture in progress without committing a
	// creation.
	AbortOperation(h Host)
	// Captured reports whether a gesture is in progress.
	Captured() bool
	// Resnap repeats the last move with a new Shift state.
	Resnap(h Host, shift bool)
}

// New creates the tool with the given id.
func New(id ID) Tool {
	switch id {
	case None:
		return &Pan{}
	case Pointer:
		return &PointerTool{}
	case Line, Arrow:
		return newGesture(id, graphic.CursorCross, SnapAll, &lineCreator{arrow: id == Arrow})
	case PolyLine:
		return newGesture(id, graphic.CursorCross, SnapNone, &polyLineCreator{})
	case Text:
		return newGesture(id, graphic.CursorIBeam, SnapNone, &textCreator{})
	case Count:
		return newGesture(id, graphic.CursorCross, SnapNone, &countCreator{})
	case Rectangle, FilledRectangle, Ellipse, Pixelate:
		return newGesture(id, graphic.CursorCross, SnapDiagonal, &boxCreator{id: id})
	}
	panic(fmt.Sprintf("tool: unknown id %d", uint8(id)))
}
