package tool

import (
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
)

// DragState is the scratch state of one captured gesture.
type DragState struct {
	Captured bool
	Down     geom.Point // where the gesture started, logical
	Last     geom.Point // last (snapped) logical point
	Event    Event      // last raw event, for Resnap
}

// creator builds one graphic over a drag.
type creator interface {
	begin(h Host, p geom.Point)
	update(h Host, p geom.Point)
	finish(h Host)
	abort(h Host)
}

// gesture drives a creator: it captures the mouse, clears the selection,
// applies snapping and routes an uncaptured mouse-up to abort.
type gesture struct {
	id     ID
	cursor graphic.Cursor
	snap   SnapMode
	impl   creator
	state  DragState
}

func newGesture(id ID, cursor graphic.Cursor, snap SnapMode, impl creator) *gesture {
	return &gesture{id: id, cursor: cursor, snap: snap, impl: impl}
}

func (g *gesture) ID() ID                 { return g.id }
func (g *gesture) Cursor() graphic.Cursor { return g.cursor }
func (g *gesture) Captured() bool         { return g.state.Captured }

func (g *gesture) OnMouseDown(h Host, e Event) {
	h.CaptureMouse()
	h.Scene().UnselectAll()
	g.state = DragState{Captured: true, Down: e.Point, Last: e.Point, Event: e}
	g.impl.begin(h, e.Point)
}

func (g *gesture) OnMouseMove(h Host, e Event) {
	if !g.state.Captured {
		h.SetCursor(g.cursor)
		return
	}
	p := e.Point
	if g.snap != SnapNone && e.Shift {
		p = geom.SnapAngle(g.state.Down, p, g.snap == SnapDiagonal)
	}
	g.state.Last = p
	g.state.Event = e
	g.impl.update(h, p)
}

func (g *gesture) OnMouseUp(h Host, e Event) {
	if !g.state.Captured {
		g.impl.abort(h)
		return
	}
	g.OnMouseMove(h, e)
	g.state.Captured = false
	h.ReleaseMouseCapture()
	g.impl.finish(h)
}

func (g *gesture) AbortOperation(h Host) {
	if g.state.Captured {
		g.state.Captured = false
		h.ReleaseMouseCapture()
	}
	g.impl.abort(h)
}

func (g *gesture) Resnap(h Host, shift bool) {
	if !g.state.Captured {
		return
	}
	e := g.state.Event
	e.Shift = shift
	g.OnMouseMove(h, e)
}
