package tool

import (
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
)

type pointerMode uint8

const (
	pointerIdle pointerMode = iota
	pointerMove
	pointerResize
	pointerBand
)

// PointerTool selects, moves, resizes and rotates graphics.
type PointerTool struct {
	state  DragState
	mode   pointerMode
	target graphic.Graphic // resize target
	handle int
	band   *graphic.SelectionRectangle
	moved  bool
}

func (t *PointerTool) ID() ID                 { return Pointer }
func (t *PointerTool) Cursor() graphic.Cursor { return graphic.CursorArrow }
func (t *PointerTool) Captured() bool         { return t.state.Captured }

func (t *PointerTool) OnMouseDown(h Host, e Event) {
	sc := h.Scene()
	g, handle := sc.HitTest(e.Point, h.UI())
	t.mode, t.target, t.handle, t.moved = pointerIdle, nil, 0, false

	switch {
	case g == nil:
		if !e.Shift {
			sc.UnselectAll()
		}
		t.band = graphic.NewSelectionRectangle(e.Point)
		sc.Add(t.band)
		t.mode = pointerBand
	case handle > 0:
		sc.UnselectAll()
		g.Attrs().Selected = true
		t.target, t.handle = g, handle
		t.mode = pointerResize
	case e.Shift:
		g.Attrs().Selected = !g.Attrs().Selected
		if g.Attrs().Selected {
			t.mode = pointerMove
		}
	default:
		if !g.Attrs().Selected {
			sc.UnselectAll()
			g.Attrs().Selected = true
		}
		t.mode = pointerMove
	}

	h.CaptureMouse()
	t.state = DragState{Captured: true, Down: e.Point, Last: e.Point, Event: e}
}

func (t *PointerTool) hoverCursor(h Host, p geom.Point) graphic.Cursor {
	g, handle := h.Scene().HitTest(p, h.UI())
	switch {
	case g == nil:
		return graphic.CursorArrow
	case handle > 0:
		return g.HandleCursor(handle)
	}
	return graphic.CursorSizeAll
}

func (t *PointerTool) OnMouseMove(h Host, e Event) {
	if !t.state.Captured {
		h.SetCursor(t.hoverCursor(h, e.Point))
		return
	}
	p := e.Point
	d := p.Sub(t.state.Last)
	switch t.mode {
	case pointerMove:
		if d != (geom.Point{}) {
			sc := h.Scene()
			for _, g := range sc.Selected() {
				g.Move(d.X, d.Y)
				sc.Invalidate(g)
			}
			t.moved = true
		}
	case pointerResize:
		t.target.MoveHandleTo(p, t.handle)
		h.Scene().Invalidate(t.target)
		t.moved = true
	case pointerBand:
		t.band.MoveHandleTo(p, graphic.HandleBottomRight)
		h.Scene().Invalidate(t.band)
	}
	t.state.Last = p
	t.state.Event = e
}

func (t *PointerTool) OnMouseUp(h Host, e Event) {
	if !t.state.Captured {
		t.AbortOperation(h)
		return
	}
	t.OnMouseMove(h, e)
	t.state.Captured = false
	h.ReleaseMouseCapture()
	t.finish(h, true)
}

// finish ends the gesture. A rubber band selects what it touches only when
// the gesture completed normally.
func (t *PointerTool) finish(h Host, selectBand bool) {
	sc := h.Scene()
	switch t.mode {
	case pointerBand:
		r := t.band.Rect.Normalize()
		sc.Remove(t.band)
		t.band = nil
		if selectBand {
			for _, g := range sc.Items() {
				if g.IntersectsWith(r) {
					g.Attrs().Selected = true
					sc.Invalidate(g)
				}
			}
		}
	case pointerMove, pointerResize:
		if t.moved {
			if t.target != nil {
				t.target.Normalize()
			}
			h.Commit()
		}
	}
	t.mode, t.target, t.moved = pointerIdle, nil, false
}

// AbortOperation removes a rubber band without selecting, or commits a
// move or resize already in progress.
func (t *PointerTool) AbortOperation(h Host) {
	if t.state.Captured {
		t.state.Captured = false
		h.ReleaseMouseCapture()
	}
	t.finish(h, false)
}

func (t *PointerTool) Resnap(Host, bool) {}

// Pan drags the view.
type Pan struct {
	state DragState
}

func (t *Pan) ID() ID                 { return None }
func (t *Pan) Cursor() graphic.Cursor { return graphic.CursorHand }
func (t *Pan) Captured() bool         { return t.state.Captured }

func (t *Pan) OnMouseDown(h Host, e Event) {
	h.CaptureMouse()
	t.state = DragState{Captured: true, Down: e.View, Last: e.View, Event: e}
}

func (t *Pan) OnMouseMove(h Host, e Event) {
	if !t.state.Captured {
		h.SetCursor(graphic.CursorHand)
		return
	}
	d := e.View.Sub(t.state.Last)
	if d != (geom.Point{}) {
		h.PanBy(d.X, d.Y)
	}
	t.state.Last = e.View
	t.state.Event = e
}

func (t *Pan) OnMouseUp(h Host, e Event) {
	if !t.state.Captured {
		return
	}
	t.OnMouseMove(h, e)
	t.AbortOperation(h)
}

func (t *Pan) AbortOperation(h Host) {
	if t.state.Captured {
		t.state.Captured = false
		h.ReleaseMouseCapture()
	}
}

func (t *Pan) Resnap(Host, bool) {}
