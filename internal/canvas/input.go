package canvas

import (
	"strings"

	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
	"github.com/inamate/annotate/internal/tool"
)

// Button is a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Modifiers is the keyboard modifier state of an input event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Key is a key the canvas binds.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyShift
	KeyEscape
	KeyDelete
	KeyHome
	KeyEnd
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyA
	KeyY
	KeyZ
	Key0
	Key1
)

var keyNames = map[string]Key{
	"shift":      KeyShift,
	"escape":     KeyEscape,
	"esc":        KeyEscape,
	"delete":     KeyDelete,
	"del":        KeyDelete,
	"home":       KeyHome,
	"end":        KeyEnd,
	"arrowleft":  KeyLeft,
	"arrowright": KeyRight,
	"arrowup":    KeyUp,
	"arrowdown":  KeyDown,
	"left":       KeyLeft,
	"right":      KeyRight,
	"up":         KeyUp,
	"down":       KeyDown,
	"a":          KeyA,
	"y":          KeyY,
	"z":          KeyZ,
	"0":          Key0,
	"1":          Key1,
}

// ParseKey maps a DOM KeyboardEvent.key value to a Key.
func ParseKey(name string) Key {
	return keyNames[strings.ToLower(name)]
}

func (c *Canvas) event(v geom.Point, mods Modifiers) tool.Event {
	return tool.Event{Point: c.view.ViewToWorld(v), View: v, Shift: mods&ModShift != 0}
}

// MouseDown handles a button press at viewport point v. clicks is the
// click count reported by the platform; 2 on a graphic activates it.
func (c *Canvas) MouseDown(v geom.Point, b Button, mods Modifiers, clicks int) {
	e := c.event(v, mods)
	switch b {
	case ButtonMiddle:
		c.panner.OnMouseDown(c, e)
		return
	case ButtonRight:
		c.rightClick(e)
		return
	}
	if clicks == 2 && c.current.ID() == tool.Pointer && !c.current.Captured() {
		if g, _ := c.sc.HitTest(e.Point, c.UI()); g != nil {
			g.Activate(c)
			return
		}
	}
	c.current.OnMouseDown(c, e)
	c.update()
}

// rightClick ends any left-button gesture, switches to the pointer and
// selects only what is under the cursor.
func (c *Canvas) rightClick(e tool.Event) {
	if c.current.Captured() {
		c.current.OnMouseUp(c, e)
	}
	if c.current.ID() != tool.Pointer {
		c.current = c.tools[tool.Pointer]
		c.SetCursor(c.current.Cursor())
	}
	c.sc.UnselectAll()
	if g, _ := c.sc.HitTest(e.Point, c.UI()); g != nil {
		g.Attrs().Selected = true
		c.sc.Invalidate(g)
	}
	c.update()
}

// MouseMove handles pointer motion at viewport point v.
func (c *Canvas) MouseMove(v geom.Point, mods Modifiers) {
	e := c.event(v, mods)
	if c.panner.Captured() {
		c.panner.OnMouseMove(c, e)
		return
	}
	c.current.OnMouseMove(c, e)
	if c.current.Captured() {
		c.update()
	}
}

// MouseUp handles a button release at viewport point v.
func (c *Canvas) MouseUp(v geom.Point, b Button, mods Modifiers) {
	e := c.event(v, mods)
	switch b {
	case ButtonMiddle:
		c.panner.OnMouseUp(c, e)
		return
	case ButtonRight:
		return
	}
	c.current.OnMouseUp(c, e)
	c.update()
}

// MouseWheel zooms one stop per notch about viewport point v; positive
// deltas zoom in.
func (c *Canvas) MouseWheel(delta float64, v geom.Point) {
	if c.view.Wheel(delta, v) {
		c.zoomChanged()
	}
}

// LostMouseCapture ends the gesture when the platform takes the pointer away.
func (c *Canvas) LostMouseCapture() {
	c.CancelCurrentOperation()
}

// KeyDown runs the binding for key and reports whether there was one.
func (c *Canvas) KeyDown(key Key, mods Modifiers) bool {
	ctrl := mods&ModCtrl != 0
	step := 1.0
	if mods&ModShift != 0 {
		step = 10
	}
	switch {
	case key == KeyShift:
		c.resnap(true)
	case ctrl && key == KeyA:
		c.SelectAll()
	case key == KeyEscape:
		c.Escape()
	case key == KeyDelete:
		c.Delete()
	case ctrl && key == KeyHome:
		c.MoveForward()
	case ctrl && key == KeyEnd:
		c.MoveBackward()
	case key == KeyHome:
		c.MoveToFront()
	case key == KeyEnd:
		c.MoveToBack()
	case ctrl && key == KeyZ:
		c.logError("undo", c.Undo())
	case ctrl && key == KeyY:
		c.logError("redo", c.Redo())
	case ctrl && key == Key0:
		c.ZoomPanFit()
	case ctrl && key == Key1:
		c.ZoomPanActualSize()
	case key == KeyLeft:
		c.Nudge(-step, 0)
	case key == KeyRight:
		c.Nudge(step, 0)
	case key == KeyUp:
		c.Nudge(0, -step)
	case key == KeyDown:
		c.Nudge(0, step)
	default:
		return false
	}
	return true
}

// KeyUp re-snaps a captured drag when Shift is released.
func (c *Canvas) KeyUp(key Key, _ Modifiers) bool {
	if key != KeyShift {
		return false
	}
	c.resnap(false)
	return true
}

func (c *Canvas) resnap(shift bool) {
	if c.current.Captured() {
		c.current.Resnap(c, shift)
		c.update()
	}
}

// Escape cancels the gesture in progress, or clears the selection when
// there is none.
func (c *Canvas) Escape() {
	if c.current.Captured() || c.panner.Captured() {
		c.CancelCurrentOperation()
		return
	}
	c.UnselectAll()
}

// HitTest returns the id of the front-most graphic under viewport point v.
func (c *Canvas) HitTest(v geom.Point) (graphic.ID, bool) {
	g, _ := c.sc.HitTest(c.view.ViewToWorld(v), c.UI())
	if g == nil {
		return 0, false
	}
	return g.Attrs().ID, true
}
