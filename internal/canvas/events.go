package canvas

import (
	"slices"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
)

// EventKind names a canvas notification.
type EventKind string

const (
	StateChanged         EventKind = "state.changed"
	ContentBoundsChanged EventKind = "content.bounds.changed"
	ZoomChanged          EventKind = "zoom.changed"
	Invalidated          EventKind = "invalidated"
	CursorChanged        EventKind = "cursor.changed"
	TextEditRequested    EventKind = "text.edit"
)

// Event is one notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind   EventKind  `json:"kind"`
	State  *State     `json:"state,omitempty"`
	Bounds *geom.Rect `json:"bounds,omitempty"`
	Zoom   *ZoomInfo  `json:"zoom,omitempty"`
	Cursor string     `json:"cursor,omitempty"`
	Text   *TextEdit  `json:"text,omitempty"`
	Region *geom.Rect `json:"region,omitempty"`
}

// ZoomInfo is the view transform as reported to listeners.
type ZoomInfo struct {
	Scale   float64    `json:"scale"`
	Offset  geom.Point `json:"offset"`
	AutoFit bool       `json:"autoFit"`
}

// TextEdit asks the front-end to open an editor over a text graphic.
type TextEdit struct {
	ID    graphic.ID `json:"id"`
	Rect  geom.Rect  `json:"rect"` // viewport coordinates
	Angle float64    `json:"angle"`
	Body  string     `json:"body"`
	Font  draw.Font  `json:"font"`
	Color string     `json:"color"`
	Scale float64    `json:"scale"`
}

// State is what a toolbar needs to reflect the canvas.
type State struct {
	Tool      string         `json:"tool"`
	CanUndo   bool           `json:"canUndo"`
	CanRedo   bool           `json:"canRedo"`
	Count     int            `json:"count"`
	Selection []graphic.ID   `json:"selection"`
	Skills    graphic.Skills `json:"skills"`
	Color     string         `json:"color"`
	LineWidth float64        `json:"lineWidth"`
	Angle     float64        `json:"angle"`
	Font      draw.Font      `json:"font"`
}

func (s *State) equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Tool == o.Tool &&
		s.CanUndo == o.CanUndo &&
		s.CanRedo == o.CanRedo &&
		s.Count == o.Count &&
		slices.Equal(s.Selection, o.Selection) &&
		s.Skills == o.Skills &&
		s.Color == o.Color &&
		s.LineWidth == o.LineWidth &&
		s.Angle == o.Angle &&
		s.Font == o.Font
}

// Subscribe registers fn for every notification and returns a function
// that removes it.
func (c *Canvas) Subscribe(fn func(Event)) func() {
	id := c.nextListen
	c.nextListen++
	c.listeners[id] = fn
	return func() { delete(c.listeners, id) }
}

func (c *Canvas) emit(e Event) {
	for _, fn := range c.listeners {
		fn(e)
	}
}

// State reports the toolbar state. With exactly one graphic selected its
// properties are shown; otherwise the defaults for new graphics are.
func (c *Canvas) State() State {
	s := State{
		Tool:      c.current.ID().String(),
		CanUndo:   c.history.CanUndo(),
		CanRedo:   c.history.CanRedo(),
		Count:     c.sc.Len(),
		Selection: []graphic.ID{},
		Skills:    c.Skills(),
		Color:     draw.ColorString(c.defaults.Color),
		LineWidth: c.defaults.LineWidth,
		Font:      c.defaults.Font,
	}
	sel := c.sc.Selected()
	for _, g := range sel {
		s.Selection = append(s.Selection, g.Attrs().ID)
	}
	if len(sel) == 1 {
		g := sel[0]
		s.Color = draw.ColorString(g.Attrs().Color)
		s.LineWidth = g.Attrs().LineWidth
		if r, ok := g.(rotatable); ok {
			s.Angle = r.Rotation()
		}
		if t, ok := g.(*graphic.Text); ok {
			s.Font = t.Font
		}
	}
	return s
}

// Skills reports which properties the selection, or the current tool when
// nothing is selected, can take.
func (c *Canvas) Skills() graphic.Skills {
	sel := c.sc.Selected()
	if len(sel) == 0 {
		s := graphic.SkillCanvasBackground
		if k, ok := c.current.ID().Creates(); ok {
			s |= graphic.SkillsOf(k)
		}
		return s
	}
	var s graphic.Skills
	for _, g := range sel {
		s |= graphic.SkillsOf(g.Kind())
	}
	return s
}

// update notifies listeners after a mutation: state and content bounds
// when they changed, and the region to redraw when there is one.
func (c *Canvas) update() {
	s := c.State()
	if !s.equal(c.lastState) {
		c.lastState = &s
		c.emit(Event{Kind: StateChanged, State: &s})
	}
	if b := c.sc.ContentBounds(); b != c.lastBounds {
		c.lastBounds = b
		c.emit(Event{Kind: ContentBoundsChanged, Bounds: &b})
	}
	if region := c.sc.DirtyRegion(); !region.IsEmpty() {
		c.emit(Event{Kind: Invalidated, Region: &region})
	}
}

func (c *Canvas) zoomChanged() {
	c.emit(Event{Kind: ZoomChanged, Zoom: &ZoomInfo{
		Scale:   c.view.Scale(),
		Offset:  c.view.Offset(),
		AutoFit: c.view.AutoFit(),
	}})
	c.sc.InvalidateAll()
	c.invalidate()
}

// rotatable is implemented by every graphic built on a rotated rect.
type rotatable interface {
	Rotation() float64
	SetRotation(deg float64)
}
