// Package scene holds the ordered graphic collection of a canvas together
// with its retained render nodes, rendering and binary format.
package scene

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
)

var (
	// ErrInvalidArgument is returned for nil surfaces and ids not in the collection.
	ErrInvalidArgument = graphic.ErrInvalidArgument
	// ErrFormat is returned when a scene payload cannot be parsed.
	ErrFormat = graphic.ErrFormat
)

// renderNode is the retained per-graphic render state. Nodes are kept in
// the same order as the graphics they shadow.
type renderNode struct {
	id     graphic.ID
	bounds geom.Rect // as of the last render
	dirty  bool
}

// Background is what a canvas paints beneath its graphics.
type Background struct {
	Color     color.NRGBA
	Checkered bool
}

// Checker cell colours for transparent backgrounds.
var (
	CheckerLight = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	CheckerDark  = color.NRGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
)

// CheckerCell is the checkerboard cell size in logical pixels.
const CheckerCell = 8.0

// Collection is an ordered list of graphics, back to front.
type Collection struct {
	items []graphic.Graphic
	nodes []*renderNode

	// removed accumulates the last rendered bounds of deleted graphics.
	removed geom.Rect
}

// New creates an empty collection.
func New() *Collection {
	return &Collection{}
}

// Len returns the number of graphics.
func (c *Collection) Len() int { return len(c.items) }

// At returns the graphic at z-index i.
func (c *Collection) At(i int) graphic.Graphic { return c.items[i] }

// Items returns the graphics back to front. The slice must not be modified.
func (c *Collection) Items() []graphic.Graphic { return c.items }

// IndexOf returns the z-index of g or -1.
func (c *Collection) IndexOf(g graphic.Graphic) int {
	return slices.Index(c.items, g)
}

// Find looks a graphic up by id.
func (c *Collection) Find(id graphic.ID) (graphic.Graphic, error) {
	for _, g := range c.items {
		if g.Attrs().ID == id {
			return g, nil
		}
	}
	return nil, fmt.Errorf("graphic %d: %w", id, ErrInvalidArgument)
}

// Add appends g at the front.
func (c *Collection) Add(g graphic.Graphic) {
	c.Insert(len(c.items), g)
}

// Insert places g at z-index i; i beyond the end appends.
func (c *Collection) Insert(i int, g graphic.Graphic) {
	i = max(0, min(i, len(c.items)))
	c.items = slices.Insert(c.items, i, g)
	c.nodes = slices.Insert(c.nodes, i, &renderNode{id: g.Attrs().ID, dirty: true})
}

// RemoveAt deletes the graphic at z-index i.
func (c *Collection) RemoveAt(i int) graphic.Graphic {
	g := c.items[i]
	c.removed = c.removed.Union(c.nodes[i].bounds)
	c.items = slices.Delete(c.items, i, i+1)
	c.nodes = slices.Delete(c.nodes, i, i+1)
	return g
}

// Remove deletes g and reports whether it was present.
func (c *Collection) Remove(g graphic.Graphic) bool {
	i := c.IndexOf(g)
	if i < 0 {
		return false
	}
	c.RemoveAt(i)
	return true
}

// Clear removes everything.
func (c *Collection) Clear() {
	for i := len(c.items) - 1; i >= 0; i-- {
		c.RemoveAt(i)
	}
}

// Selected returns the selected graphics back to front.
func (c *Collection) Selected() []graphic.Graphic {
	var out []graphic.Graphic
	for _, g := range c.items {
		if g.Attrs().Selected {
			out = append(out, g)
		}
	}
	return out
}

// SelectionCount returns how many graphics are selected.
func (c *Collection) SelectionCount() int {
	n := 0
	for _, g := range c.items {
		if g.Attrs().Selected {
			n++
		}
	}
	return n
}

// SelectAll selects every graphic.
func (c *Collection) SelectAll() {
	for i, g := range c.items {
		if !g.Attrs().Selected {
			g.Attrs().Selected = true
			c.nodes[i].dirty = true
		}
	}
}

// UnselectAll clears the selection and reports whether anything changed.
func (c *Collection) UnselectAll() bool {
	changed := false
	for i, g := range c.items {
		if g.Attrs().Selected {
			g.Attrs().Selected = false
			c.nodes[i].dirty = true
			changed = true
		}
	}
	return changed
}

// RemoveSelected deletes the selection and reports whether anything changed.
func (c *Collection) RemoveSelected() bool {
	changed := false
	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i].Attrs().Selected {
			c.RemoveAt(i)
			changed = true
		}
	}
	return changed
}

// HitTest walks front to back and returns the first graphic under p with
// the handle index from graphic.HitTest, or nil and -1.
func (c *Collection) HitTest(p geom.Point, ui graphic.UI) (graphic.Graphic, int) {
	for i := len(c.items) - 1; i >= 0; i-- {
		g := c.items[i]
		if g.Kind() == graphic.KindSelection {
			continue
		}
		if h := graphic.HitTest(g, p, ui); h >= 0 {
			return g, h
		}
	}
	return nil, -1
}

// ContentBounds is the union of all graphic bounds; empty when there are none.
func (c *Collection) ContentBounds() geom.Rect {
	var r geom.Rect
	for _, g := range c.items {
		if g.Kind() == graphic.KindSelection {
			continue
		}
		r = r.Union(g.Bounds())
	}
	return r
}

// Invalidate marks g as needing a redraw.
func (c *Collection) Invalidate(g graphic.Graphic) {
	if i := c.IndexOf(g); i >= 0 {
		c.nodes[i].dirty = true
	}
}

// InvalidateAll marks every graphic as needing a redraw.
func (c *Collection) InvalidateAll() {
	for _, n := range c.nodes {
		n.dirty = true
	}
}

// DirtyRegion returns the area that changed since the last render: the old
// and new bounds of every dirty graphic plus the bounds of removed ones.
func (c *Collection) DirtyRegion() geom.Rect {
	c.checkNodes()
	r := c.removed
	for i, n := range c.nodes {
		if n.dirty {
			r = r.Union(n.bounds).Union(c.items[i].Bounds())
		}
	}
	return r
}

// checkNodes panics when the render nodes no longer shadow the graphics.
func (c *Collection) checkNodes() {
	if len(c.nodes) != len(c.items) {
		panic(fmt.Sprintf("scene: %d render nodes for %d graphics", len(c.nodes), len(c.items)))
	}
	for i, n := range c.nodes {
		if id := c.items[i].Attrs().ID; n.id != id {
			panic(fmt.Sprintf("scene: render node %d is graphic %d, want %d", i, n.id, id))
		}
	}
}

// DrawBackground paints bg over r.
func DrawBackground(dc draw.Context, bg Background, r geom.Rect) {
	if r.IsEmpty() {
		return
	}
	switch {
	case bg.Checkered:
		dc.DrawChecker(r, CheckerCell, CheckerLight, CheckerDark)
	case bg.Color.A > 0:
		dc.DrawRectangle(r, bg.Color, nil)
	}
}

// Render draws every graphic back to front, with selection trackers, and
// clears the dirty state.
func (c *Collection) Render(dc draw.Context, ui graphic.UI) error {
	if dc == nil {
		return fmt.Errorf("render: nil drawing context: %w", ErrInvalidArgument)
	}
	c.checkNodes()
	for i, g := range c.items {
		graphic.DrawSelection(g, dc, ui)
		c.nodes[i].bounds = g.Bounds()
		c.nodes[i].dirty = false
	}
	c.removed = geom.Rect{}
	return nil
}
