package tool

import (
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
)

// polyLineMinDistance is the screen distance a freehand vertex must travel
// before the next one starts.
const polyLineMinDistance = 3.0

// live tracks the graphic a creation tool is building.
type live struct {
	g graphic.Graphic
}

func (l *live) add(h Host, g graphic.Graphic) {
	g.Attrs().Selected = true
	h.Scene().Add(g)
	l.g = g
}

func (l *live) commit(h Host) {
	if l.g == nil {
		return
	}
	l.g.Normalize()
	l.g = nil
	h.Commit()
}

func (l *live) abort(h Host) {
	if l.g == nil {
		return
	}
	h.Scene().Remove(l.g)
	l.g = nil
}

// boxCreator draws rectangles, ellipses and pixelate regions by dragging
// their bottom-right corner.
type boxCreator struct {
	live
	id ID
}

func (c *boxCreator) begin(h Host, p geom.Point) {
	d := h.Defaults()
	r := geom.R(p.X, p.Y, p.X+1, p.Y+1)
	var g graphic.Graphic
	switch c.id {
	case Rectangle:
		g = graphic.NewRectangle(r, d.Color, d.LineWidth)
	case FilledRectangle:
		g = graphic.NewFilledRectangle(r, d.Color, d.LineWidth)
	case Ellipse:
		g = graphic.NewEllipse(r, d.Color, d.LineWidth)
	case Pixelate:
		g = graphic.NewPixelate(r, d.PixelateBlock)
	}
	c.add(h, g)
}

func (c *boxCreator) update(_ Host, p geom.Point) {
	if c.g != nil {
		c.g.MoveHandleTo(p, graphic.HandleBottomRight)
	}
}

func (c *boxCreator) finish(h Host) { c.commit(h) }

// lineCreator drags the second endpoint of a line or arrow.
type lineCreator struct {
	live
	arrow bool
}

func (c *lineCreator) begin(h Host, p geom.Point) {
	d := h.Defaults()
	if c.arrow {
		c.add(h, graphic.NewArrow(p, p, d.Color, d.LineWidth))
		return
	}
	c.add(h, graphic.NewLine(p, p, d.Color, d.LineWidth))
}

func (c *lineCreator) update(_ Host, p geom.Point) {
	if c.g != nil {
		c.g.MoveHandleTo(p, 2)
	}
}

func (c *lineCreator) finish(h Host) { c.commit(h) }

// polyLineCreator records a freehand stroke.
type polyLineCreator struct {
	live
}

func (c *polyLineCreator) begin(h Host, p geom.Point) {
	d := h.Defaults()
	g, err := graphic.NewPolyLine([]geom.Point{p, p}, d.Color, d.LineWidth)
	if err != nil {
		return
	}
	c.add(h, g)
}

func (c *polyLineCreator) update(h Host, p geom.Point) {
	if g, ok := c.g.(*graphic.PolyLine); ok {
		g.AddPoint(p, polyLineMinDistance*h.UI().Scale)
	}
}

func (c *polyLineCreator) finish(h Host) {
	if g, ok := c.g.(*graphic.PolyLine); ok && g.IsDegenerate() {
		c.abort(h)
		return
	}
	c.commit(h)
}

// textCreator places a text box and hands it to the editor. The canvas
// commits once editing ends.
type textCreator struct {
	live
}

func (c *textCreator) begin(h Host, p geom.Point) {
	d := h.Defaults()
	c.add(h, graphic.NewText(p, "", d.Font, d.Color))
}

func (c *textCreator) update(_ Host, p geom.Point) {
	if c.g != nil {
		c.g.MoveHandleTo(p, 3)
	}
}

func (c *textCreator) finish(h Host) {
	t, ok := c.g.(*graphic.Text)
	if !ok {
		return
	}
	t.Normalize()
	c.g = nil
	h.EditText(t)
}

// countCreator drops a numbered marker on click.
type countCreator struct {
	live
}

func (c *countCreator) begin(h Host, p geom.Point) {
	d := h.Defaults()
	c.add(h, graphic.NewCountMarker(p, h.NextOrdinal(), d.Color, d.LineWidth))
}

func (c *countCreator) update(Host, geom.Point) {}

func (c *countCreator) finish(h Host) { c.commit(h) }
