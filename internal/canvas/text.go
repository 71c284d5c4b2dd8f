package canvas

import (
	"fmt"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
)

// EditText asks the front-end to open an in-place editor over t. The edit
// is finished with EndTextEdit.
func (c *Canvas) EditText(t *graphic.Text) {
	c.editing = t.ID
	n := t.Rect.Normalize()
	c.emit(Event{Kind: TextEditRequested, Text: &TextEdit{
		ID:    t.ID,
		Rect:  geom.RectFromPoints(c.view.WorldToView(n.TopLeft()), c.view.WorldToView(n.BottomRight())),
		Angle: t.Angle,
		Body:  t.Body,
		Font:  t.Font,
		Color: draw.ColorString(t.Color),
		Scale: c.view.Scale() / c.view.DPI(),
	}})
}

// Editing returns the id of the text graphic being edited, or 0.
func (c *Canvas) Editing() graphic.ID { return c.editing }

// EndTextEdit closes the editor for id. When ok the body is replaced with
// text; a text graphic left empty is removed. Anything that changed the
// drawing is committed.
func (c *Canvas) EndTextEdit(id graphic.ID, text string, ok bool) error {
	if c.editing == id {
		c.editing = 0
	}
	g, err := c.sc.Find(id)
	if err != nil {
		return err
	}
	t, isText := g.(*graphic.Text)
	if !isText {
		return fmt.Errorf("graphic %d is a %s: %w", id, g.Kind(), ErrInvalidArgument)
	}
	if ok {
		c.sc.Invalidate(t)
		t.SetBody(text)
	}
	if t.Body == "" {
		c.sc.Remove(t)
	}
	c.Commit()
	return nil
}
