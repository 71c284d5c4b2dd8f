package canvas

import (
	"fmt"
	"image/color"
	"math"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/graphic"
	"github.com/inamate/annotate/internal/scene"
)

// applyToSelection calls set on every selected graphic that has skill and
// commits when any call reports a change.
func (c *Canvas) applyToSelection(skill graphic.Skills, set func(g graphic.Graphic) bool) bool {
	changed := false
	for _, g := range c.sc.Selected() {
		if !graphic.SkillsOf(g.Kind()).Has(skill) {
			continue
		}
		if set(g) {
			c.sc.Invalidate(g)
			changed = true
		}
	}
	if changed {
		c.Commit()
	}
	return changed
}

// SetObjectColor recolours the selection, or sets the colour for new
// graphics when nothing is selected.
func (c *Canvas) SetObjectColor(col color.NRGBA) {
	if c.sc.SelectionCount() == 0 {
		c.defaults.Color = col
		c.update()
		return
	}
	c.applyToSelection(graphic.SkillColor, func(g graphic.Graphic) bool {
		if g.Attrs().Color == col {
			return false
		}
		g.Attrs().Color = col
		return true
	})
}

// SetLineWidth sets the stroke width of the selection, or of new graphics
// when nothing is selected.
func (c *Canvas) SetLineWidth(w float64) error {
	if !(w > 0) || math.IsInf(w, 0) {
		return fmt.Errorf("line width %g: %w", w, ErrInvalidArgument)
	}
	if c.sc.SelectionCount() == 0 {
		c.defaults.LineWidth = w
		c.update()
		return nil
	}
	c.applyToSelection(graphic.SkillLineWidth, func(g graphic.Graphic) bool {
		if g.Attrs().LineWidth == w {
			return false
		}
		g.Attrs().LineWidth = w
		return true
	})
	return nil
}

// SetAngle rotates every selected rotatable graphic to deg degrees.
func (c *Canvas) SetAngle(deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return fmt.Errorf("angle %g: %w", deg, ErrInvalidArgument)
	}
	c.applyToSelection(graphic.SkillAngle, func(g graphic.Graphic) bool {
		r, ok := g.(rotatable)
		if !ok {
			return false
		}
		old := r.Rotation()
		r.SetRotation(deg)
		return r.Rotation() != old
	})
	return nil
}

// modifyFont applies edit to the font of every selected text graphic, or
// to the default font when nothing is selected.
func (c *Canvas) modifyFont(edit func(f *draw.Font)) {
	if c.sc.SelectionCount() == 0 {
		edit(&c.defaults.Font)
		c.update()
		return
	}
	c.applyToSelection(graphic.SkillFont, func(g graphic.Graphic) bool {
		t, ok := g.(*graphic.Text)
		if !ok {
			return false
		}
		f := t.Font
		edit(&f)
		if f == t.Font {
			return false
		}
		t.SetFont(f)
		return true
	})
}

// SetFont replaces the whole font.
func (c *Canvas) SetFont(f draw.Font) error {
	if f.Family == "" || !(f.Size > 0) {
		return fmt.Errorf("font %q %g: %w", f.Family, f.Size, ErrInvalidArgument)
	}
	c.modifyFont(func(dst *draw.Font) { *dst = f })
	return nil
}

// SetFontFamily changes the typeface.
func (c *Canvas) SetFontFamily(family string) error {
	if family == "" {
		return fmt.Errorf("empty font family: %w", ErrInvalidArgument)
	}
	c.modifyFont(func(f *draw.Font) { f.Family = family })
	return nil
}

// SetFontSize changes the size in logical pixels.
func (c *Canvas) SetFontSize(size float64) error {
	if !(size > 0) || math.IsInf(size, 0) {
		return fmt.Errorf("font size %g: %w", size, ErrInvalidArgument)
	}
	c.modifyFont(func(f *draw.Font) { f.Size = size })
	return nil
}

// SetFontStyle changes the slant.
func (c *Canvas) SetFontStyle(s draw.FontStyle) {
	c.modifyFont(func(f *draw.Font) { f.Style = s })
}

// SetFontWeight changes the weight (100 to 900).
func (c *Canvas) SetFontWeight(w int) error {
	if w < 100 || w > 900 {
		return fmt.Errorf("font weight %d: %w", w, ErrInvalidArgument)
	}
	c.modifyFont(func(f *draw.Font) { f.Weight = w })
	return nil
}

// SetFontStretch changes the stretch (1 to 9).
func (c *Canvas) SetFontStretch(s int) error {
	if s < 1 || s > 9 {
		return fmt.Errorf("font stretch %d: %w", s, ErrInvalidArgument)
	}
	c.modifyFont(func(f *draw.Font) { f.Stretch = s })
	return nil
}

// SetBackground changes the canvas background.
func (c *Canvas) SetBackground(bg scene.Background) {
	c.background = bg
	c.sc.InvalidateAll()
	c.invalidate()
}

// Background returns the canvas background.
func (c *Canvas) Background() scene.Background { return c.background }

// SetHandleColor changes the colour of selection trackers.
func (c *Canvas) SetHandleColor(col color.NRGBA) {
	c.handleColor = col
	c.sc.InvalidateAll()
	c.invalidate()
}
