package canvas

import (
	"fmt"
	"math"
	"slices"

	"github.com/inamate/annotate/internal/graphic"
	"github.com/inamate/annotate/internal/logging"
)

// Command describes one user command and whether it can run now.
type Command struct {
	Name       string `json:"name"`
	Gesture    string `json:"gesture,omitempty"`
	CanExecute bool   `json:"canExecute"`
}

type command struct {
	name    string
	gesture string
	can     func(c *Canvas) bool
	run     func(c *Canvas) error
}

func hasGraphics(c *Canvas) bool  { return c.sc.Len() > 0 }
func hasSelection(c *Canvas) bool { return c.sc.SelectionCount() > 0 }
func always(*Canvas) bool         { return true }

func hasRotated(c *Canvas) bool {
	for _, g := range c.sc.Selected() {
		if r, ok := g.(rotatable); ok && r.Rotation() != 0 {
			return true
		}
	}
	return false
}

func do(fn func(c *Canvas)) func(c *Canvas) error {
	return func(c *Canvas) error {
		fn(c)
		return nil
	}
}

var commands = []command{
	{"select-all", "Ctrl+A", hasGraphics, do((*Canvas).SelectAll)},
	{"unselect-all", "Esc", hasSelection, do((*Canvas).UnselectAll)},
	{"delete", "Del", hasSelection, do((*Canvas).Delete)},
	{"delete-all", "", hasGraphics, do((*Canvas).DeleteAll)},
	{"move-to-front", "Home", hasSelection, do((*Canvas).MoveToFront)},
	{"move-to-back", "End", hasSelection, do((*Canvas).MoveToBack)},
	{"move-forward", "Ctrl+Home", hasSelection, do((*Canvas).MoveForward)},
	{"move-backward", "Ctrl+End", hasSelection, do((*Canvas).MoveBackward)},
	{"reset-rotation", "", hasRotated, do((*Canvas).ResetRotation)},
	{"undo", "Ctrl+Z", (*Canvas).CanUndo, (*Canvas).Undo},
	{"redo", "Ctrl+Y", (*Canvas).CanRedo, (*Canvas).Redo},
	{"zoom-auto", "", hasGraphics, do((*Canvas).ZoomPanAuto)},
	{"zoom-fit", "Ctrl+0", always, do((*Canvas).ZoomPanFit)},
	{"zoom-actual-size", "Ctrl+1", hasGraphics, do((*Canvas).ZoomPanActualSize)},
	{"copy", "Ctrl+C", hasSelection, (*Canvas).Copy},
	{"paste", "Ctrl+V", always, func(c *Canvas) error {
		c.Paste(func(err error) { c.logError("paste", err) })
		return nil
	}},
	{"cancel", "Esc", always, do((*Canvas).CancelCurrentOperation)},
}

// Commands lists every command with its current availability.
func (c *Canvas) Commands() []Command {
	out := make([]Command, len(commands))
	for i, cmd := range commands {
		out[i] = Command{Name: cmd.name, Gesture: cmd.gesture, CanExecute: cmd.can(c)}
	}
	return out
}

// Execute runs the named command. A command that cannot run now does
// nothing.
func (c *Canvas) Execute(name string) error {
	i := slices.IndexFunc(commands, func(cmd command) bool { return cmd.name == name })
	if i < 0 {
		return fmt.Errorf("command %q: %w", name, ErrInvalidArgument)
	}
	if !commands[i].can(c) {
		return nil
	}
	return commands[i].run(c)
}

func (c *Canvas) logError(op string, err error) {
	if err != nil {
		logging.Logger().Warn("canvas command failed", "op", op, "error", err)
	}
}

// SelectAll selects every graphic.
func (c *Canvas) SelectAll() {
	c.sc.SelectAll()
	c.update()
}

// UnselectAll clears the selection.
func (c *Canvas) UnselectAll() {
	if c.sc.UnselectAll() {
		c.update()
	}
}

// Select replaces the selection with the graphics in ids.
func (c *Canvas) Select(ids ...graphic.ID) error {
	var gs []graphic.Graphic
	for _, id := range ids {
		g, err := c.sc.Find(id)
		if err != nil {
			return err
		}
		gs = append(gs, g)
	}
	c.sc.UnselectAll()
	for _, g := range gs {
		g.Attrs().Selected = true
		c.sc.Invalidate(g)
	}
	c.update()
	return nil
}

// Delete removes the selection.
func (c *Canvas) Delete() {
	if c.sc.RemoveSelected() {
		c.Commit()
	}
}

// DeleteAll removes every graphic.
func (c *Canvas) DeleteAll() {
	if c.sc.Len() == 0 {
		return
	}
	c.CancelCurrentOperation()
	c.sc.Clear()
	c.Commit()
}

// MoveToFront brings the selection to the top of the z-order.
func (c *Canvas) MoveToFront() { c.moveSelectionTo(math.MaxInt) }

// MoveToBack sends the selection to the bottom of the z-order.
func (c *Canvas) MoveToBack() { c.moveSelectionTo(0) }

// MoveForward raises the selection one step above the lowest selected graphic.
func (c *Canvas) MoveForward() {
	if i := c.firstSelected(); i >= 0 {
		c.moveSelectionTo(i + 1)
	}
}

// MoveBackward lowers the selection one step below the lowest selected graphic.
func (c *Canvas) MoveBackward() {
	if i := c.firstSelected(); i >= 0 {
		c.moveSelectionTo(max(0, i-1))
	}
}

func (c *Canvas) firstSelected() int {
	return slices.IndexFunc(c.sc.Items(), func(g graphic.Graphic) bool { return g.Attrs().Selected })
}

// moveSelectionTo lifts the selected graphics out of the z-order and puts
// them back, in their relative order, at index i of what remains.
func (c *Canvas) moveSelectionTo(i int) {
	sel := c.sc.Selected()
	if len(sel) == 0 {
		return
	}
	before := slices.Clone(c.sc.Items())
	for _, g := range sel {
		c.sc.Remove(g)
	}
	i = min(i, c.sc.Len())
	for k, g := range sel {
		c.sc.Insert(i+k, g)
	}
	if slices.Equal(before, c.sc.Items()) {
		return
	}
	c.Commit()
}

// ResetRotation straightens every selected rotated graphic.
func (c *Canvas) ResetRotation() {
	c.applyToSelection(graphic.SkillAngle, func(g graphic.Graphic) bool {
		r, ok := g.(rotatable)
		if !ok || r.Rotation() == 0 {
			return false
		}
		r.SetRotation(0)
		return true
	})
}

// Nudge moves the selection by (dx, dy) logical pixels. Consecutive nudges
// of the same selection share one history step.
func (c *Canvas) Nudge(dx, dy float64) {
	sel := c.sc.Selected()
	if len(sel) == 0 {
		return
	}
	nudged := make([]graphic.ID, 0, len(sel))
	for _, g := range sel {
		g.Move(dx, dy)
		c.sc.Invalidate(g)
		nudged = append(nudged, g.Attrs().ID)
	}
	if !slices.Equal(nudged, c.nudged) {
		c.history.EndNudge()
		c.nudged = nudged
	}
	c.history.AddCommandStepNudge(c.snapshot())
	c.update()
}
