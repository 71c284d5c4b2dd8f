// Package canvas is the drawing canvas: it owns the graphic collection, the
// current tool, the view transform and the undo history, and turns input
// events into edits.
//
// A Canvas is not safe for concurrent use. Every call, including the
// continuations of asynchronous operations, must happen on the goroutine
// that owns it; Options.Post delivers continuations there.
package canvas

import (
	"fmt"
	"image/color"
	"os"

	"github.com/inamate/annotate/internal/clipboard"
	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
	"github.com/inamate/annotate/internal/imageio"
	"github.com/inamate/annotate/internal/scene"
	"github.com/inamate/annotate/internal/tool"
	"github.com/inamate/annotate/internal/undo"
	"github.com/inamate/annotate/internal/view"
)

// ErrInvalidArgument is returned for nil drawing contexts and unknown ids.
var ErrInvalidArgument = graphic.ErrInvalidArgument

// Settings are the user preferences a canvas starts from.
type Settings struct {
	Defaults     tool.Defaults
	HandleColor  color.NRGBA
	Background   scene.Background
	MaxZoom      float64
	HistoryLimit int
	DPI          float64
}

// DefaultSettings mirrors the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Defaults: tool.Defaults{
			Color:     color.NRGBA{R: 0xFF, A: 0xFF},
			LineWidth: 2,
			Font: draw.Font{
				Family:  "Go",
				Size:    12,
				Weight:  draw.WeightNormal,
				Stretch: draw.StretchNormal,
			},
			PixelateBlock: graphic.DefaultBlockSize,
		},
		HandleColor: color.NRGBA{R: 0x1E, G: 0x90, B: 0xFF, A: 0xFF},
		Background:  scene.Background{Checkered: true},
		MaxZoom:     view.DefaultMaxZoom,
		DPI:         1,
	}
}

// FileSystem is the file capability used by Save, Load and Paste.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSFiles reads and writes the local file system.
type OSFiles struct{}

func (OSFiles) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFiles) WriteFile(path string, data []byte) error { return os.WriteFile(path, data, 0o644) }

// Options configure New.
type Options struct {
	Settings

	// Width and Height are the viewport size in screen units.
	Width, Height float64

	Clipboard clipboard.Clipboard
	Files     FileSystem
	// Post runs a function on the canvas goroutine. When nil, I/O and
	// image decoding happen synchronously.
	Post imageio.Poster
	// TempDir receives pasted bitmaps; empty means os.TempDir.
	TempDir string
}

// Canvas is one drawing surface.
type Canvas struct {
	sc      *scene.Collection
	view    *view.Transform
	history *undo.Manager

	tools   map[tool.ID]tool.Tool
	current tool.Tool
	panner  *tool.Pan

	defaults    tool.Defaults
	handleColor color.NRGBA
	background  scene.Background

	cursor    graphic.Cursor
	captured  bool
	countHigh int
	editing   graphic.ID
	nudged    []graphic.ID

	clipboard clipboard.Clipboard
	files     FileSystem
	post      imageio.Poster
	loader    *imageio.Loader
	tempDir   string

	listeners  map[int]func(Event)
	nextListen int
	lastState  *State
	lastBounds geom.Rect
}

// New creates an empty canvas with the pointer tool selected.
func New(opts Options) *Canvas {
	if opts.DPI <= 0 {
		opts.DPI = 1
	}
	c := &Canvas{
		sc:          scene.New(),
		view:        view.New(opts.Width, opts.Height, opts.DPI),
		history:     undo.New(opts.HistoryLimit),
		tools:       make(map[tool.ID]tool.Tool),
		panner:      &tool.Pan{},
		defaults:    opts.Defaults,
		handleColor: opts.HandleColor,
		background:  opts.Background,
		clipboard:   opts.Clipboard,
		files:       opts.Files,
		post:        opts.Post,
		tempDir:     opts.TempDir,
		listeners:   make(map[int]func(Event)),
	}
	if opts.MaxZoom > 0 {
		c.view.SetMaxZoom(opts.MaxZoom)
	}
	if c.clipboard == nil {
		c.clipboard = &clipboard.Memory{}
	}
	if c.files == nil {
		c.files = OSFiles{}
	}
	if c.post != nil {
		c.loader = imageio.NewLoader(c.post)
	}
	for id := tool.None; id <= tool.Pixelate; id++ {
		c.tools[id] = tool.New(id)
	}
	c.current = c.tools[tool.Pointer]
	c.cursor = c.current.Cursor()
	c.history.SetFirstStep(c.snapshot())
	return c
}

// --- Settings ---

// ApplySettings replaces the defaults for new graphics and the canvas
// appearance. Existing graphics are left alone.
func (c *Canvas) ApplySettings(s Settings) {
	c.defaults = s.Defaults
	c.handleColor = s.HandleColor
	c.background = s.Background
	if s.MaxZoom > 0 {
		c.view.SetMaxZoom(s.MaxZoom)
	}
	c.history.SetLimit(s.HistoryLimit)
	if s.DPI > 0 && s.DPI != c.view.DPI() {
		c.SetDPI(s.DPI)
	}
	c.sc.InvalidateAll()
	c.update()
}

// --- tool.Host ---

// Scene returns the live collection. It is replaced by Undo, Redo and Load.
func (c *Canvas) Scene() *scene.Collection { return c.sc }

// UI returns the render parameters graphics need.
func (c *Canvas) UI() graphic.UI {
	return graphic.UI{
		Scale:       c.view.HandleScale(),
		HandleColor: c.handleColor,
		Loader:      c.loader,
		Invalidate:  c.invalidate,
	}
}

// Defaults returns the attributes given to new graphics.
func (c *Canvas) Defaults() tool.Defaults { return c.defaults }

func (c *Canvas) CaptureMouse()        { c.captured = true }
func (c *Canvas) ReleaseMouseCapture() { c.captured = false }

// IsMouseCaptured reports whether a gesture owns the pointer.
func (c *Canvas) IsMouseCaptured() bool { return c.captured }

// SetCursor changes the pointer shape and notifies listeners.
func (c *Canvas) SetCursor(cur graphic.Cursor) {
	if cur == c.cursor {
		return
	}
	c.cursor = cur
	c.emit(Event{Kind: CursorChanged, Cursor: cur.CSS()})
}

// Cursor returns the current pointer shape.
func (c *Canvas) Cursor() graphic.Cursor { return c.cursor }

// Commit records the collection as a history step.
func (c *Canvas) Commit() {
	c.history.AddCommandStep(c.snapshot())
	c.update()
}

// NextOrdinal allocates the next count marker number. Numbers are never
// reused, even after the marker carrying the highest one is deleted.
func (c *Canvas) NextOrdinal() int {
	n := c.countHigh
	for _, g := range c.sc.Items() {
		if m, ok := g.(*graphic.CountMarker); ok {
			n = max(n, m.Ordinal)
		}
	}
	c.countHigh = n + 1
	return c.countHigh
}

// PanBy scrolls the view by a viewport delta.
func (c *Canvas) PanBy(dx, dy float64) {
	c.view.Pan(dx, dy)
	c.zoomChanged()
}

// --- history ---

func (c *Canvas) snapshot() []byte {
	return c.sc.Serialize(scene.SerializeOptions{})
}

// restore replaces the collection with a snapshot, keeping ids.
func (c *Canvas) restore(data []byte) error {
	sc, err := scene.FromBytes(data)
	if err != nil {
		return err
	}
	c.sc = sc
	c.sc.InvalidateAll()
	return nil
}

// CanUndo reports whether Undo would do anything.
func (c *Canvas) CanUndo() bool { return c.history.CanUndo() }

// CanRedo reports whether Redo would do anything.
func (c *Canvas) CanRedo() bool { return c.history.CanRedo() }

// Undo restores the previous history step.
func (c *Canvas) Undo() error {
	c.CancelCurrentOperation()
	data, ok := c.history.Undo()
	if !ok {
		return nil
	}
	err := c.restore(data)
	c.update()
	return err
}

// Redo reapplies the next history step.
func (c *Canvas) Redo() error {
	c.CancelCurrentOperation()
	data, ok := c.history.Redo()
	if !ok {
		return nil
	}
	err := c.restore(data)
	c.update()
	return err
}

// --- tools ---

// Tool returns the current tool id.
func (c *Canvas) Tool() tool.ID { return c.current.ID() }

// SetTool switches tools, cancelling any gesture and clearing the selection.
func (c *Canvas) SetTool(id tool.ID) error {
	t, ok := c.tools[id]
	if !ok {
		return ErrInvalidArgument
	}
	c.CancelCurrentOperation()
	c.current = t
	c.SetCursor(t.Cursor())
	c.sc.UnselectAll()
	c.update()
	return nil
}

// CancelCurrentOperation aborts the gesture in progress. The pointer tool
// drops its rubber band or keeps a move already made; creation tools
// discard the graphic being drawn.
func (c *Canvas) CancelCurrentOperation() {
	if c.panner.Captured() {
		c.panner.AbortOperation(c)
	}
	if c.current.Captured() {
		c.current.AbortOperation(c)
		c.update()
	}
}

// --- notifications ---

func (c *Canvas) invalidate() {
	c.emit(Event{Kind: Invalidated})
}

// --- view ---

// SetDPI changes the device pixel ratio, keeping the zoom.
func (c *Canvas) SetDPI(dpi float64) {
	c.view.SetDPI(dpi)
	if c.view.AutoFit() {
		c.view.ZoomPanAuto(c.sc.ContentBounds())
	}
	c.zoomChanged()
}

// Resize changes the viewport size in screen units.
func (c *Canvas) Resize(w, h float64) {
	c.view.Resize(w, h, c.sc.ContentBounds())
	c.zoomChanged()
}

// View returns the view transform. Callers must not mutate it.
func (c *Canvas) View() *view.Transform { return c.view }

// ZoomPanAuto shows the content at actual size when it fits, fitted
// otherwise, and keeps doing so across resizes.
func (c *Canvas) ZoomPanAuto() {
	c.view.ZoomPanAuto(c.sc.ContentBounds())
	c.zoomChanged()
}

// ZoomPanFit fits the content to the viewport.
func (c *Canvas) ZoomPanFit() {
	c.view.ZoomPanFit(c.sc.ContentBounds())
	c.zoomChanged()
}

// ZoomPanActualSize shows the content at 100%, centred.
func (c *Canvas) ZoomPanActualSize() {
	c.view.ZoomPanActualSize(c.sc.ContentBounds(), 1)
	c.zoomChanged()
}

// SetZoom sets the zoom factor, keeping the viewport centre fixed.
func (c *Canvas) SetZoom(z float64) error {
	if !(z > 0) || z > c.view.MaxZoom() {
		return fmt.Errorf("zoom %g: %w", z, ErrInvalidArgument)
	}
	w, h := c.view.Size()
	c.view.ZoomTo(z, geom.Pt(w/2, h/2))
	c.zoomChanged()
	return nil
}
