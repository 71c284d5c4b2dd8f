package canvas

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/inamate/annotate/internal/clipboard"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
	"github.com/inamate/annotate/internal/imageio"
	"github.com/inamate/annotate/internal/scene"
)

// yield runs work away from the canvas goroutine when a poster is set and
// hands the result to then back on it. Without a poster both run inline.
func yield[T any](c *Canvas, work func() (T, error), then func(T, error)) {
	if c.post == nil {
		then(work())
		return
	}
	go func() {
		v, err := work()
		c.post(func() { then(v, err) })
	}()
}

func report(done func(error), err error) {
	if done != nil {
		done(err)
	}
}

// AddGraphic centres g in the viewport, makes it the only selection and
// commits.
func (c *Canvas) AddGraphic(g graphic.Graphic) error {
	if g == nil {
		return fmt.Errorf("add nil graphic: %w", ErrInvalidArgument)
	}
	c.CancelCurrentOperation()
	at := c.view.VisibleWorld().Center()
	mid := g.Bounds().Center()
	g.Move(at.X-mid.X, at.Y-mid.Y)
	g.Normalize()
	c.sc.UnselectAll()
	g.Attrs().Selected = true
	c.sc.Add(g)
	c.Commit()
	return nil
}

// imageRect is the logical rect of a bitmap shown at actual size.
func (c *Canvas) imageRect(img image.Image) geom.Rect {
	b := img.Bounds()
	dpi := c.view.DPI()
	return geom.R(0, 0, float64(b.Dx())/dpi, float64(b.Dy())/dpi)
}

// AddImage places the raster file at path in the middle of the viewport
// at its actual size.
func (c *Canvas) AddImage(path string) error {
	img, err := imageio.Load(path)
	if err != nil {
		return err
	}
	return c.addBitmap(path, img)
}

func (c *Canvas) addBitmap(path string, img image.Image) error {
	g, err := graphic.NewImage(path, c.imageRect(img))
	if err != nil {
		return err
	}
	g.SetBitmap(img)
	return c.AddGraphic(g)
}

// Copy puts the selection on the clipboard as a drawing and as a PNG.
func (c *Canvas) Copy() error {
	sel := c.sc.Selected()
	if len(sel) == 0 {
		return nil
	}
	data := c.sc.Serialize(scene.SerializeOptions{SelectedOnly: true})
	img := scene.RenderImage(sel, scene.Background{}, c.view.DPI(), graphic.UI{Scale: 1})
	png, err := imageio.PNGBytes(img)
	if err != nil {
		return fmt.Errorf("copy: encode png: %w", err)
	}
	return c.clipboard.Write(
		clipboard.Item{Format: clipboard.FormatDrawing, Data: data},
		clipboard.Item{Format: clipboard.FormatPNG, Data: png},
	)
}

type clip struct {
	drawing []byte
	path    string
	img     image.Image
}

// readClip fetches the clipboard, preferring a drawing. A bitmap is saved
// to a temporary PNG so an image graphic can refer to it.
func (c *Canvas) readClip() (clip, error) {
	data, err := c.clipboard.Read(clipboard.FormatDrawing)
	if err == nil {
		return clip{drawing: data}, nil
	}
	if !errors.Is(err, clipboard.ErrUnavailable) {
		return clip{}, err
	}
	data, err = c.clipboard.Read(clipboard.FormatPNG)
	if err != nil {
		return clip{}, err
	}
	img, err := imageio.Decode(data)
	if err != nil {
		return clip{}, fmt.Errorf("paste: %w", err)
	}
	f, err := os.CreateTemp(c.tempDir, "paste-*.png")
	if err != nil {
		return clip{}, fmt.Errorf("paste: %w", err)
	}
	defer f.Close()
	if err := imageio.EncodePNG(f, img); err != nil {
		return clip{}, fmt.Errorf("paste: write %s: %w", f.Name(), err)
	}
	return clip{path: f.Name(), img: img}, nil
}

// Paste inserts the clipboard contents. A drawing keeps its ids when the
// canvas is empty and gets fresh ones otherwise; the pasted graphics become
// the selection. done, when set, receives the outcome.
func (c *Canvas) Paste(done func(error)) {
	yield(c, c.readClip, func(cl clip, err error) {
		if err != nil {
			report(done, err)
			return
		}
		if cl.drawing == nil {
			report(done, c.addBitmap(cl.path, cl.img))
			return
		}
		report(done, c.pasteDrawing(cl.drawing))
	})
}

func (c *Canvas) pasteDrawing(data []byte) error {
	c.CancelCurrentOperation()
	gs, err := c.sc.Deserialize(data)
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	c.sc.UnselectAll()
	for _, g := range gs {
		g.Attrs().Selected = true
	}
	c.Commit()
	return nil
}

// Bytes serializes the drawing without selection state.
func (c *Canvas) Bytes() []byte {
	return c.sc.Serialize(scene.SerializeOptions{OmitSelection: true})
}

// LoadBytes replaces the drawing with a serialized one, keeping its ids,
// and starts a new history.
func (c *Canvas) LoadBytes(data []byte) error {
	sc, err := scene.FromBytes(data)
	if err != nil {
		return err
	}
	c.CancelCurrentOperation()
	c.sc = sc
	c.sc.InvalidateAll()
	c.editing = 0
	c.countHigh = 0
	c.history.Clear()
	c.history.SetFirstStep(c.snapshot())
	c.update()
	c.ZoomPanAuto()
	return nil
}

// Save writes the drawing to path through the file capability.
func (c *Canvas) Save(path string, done func(error)) {
	data := c.Bytes()
	yield(c, func() (struct{}, error) {
		return struct{}{}, c.files.WriteFile(path, data)
	}, func(_ struct{}, err error) {
		if err != nil {
			err = fmt.Errorf("save %s: %w", path, err)
		}
		report(done, err)
	})
}

// Load reads the drawing at path and replaces the current one.
func (c *Canvas) Load(path string, done func(error)) {
	yield(c, func() ([]byte, error) {
		return c.files.ReadFile(path)
	}, func(data []byte, err error) {
		if err != nil {
			report(done, fmt.Errorf("load %s: %w", path, err))
			return
		}
		report(done, c.LoadBytes(data))
	})
}

// ExportPNG renders the drawing over its background at dpi, cropped to the
// content.
func (c *Canvas) ExportPNG(dpi float64) ([]byte, error) {
	img := c.sc.RenderImage(c.background, dpi, graphic.UI{Scale: 1})
	return imageio.PNGBytes(img)
}
