package scene

import (
	"encoding/binary"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
)

var red = color.NRGBA{R: 255, A: 255}

func twoRects() *Collection {
	c := New()
	c.Add(graphic.NewRectangle(geom.R(0, 0, 10, 10), red, 2))
	c.Add(graphic.NewRectangle(geom.R(20, 20, 40, 30), red, 2))
	return c
}

func ids(gs []graphic.Graphic) []graphic.ID {
	out := make([]graphic.ID, len(gs))
	for i, g := range gs {
		out[i] = g.Attrs().ID
	}
	return out
}

func TestSerializeRoundTrip(t *testing.T) {
	c := twoRects()
	c.Add(graphic.NewArrow(geom.Pt(0, 0), geom.Pt(50, 50), red, 3))
	c.At(1).Attrs().Selected = true

	data := c.Serialize(SerializeOptions{})
	back, err := FromBytes(data)
	require.NoError(t, err)
	require.Equal(t, c.Len(), back.Len())
	assert.Equal(t, ids(c.Items()), ids(back.Items()))
	assert.Equal(t, data, back.Serialize(SerializeOptions{}))
}

func TestDeserializeIntoEmptyKeepsIDs(t *testing.T) {
	src := twoRects()
	data := src.Serialize(SerializeOptions{})

	dst := New()
	added, err := dst.Deserialize(data)
	require.NoError(t, err)
	assert.Len(t, added, 2)
	assert.Equal(t, ids(src.Items()), ids(dst.Items()))
}

func TestDeserializeIntoNonEmptyRemapsIDs(t *testing.T) {
	c := twoRects()
	data := c.Serialize(SerializeOptions{})

	added, err := c.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())
	seen := map[graphic.ID]bool{}
	for _, g := range c.Items() {
		assert.False(t, seen[g.Attrs().ID], "duplicate id %d", g.Attrs().ID)
		seen[g.Attrs().ID] = true
	}
	for i, g := range added {
		assert.NotEqual(t, c.At(i).Attrs().ID, g.Attrs().ID)
		assert.Equal(t, c.At(i).Bounds(), g.Bounds())
	}

	fresh := graphic.NewRectangle(geom.R(0, 0, 1, 1), red, 1)
	assert.False(t, seen[fresh.ID])
}

func TestSerializeSkipsRubberBand(t *testing.T) {
	c := twoRects()
	c.Add(graphic.NewSelectionRectangle(geom.Pt(3, 3)))

	back, err := FromBytes(c.Serialize(SerializeOptions{}))
	require.NoError(t, err)
	assert.Equal(t, 2, back.Len())
}

func TestSerializeSelectedOnly(t *testing.T) {
	c := twoRects()
	c.At(1).Attrs().Selected = true

	back, err := FromBytes(c.Serialize(SerializeOptions{SelectedOnly: true, OmitSelection: true}))
	require.NoError(t, err)
	require.Equal(t, 1, back.Len())
	assert.Equal(t, c.At(1).Attrs().ID, back.At(0).Attrs().ID)
	assert.False(t, back.At(0).Attrs().Selected)
}

func TestDecodeSkipsUnknownKind(t *testing.T) {
	data := twoRects().Serialize(SerializeOptions{})
	// Bump the count and append a record of an unregistered kind.
	binary.LittleEndian.PutUint32(data[4:], 3)
	data = binary.LittleEndian.AppendUint16(data, 0x7777)
	data = binary.LittleEndian.AppendUint32(data, 99)
	data = binary.LittleEndian.AppendUint32(data, 3)
	data = append(data, 1, 2, 3)

	gs, err := Decode(data)
	require.NoError(t, err)
	assert.Len(t, gs, 2)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	good := twoRects().Serialize(SerializeOptions{})

	for name, data := range map[string][]byte{
		"empty":    nil,
		"magic":    append([]byte("DRW2"), good[4:]...),
		"header":   good[:len(Magic)+4+5],
		"payload":  good[:len(good)-1],
		"too many": binary.LittleEndian.AppendUint32([]byte(Magic), 7),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestHitTestFrontToBack(t *testing.T) {
	c := New()
	back := graphic.NewFilledRectangle(geom.R(0, 0, 100, 100), red, 1)
	front := graphic.NewFilledRectangle(geom.R(40, 40, 60, 60), red, 1)
	c.Add(back)
	c.Add(front)

	g, h := c.HitTest(geom.Pt(50, 50), graphic.UI{Scale: 1})
	assert.Same(t, front, g)
	assert.Equal(t, 0, h)

	g, _ = c.HitTest(geom.Pt(10, 10), graphic.UI{Scale: 1})
	assert.Same(t, back, g)

	g, h = c.HitTest(geom.Pt(500, 500), graphic.UI{Scale: 1})
	assert.Nil(t, g)
	assert.Equal(t, -1, h)
}

func TestContentBounds(t *testing.T) {
	assert.True(t, New().ContentBounds().IsEmpty())

	c := twoRects()
	c.Add(graphic.NewSelectionRectangle(geom.Pt(500, 500)))
	assert.Equal(t, geom.R(0, 0, 40, 30), c.ContentBounds())
}

func TestSelectionHelpers(t *testing.T) {
	c := twoRects()
	assert.False(t, c.UnselectAll())
	c.SelectAll()
	assert.Equal(t, 2, c.SelectionCount())
	assert.True(t, c.RemoveSelected())
	assert.Equal(t, 0, c.Len())
}

func TestDirtyRegion(t *testing.T) {
	c := twoRects()
	require.NoError(t, c.Render(draw.NewRecorder(geom.Identity()), graphic.UI{Scale: 1}))
	assert.True(t, c.DirtyRegion().IsEmpty())

	g := c.At(0)
	g.Move(5, 0)
	c.Invalidate(g)
	assert.Equal(t, geom.R(0, 0, 15, 10), c.DirtyRegion())

	require.NoError(t, c.Render(draw.NewRecorder(geom.Identity()), graphic.UI{Scale: 1}))
	c.RemoveAt(1)
	assert.Equal(t, geom.R(20, 20, 40, 30), c.DirtyRegion())
}

func TestRenderRejectsNilContext(t *testing.T) {
	assert.ErrorIs(t, New().Render(nil, graphic.UI{}), ErrInvalidArgument)
}

func TestRenderImage(t *testing.T) {
	c := New()
	c.Add(graphic.NewFilledRectangle(geom.R(10, 10, 20, 20), red, 1))

	img := c.RenderImage(Background{}, 2, graphic.UI{Scale: 1})
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
	r, g, b, a := img.At(10, 10).RGBA()
	assert.Equal(t, [4]uint32{0xFFFF, 0, 0, 0xFFFF}, [4]uint32{r, g, b, a})

	empty := New().RenderImage(Background{}, 1, graphic.UI{})
	assert.Equal(t, 1, empty.Bounds().Dx())
}

func TestSampleDecodes(t *testing.T) {
	gs, err := Decode(Sample())
	require.NoError(t, err)
	require.Len(t, gs, 10)
	_, ok := gs[len(gs)-1].(*graphic.Pixelate)
	assert.True(t, ok)
}
