package view

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotate/internal/geom"
)

func TestWheelKeepsPointUnderCursor(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, dpi := range []float64{1, 1.25, 2} {
		v := New(800, 600, dpi)
		v.SetOffset(geom.Pt(37.3, -12.9))
		for range 200 {
			at := geom.Pt(rng.Float64()*800, rng.Float64()*600)
			before := v.ViewToWorld(at)
			delta := 1.0
			if rng.IntN(2) == 0 {
				delta = -1
			}
			v.Wheel(delta, at)
			after := v.ViewToWorld(at)
			// Half a device pixel, expressed in logical units.
			tol := 0.5 / v.Scale()
			assert.InDelta(t, before.X, after.X, tol)
			assert.InDelta(t, before.Y, after.Y, tol)
		}
	}
}

func TestWheelStops(t *testing.T) {
	v := New(100, 100, 1)
	var in []float64
	for v.Wheel(1, geom.Pt(0, 0)) {
		in = append(in, v.Scale())
	}
	assert.Equal(t, []float64{1.5, 2, 3, 4, 5, 6, 7, 8, 9, 10}, in)

	var out []float64
	for v.Wheel(-1, geom.Pt(0, 0)) {
		out = append(out, v.Scale())
	}
	assert.Equal(t, []float64{9, 8, 7, 6, 5, 4, 3, 2, 1.5, 1, 0.75, 0.5, 0.25, 0.1}, out)
}

func TestMaxZoomCeiling(t *testing.T) {
	v := New(100, 100, 1)
	v.SetMaxZoom(4)
	v.SetScale(4)
	assert.False(t, v.Wheel(1, geom.Pt(0, 0)))
	assert.Equal(t, 4.0, v.Scale())
}

func TestWheelClampsToCeiling(t *testing.T) {
	v := New(100, 100, 1)
	v.SetScale(9.5)
	require.True(t, v.Wheel(1, geom.Pt(0, 0)))
	assert.Equal(t, 10.0, v.Scale())
	assert.False(t, v.Wheel(1, geom.Pt(0, 0)))
}

func TestScaleNeverExceedsCeiling(t *testing.T) {
	v := New(800, 600, 1)
	v.ZoomPanFit(geom.R(0, 0, 2, 2))
	assert.Equal(t, v.MaxZoom(), v.Scale())
	// Tiny content is still centred at the capped zoom.
	assert.Equal(t, geom.Pt(400, 300), v.WorldToView(geom.Pt(1, 1)))

	v.SetScale(50)
	assert.Equal(t, 10.0, v.Scale())

	v.SetMaxZoom(5)
	assert.Equal(t, 5.0, v.Scale())
}

func TestZoomPanFitCentres(t *testing.T) {
	v := New(400, 300, 1)
	content := geom.R(100, 100, 300, 200)
	v.ZoomPanFit(content)

	assert.Equal(t, 2.0, v.Scale())
	assert.Equal(t, geom.Pt(0, 50), v.WorldToView(content.TopLeft()))
	assert.Equal(t, geom.Pt(400, 250), v.WorldToView(content.BottomRight()))
}

func TestZoomPanFitHonoursDPI(t *testing.T) {
	v := New(400, 300, 2)
	v.ZoomPanFit(geom.R(0, 0, 800, 300))
	assert.Equal(t, 1.0, v.Scale())
	assert.Equal(t, geom.Pt(400, 225), v.WorldToView(geom.Pt(800, 300)))
}

func TestZoomPanAutoIsSticky(t *testing.T) {
	v := New(400, 300, 1)
	content := geom.R(0, 0, 200, 100)
	v.ZoomPanAuto(content)
	assert.Equal(t, 1.0, v.Scale())
	assert.True(t, v.AutoFit())

	v.Resize(100, 100, content)
	assert.Equal(t, 0.5, v.Scale())
	assert.True(t, v.AutoFit())

	v.Wheel(1, geom.Pt(0, 0))
	assert.False(t, v.AutoFit())
	v.Resize(50, 50, content)
	assert.Equal(t, 0.75, v.Scale())
}

func TestResizeKeepsCentre(t *testing.T) {
	v := New(400, 300, 1)
	v.SetOffset(geom.Pt(10, 20))
	v.Resize(500, 400, geom.Rect{})
	assert.Equal(t, geom.Pt(60, 70), v.Offset())
}

func TestBackdropCoversViewport(t *testing.T) {
	v := New(640, 480, 1.5)
	for _, off := range []geom.Point{{}, {X: 1234.5, Y: -987.25}, {X: -3, Y: 77}} {
		v.SetOffset(off)
		v.SetScale(2)
		assert.True(t, v.Backdrop().Inflate(1e-9, 1e-9).ContainsRect(v.VisibleWorld()), "offset %v", off)
	}
}

func TestHandleScale(t *testing.T) {
	v := New(100, 100, 2)
	v.SetScale(4)
	assert.Equal(t, 0.5, v.HandleScale())
}

func TestRenderOffsetSnapsToDevicePixels(t *testing.T) {
	v := New(100, 100, 2)
	v.SetOffset(geom.Pt(10.3, 10.8))
	m := v.Matrix()
	assert.Equal(t, 10.0, m[4])
	assert.Equal(t, 10.5, m[5])
}

func TestInvalidScalePanics(t *testing.T) {
	v := New(100, 100, 1)
	require.Panics(t, func() { v.SetScale(0) })
	require.Panics(t, func() { v.SetScale(-1) })
}

func TestZoomToEndsAutoFit(t *testing.T) {
	v := New(200, 100, 1)
	v.ZoomPanAuto(geom.R(0, 0, 50, 50))
	require.True(t, v.AutoFit())

	at := geom.Pt(30, 40)
	before := v.ViewToWorld(at)
	v.ZoomTo(4, at)
	assert.False(t, v.AutoFit())
	assert.Equal(t, 4.0, v.Scale())
	after := v.ViewToWorld(at)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}
