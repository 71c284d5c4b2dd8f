// Package view maps logical canvas coordinates to the viewport: zoom, pan,
// DPI rounding, fit presets and the clickable backdrop.
package view

import (
	"fmt"
	"math"
	"slices"

	"github.com/inamate/annotate/internal/geom"
)

// DefaultMaxZoom is the largest ContentScale the wheel reaches.
const DefaultMaxZoom = 10.0

// ZoomStops are the discrete wheel zoom levels below 3×.
var ZoomStops = []float64{0.1, 0.25, 0.5, 0.75, 1, 1.5, 2, 3}

// backdropPeriod is the parallax tile size of the backdrop in logical units.
const backdropPeriod = 100.0

// Transform holds the zoom and pan of one canvas.
//
// Viewport coordinates are device-independent screen units. A logical point
// p appears at p*Scale/DPI + Offset, so at Scale 1 one logical pixel covers
// exactly one device pixel.
type Transform struct {
	scale   float64
	offset  geom.Point
	dpi     float64
	width   float64
	height  float64
	maxZoom float64
	autoFit bool
}

// New creates an identity view for a viewport of w×h screen units.
func New(w, h, dpi float64) *Transform {
	t := &Transform{scale: 1, dpi: 1, width: w, height: h, maxZoom: DefaultMaxZoom}
	t.SetDPI(dpi)
	return t
}

// Scale returns ContentScale.
func (t *Transform) Scale() float64 { return t.scale }

// Offset returns ContentOffset.
func (t *Transform) Offset() geom.Point { return t.offset }

// DPI returns the device pixels per screen unit.
func (t *Transform) DPI() float64 { return t.dpi }

// Size returns the viewport size in screen units.
func (t *Transform) Size() (w, h float64) { return t.width, t.height }

// AutoFit reports whether resizes re-apply ZoomPanAuto.
func (t *Transform) AutoFit() bool { return t.autoFit }

// MaxZoom returns the zoom ceiling.
func (t *Transform) MaxZoom() float64 { return t.maxZoom }

// SetMaxZoom changes the zoom ceiling; values below 3 are raised to 3. A
// current zoom above the new ceiling is lowered to it.
func (t *Transform) SetMaxZoom(z float64) {
	t.maxZoom = max(3, z)
	t.scale = min(t.scale, t.maxZoom)
}

// SetDPI changes the device pixel ratio; non-positive values mean 1.
func (t *Transform) SetDPI(dpi float64) {
	if dpi <= 0 || math.IsNaN(dpi) || math.IsInf(dpi, 0) {
		dpi = 1
	}
	t.dpi = dpi
}

// SetScale sets ContentScale without moving the offset, capped at the zoom
// ceiling. A non-positive or non-finite scale is a programming error.
func (t *Transform) SetScale(s float64) {
	if !(s > 0) || math.IsInf(s, 0) {
		panic(fmt.Sprintf("view: invalid content scale %v", s))
	}
	t.scale = min(s, t.maxZoom)
}

// ZoomTo sets the zoom to z keeping the world point under the viewport
// point at fixed, and ends sticky auto-fit.
func (t *Transform) ZoomTo(z float64, at geom.Point) {
	w := t.ViewToWorld(at)
	t.SetScale(z)
	f := t.factor()
	t.offset = geom.Pt(at.X-w.X*f, at.Y-w.Y*f)
	t.autoFit = false
}

// SetOffset sets ContentOffset.
func (t *Transform) SetOffset(p geom.Point) { t.offset = p }

// factor converts logical units to screen units.
func (t *Transform) factor() float64 { return t.scale / t.dpi }

// renderOffset is the offset snapped down to whole device pixels.
func (t *Transform) renderOffset() geom.Point {
	return geom.Pt(math.Floor(t.offset.X*t.dpi)/t.dpi, math.Floor(t.offset.Y*t.dpi)/t.dpi)
}

// ViewToWorld maps a viewport point to logical coordinates.
func (t *Transform) ViewToWorld(v geom.Point) geom.Point {
	return v.Sub(t.offset).Mul(1 / t.factor())
}

// WorldToView maps a logical point to the viewport.
func (t *Transform) WorldToView(p geom.Point) geom.Point {
	return p.Mul(t.factor()).Add(t.offset)
}

// Matrix is the logical to screen transform used for rendering, with the
// translation snapped to device pixels.
func (t *Transform) Matrix() geom.Matrix2D {
	o := t.renderOffset()
	f := t.factor()
	return geom.Translate(o.X, o.Y).Multiply(geom.Scale(f, f))
}

// HandleScale converts screen units to logical units so selection handles
// keep a constant on-screen size.
func (t *Transform) HandleScale() float64 {
	return t.dpi / t.scale
}

// VisibleWorld is the logical rectangle covered by the viewport.
func (t *Transform) VisibleWorld() geom.Rect {
	return geom.RectFromPoints(t.ViewToWorld(geom.Pt(0, 0)), t.ViewToWorld(geom.Pt(t.width, t.height)))
}

// nextZoom returns the wheel zoom level after one notch, or 0 when the zoom
// should not change.
func (t *Transform) nextZoom(in bool) float64 {
	s := t.scale
	if s > 2.99 {
		z := s - 1
		if in {
			z = s + 1
		}
		if in && s >= t.maxZoom {
			return 0
		}
		return min(z, t.maxZoom)
	}
	if in {
		i := slices.IndexFunc(ZoomStops, func(z float64) bool { return z > s })
		if i < 0 {
			return 0
		}
		return ZoomStops[i]
	}
	if s <= ZoomStops[0] {
		return 0
	}
	z := 0.0
	for _, stop := range ZoomStops {
		if stop < s {
			z = stop
		}
	}
	return z
}

// Wheel zooms one notch in (delta > 0) or out about the viewport point at,
// keeping the logical point under it fixed. It reports whether the zoom
// changed.
func (t *Transform) Wheel(delta float64, at geom.Point) bool {
	if delta == 0 {
		return false
	}
	z := t.nextZoom(delta > 0)
	if z == 0 {
		return false
	}
	world := t.ViewToWorld(at)
	t.SetScale(z)
	t.offset = at.Sub(world.Mul(t.factor()))
	t.autoFit = false
	return true
}

// Pan shifts the content by a viewport delta.
func (t *Transform) Pan(dx, dy float64) {
	t.offset = t.offset.Add(geom.Pt(dx, dy))
	t.autoFit = false
}

// ZoomPanFit scales content to fill the viewport with no padding, up to the
// zoom ceiling, and centres it. Empty content falls back to actual size.
func (t *Transform) ZoomPanFit(content geom.Rect) {
	t.autoFit = false
	if content.IsEmpty() || t.width <= 0 || t.height <= 0 {
		t.ZoomPanActualSize(content, 1)
		return
	}
	t.SetScale(min(t.width/content.Width()*t.dpi, t.height/content.Height()*t.dpi, t.maxZoom))
	t.ZoomPanCenter(content)
}

// ZoomPanActualSize sets the zoom to z and centres the content.
func (t *Transform) ZoomPanActualSize(content geom.Rect, z float64) {
	t.autoFit = false
	t.SetScale(z)
	t.ZoomPanCenter(content)
}

// ZoomPanCenter centres content in the viewport at the current zoom.
func (t *Transform) ZoomPanCenter(content geom.Rect) {
	f := t.factor()
	t.offset = geom.Pt(
		t.width/2-content.Width()*f/2-content.Left*f,
		t.height/2-content.Height()*f/2-content.Top*f,
	)
}

// ZoomPanAuto shows content at actual size when it fits in the viewport's
// device pixels and fits it otherwise. Later resizes repeat this until the
// zoom is changed by hand.
func (t *Transform) ZoomPanAuto(content geom.Rect) {
	if t.height*t.dpi > content.Height() && t.width*t.dpi > content.Width() {
		t.ZoomPanActualSize(content, 1)
	} else {
		t.ZoomPanFit(content)
	}
	t.autoFit = true
}

// Resize changes the viewport size, keeping the content centred.
func (t *Transform) Resize(w, h float64, content geom.Rect) {
	t.offset = t.offset.Add(geom.Pt((w-t.width)/2, (h-t.height)/2))
	t.width, t.height = w, h
	if t.autoFit {
		t.ZoomPanAuto(content)
	}
}

// Backdrop returns the logical rectangle of the clickable surface behind
// the content. It always covers the viewport and is shifted by a fraction
// of the pan so the background appears to move with the canvas.
func (t *Transform) Backdrop() geom.Rect {
	o := t.renderOffset()
	f := t.factor()
	period := backdropPeriod * f
	xp := (math.Mod(o.X, period) - period) / f
	yp := (math.Mod(o.Y, period) - period) / f
	left := -o.X/f + xp
	top := -o.Y/f + yp
	return geom.R(left, top, left+t.width/f+math.Abs(xp), top+t.height/f+math.Abs(yp))
}
