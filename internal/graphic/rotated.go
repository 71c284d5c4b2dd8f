package graphic

import (
	"math"

	"github.com/inamate/annotate/internal/geom"
)

// Handle indices of rectangular graphics, clockwise from the top-left corner.
const (
	HandleTopLeft = iota + 1
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
	RotateHandle
)

// RotatedRect is a rectangle rotated by Angle degrees about its center.
// It is the geometry shared by rectangles, ellipses, images and text.
type RotatedRect struct {
	Rect  geom.Rect
	Angle float64
}

func (r RotatedRect) matrix() geom.Matrix2D {
	if r.Angle == 0 {
		return geom.Identity()
	}
	return geom.RotateAt(r.Angle, r.Rect.Center())
}

// Quad returns the rotated corners clockwise from the top-left.
func (r RotatedRect) Quad() [4]geom.Point {
	return r.matrix().TransformQuad(r.Rect)
}

// Bounds returns the axis-aligned bounds of the rotated quad.
func (r RotatedRect) Bounds() geom.Rect {
	if r.Angle == 0 {
		return r.Rect.Normalize()
	}
	return r.matrix().TransformRect(r.Rect)
}

// ToLocal maps a world point into the unrotated frame of r.
func (r RotatedRect) ToLocal(p geom.Point) geom.Point {
	if r.Angle == 0 {
		return p
	}
	return r.matrix().Invert().TransformPoint(p)
}

func (r RotatedRect) localHandle(i int, ui UI) geom.Point {
	n := r.Rect
	c := n.Center()
	switch i {
	case HandleTopLeft:
		return geom.Pt(n.Left, n.Top)
	case HandleTop:
		return geom.Pt(c.X, n.Top)
	case HandleTopRight:
		return geom.Pt(n.Right, n.Top)
	case HandleRight:
		return geom.Pt(n.Right, c.Y)
	case HandleBottomRight:
		return geom.Pt(n.Right, n.Bottom)
	case HandleBottom:
		return geom.Pt(c.X, n.Bottom)
	case HandleBottomLeft:
		return geom.Pt(n.Left, n.Bottom)
	case HandleLeft:
		return geom.Pt(n.Left, c.Y)
	case RotateHandle:
		return geom.Pt(c.X, min(n.Top, n.Bottom)-RotateHandleOffset*ui.scale())
	}
	return c
}

// Handle returns the world position of handle i (0 is the center).
func (r RotatedRect) Handle(i int, ui UI) geom.Point {
	return r.matrix().TransformPoint(r.localHandle(i, ui))
}

func oppositeHandle(i int) int {
	if i < HandleTopLeft || i > HandleLeft {
		return 0
	}
	return (i+3)%8 + 1
}

// MoveHandleTo resizes, rotates or moves the rect. Resizing a rotated rect
// keeps the opposite handle fixed in world space.
func (r *RotatedRect) MoveHandleTo(p geom.Point, i int) {
	switch {
	case i == 0:
		c := r.Rect.Center()
		r.Rect = r.Rect.Offset(p.X-c.X, p.Y-c.Y)
		return
	case i == RotateHandle:
		c := r.Rect.Center()
		deg := math.Atan2(p.Y-c.Y, p.X-c.X)*180/math.Pi + 90
		r.Angle = normalizeAngle(deg)
		return
	case i < HandleTopLeft || i > HandleLeft:
		return
	}

	opp := oppositeHandle(i)
	anchor := r.Handle(opp, UI{})
	local := r.ToLocal(p)

	switch i {
	case HandleTopLeft:
		r.Rect.Left, r.Rect.Top = local.X, local.Y
	case HandleTop:
		r.Rect.Top = local.Y
	case HandleTopRight:
		r.Rect.Right, r.Rect.Top = local.X, local.Y
	case HandleRight:
		r.Rect.Right = local.X
	case HandleBottomRight:
		r.Rect.Right, r.Rect.Bottom = local.X, local.Y
	case HandleBottom:
		r.Rect.Bottom = local.Y
	case HandleBottomLeft:
		r.Rect.Left, r.Rect.Bottom = local.X, local.Y
	case HandleLeft:
		r.Rect.Left = local.X
	}

	if r.Angle != 0 {
		moved := r.Handle(opp, UI{})
		r.Rect = r.Rect.Offset(anchor.X-moved.X, anchor.Y-moved.Y)
	}
}

func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// Normalize orders the edges and gives degenerate sides a length of 1.
// It reports which axes were swapped.
func (r *RotatedRect) Normalize() (swappedX, swappedY bool) {
	swappedX = r.Rect.Right < r.Rect.Left
	swappedY = r.Rect.Bottom < r.Rect.Top
	r.Rect = r.Rect.Normalize()
	if r.Rect.Width() == 0 {
		r.Rect.Right = r.Rect.Left + 1
	}
	if r.Rect.Height() == 0 {
		r.Rect.Bottom = r.Rect.Top + 1
	}
	return swappedX, swappedY
}

// HandleCursor picks the resize cursor for handle i given the rotation.
func (r RotatedRect) HandleCursor(i int) Cursor {
	var base float64
	switch i {
	case 0:
		return CursorSizeAll
	case RotateHandle:
		return CursorRotate
	case HandleRight, HandleLeft:
		base = 0
	case HandleTopRight, HandleBottomLeft:
		base = 45
	case HandleTop, HandleBottom:
		base = 90
	case HandleTopLeft, HandleBottomRight:
		base = 135
	default:
		return CursorArrow
	}
	sector := int(math.Round((base-r.Angle)/45)) & 3
	return [...]Cursor{CursorSizeWE, CursorSizeNESW, CursorSizeNS, CursorSizeNWSE}[sector]
}

// strokeContains reports whether p lies within tol of the rect outline.
func (r RotatedRect) strokeContains(p geom.Point, tol float64) bool {
	l := r.ToLocal(p)
	n := r.Rect.Normalize()
	if !n.Inflate(tol, tol).Contains(l) {
		return false
	}
	inner := n.Inflate(-tol, -tol)
	return inner.IsEmpty() || !inner.Contains(l)
}

// fillContains reports whether p lies inside the rect grown by tol.
func (r RotatedRect) fillContains(p geom.Point, tol float64) bool {
	return r.Rect.Normalize().Inflate(tol, tol).Contains(r.ToLocal(p))
}

func (r RotatedRect) intersects(rc geom.Rect) bool {
	q := r.Quad()
	return geom.PolygonIntersectsRect(q[:], rc)
}
