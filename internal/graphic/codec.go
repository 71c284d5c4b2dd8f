package graphic

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
)

var (
	// ErrFormat is returned for malformed binary payloads.
	ErrFormat = errors.New("invalid drawing format")
	// ErrUnknownKind is returned when a payload tag has no variant.
	ErrUnknownKind = errors.New("unknown graphic kind")
)

// Payload field identifiers. Values are stable across versions.
const (
	fieldColor uint8 = iota + 1
	fieldLineWidth
	fieldSelected
	fieldAngle
	fieldRect
	fieldStart
	fieldEnd
	fieldPoints
	fieldText
	fieldFontFamily
	fieldFontSize
	fieldFontStyle
	fieldFontWeight
	fieldFontStretch
	fieldCenter
	fieldOrdinal
	fieldBlock
	fieldPath
	fieldFlipX
	fieldFlipY
)

// Payload value types.
const (
	typeF64 uint8 = iota + 1
	typeColor
	typeString
	typePoint
	typeRect
	typePoints
	typeU32
	typeBool
)

// field is one decoded payload entry.
type field struct {
	id, typ uint8
	f64     float64
	color   color.NRGBA
	str     string
	pt      geom.Point
	rect    geom.Rect
	pts     []geom.Point
	u32     uint32
	b       bool
}

type fieldWriter struct {
	buf bytes.Buffer
}

func (w *fieldWriter) head(id, typ uint8) {
	w.buf.WriteByte(id)
	w.buf.WriteByte(typ)
}

func (w *fieldWriter) putF64(v float64) {
	w.buf.Write(binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)))
}

func (w *fieldWriter) putU32(v uint32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func (w *fieldWriter) F64(id uint8, v float64) {
	w.head(id, typeF64)
	w.putF64(v)
}

// Color writes c as BGRA32.
func (w *fieldWriter) Color(id uint8, c color.NRGBA) {
	w.head(id, typeColor)
	w.buf.Write([]byte{c.B, c.G, c.R, c.A})
}

func (w *fieldWriter) Str(id uint8, s string) {
	w.head(id, typeString)
	w.putU32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *fieldWriter) Point(id uint8, p geom.Point) {
	w.head(id, typePoint)
	w.putF64(p.X)
	w.putF64(p.Y)
}

func (w *fieldWriter) Rect(id uint8, r geom.Rect) {
	w.head(id, typeRect)
	w.putF64(r.Left)
	w.putF64(r.Top)
	w.putF64(r.Right)
	w.putF64(r.Bottom)
}

func (w *fieldWriter) Points(id uint8, pts []geom.Point) {
	w.head(id, typePoints)
	w.putU32(uint32(len(pts)))
	for _, p := range pts {
		w.putF64(p.X)
		w.putF64(p.Y)
	}
}

func (w *fieldWriter) U32(id uint8, v uint32) {
	w.head(id, typeU32)
	w.putU32(v)
}

func (w *fieldWriter) Bool(id uint8, v bool) {
	w.head(id, typeBool)
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

type fieldReader struct {
	data []byte
	off  int
}

func (r *fieldReader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, fmt.Errorf("payload truncated at %d: %w", r.off, ErrFormat)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *fieldReader) f64() (float64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (r *fieldReader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *fieldReader) point() (geom.Point, error) {
	x, err := r.f64()
	if err != nil {
		return geom.Point{}, err
	}
	y, err := r.f64()
	return geom.Pt(x, y), err
}

func (r *fieldReader) next() (field, error) {
	h, err := r.take(2)
	if err != nil {
		return field{}, err
	}
	f := field{id: h[0], typ: h[1]}
	switch f.typ {
	case typeF64:
		f.f64, err = r.f64()
	case typeColor:
		var b []byte
		if b, err = r.take(4); err == nil {
			f.color = color.NRGBA{B: b[0], G: b[1], R: b[2], A: b[3]}
		}
	case typeString:
		var n uint32
		if n, err = r.u32(); err == nil {
			var b []byte
			if b, err = r.take(int(n)); err == nil {
				f.str = string(b)
			}
		}
	case typePoint:
		f.pt, err = r.point()
	case typeRect:
		var a, b geom.Point
		if a, err = r.point(); err == nil {
			if b, err = r.point(); err == nil {
				f.rect = geom.R(a.X, a.Y, b.X, b.Y)
			}
		}
	case typePoints:
		var n uint32
		if n, err = r.u32(); err == nil {
			if int(n) > (len(r.data)-r.off)/16 {
				return f, fmt.Errorf("vertex count %d exceeds payload: %w", n, ErrFormat)
			}
			f.pts = make([]geom.Point, n)
			for i := range f.pts {
				if f.pts[i], err = r.point(); err != nil {
					break
				}
			}
		}
	case typeU32:
		f.u32, err = r.u32()
	case typeBool:
		var b []byte
		if b, err = r.take(1); err == nil {
			f.b = b[0] != 0
		}
	default:
		return f, fmt.Errorf("field %d has unknown type %d: %w", f.id, f.typ, ErrFormat)
	}
	return f, err
}

// EncodeOptions controls payload encoding.
type EncodeOptions struct {
	// OmitSelection drops the selection flag so the payload describes
	// content only.
	OmitSelection bool
}

// EncodePayload encodes the variant fields of g, selection included.
func EncodePayload(g Graphic) []byte {
	return EncodePayloadWith(g, EncodeOptions{})
}

// EncodePayloadWith encodes the variant fields of g.
func EncodePayloadWith(g Graphic, opts EncodeOptions) []byte {
	w := &fieldWriter{}
	b := g.Attrs()
	w.Color(fieldColor, b.Color)
	w.F64(fieldLineWidth, b.LineWidth)
	if !opts.OmitSelection {
		w.Bool(fieldSelected, b.Selected)
	}
	g.writeFields(w)
	return w.buf.Bytes()
}

func newOfKind(k Kind) (Graphic, error) {
	switch k {
	case KindRectangle:
		return &Rectangle{}, nil
	case KindFilledRectangle:
		return &Rectangle{Filled: true}, nil
	case KindEllipse:
		return &Ellipse{}, nil
	case KindLine:
		return &Line{}, nil
	case KindArrow:
		return &Line{Arrow: true}, nil
	case KindPolyLine:
		return &PolyLine{}, nil
	case KindText:
		return &Text{Font: draw.Font{Weight: draw.WeightNormal, Stretch: draw.StretchNormal}}, nil
	case KindCount:
		return &CountMarker{}, nil
	case KindPixelate:
		return &Pixelate{Block: DefaultBlockSize}, nil
	case KindImage:
		return &Image{cache: &bitmapCache{}}, nil
	}
	return nil, fmt.Errorf("kind %d: %w", k, ErrUnknownKind)
}

// DecodePayload rebuilds a graphic of kind k with the given id.
// Unknown field ids are ignored so newer payloads still load.
func DecodePayload(k Kind, id ID, payload []byte) (Graphic, error) {
	g, err := newOfKind(k)
	if err != nil {
		return nil, err
	}
	b := g.Attrs()
	b.ID = id
	r := &fieldReader{data: payload}
	for r.off < len(r.data) {
		f, err := r.next()
		if err != nil {
			return nil, err
		}
		switch f.id {
		case fieldColor:
			b.Color = f.color
		case fieldLineWidth:
			b.LineWidth = f.f64
		case fieldSelected:
			b.Selected = f.b
		default:
			if err := g.readField(f); err != nil {
				return nil, err
			}
		}
	}
	if p, ok := g.(*PolyLine); ok && len(p.Points) < 2 {
		return nil, fmt.Errorf("polyline with %d points: %w", len(p.Points), ErrFormat)
	}
	return g, nil
}

func (s *boxShape) writeBox(w *fieldWriter) {
	w.Rect(fieldRect, s.Rect)
	if s.Angle != 0 {
		w.F64(fieldAngle, s.Angle)
	}
}

func (s *boxShape) readBox(f field) bool {
	switch f.id {
	case fieldRect:
		s.Rect = f.rect
	case fieldAngle:
		s.Angle = f.f64
	default:
		return false
	}
	return true
}

func (g *Rectangle) writeFields(w *fieldWriter) { g.writeBox(w) }

func (g *Rectangle) readField(f field) error {
	g.readBox(f)
	return nil
}

func (g *Ellipse) writeFields(w *fieldWriter) { g.writeBox(w) }

func (g *Ellipse) readField(f field) error {
	g.readBox(f)
	return nil
}

func (g *Line) writeFields(w *fieldWriter) {
	w.Point(fieldStart, g.Start)
	w.Point(fieldEnd, g.End)
}

func (g *Line) readField(f field) error {
	switch f.id {
	case fieldStart:
		g.Start = f.pt
	case fieldEnd:
		g.End = f.pt
	}
	return nil
}

func (g *PolyLine) writeFields(w *fieldWriter) {
	w.Points(fieldPoints, g.Points)
}

func (g *PolyLine) readField(f field) error {
	if f.id == fieldPoints {
		g.Points = f.pts
	}
	return nil
}

func (g *Text) writeFields(w *fieldWriter) {
	g.writeBox(w)
	w.Str(fieldText, g.Body)
	w.Str(fieldFontFamily, g.Font.Family)
	w.F64(fieldFontSize, g.Font.Size)
	w.U32(fieldFontStyle, uint32(g.Font.Style))
	w.U32(fieldFontWeight, uint32(g.Font.Weight))
	w.U32(fieldFontStretch, uint32(g.Font.Stretch))
}

func (g *Text) readField(f field) error {
	if g.readBox(f) {
		return nil
	}
	switch f.id {
	case fieldText:
		g.Body = f.str
	case fieldFontFamily:
		g.Font.Family = f.str
	case fieldFontSize:
		g.Font.Size = f.f64
	case fieldFontStyle:
		g.Font.Style = draw.FontStyle(f.u32)
	case fieldFontWeight:
		g.Font.Weight = int(f.u32)
	case fieldFontStretch:
		g.Font.Stretch = int(f.u32)
	}
	return nil
}

func (g *CountMarker) writeFields(w *fieldWriter) {
	w.Point(fieldCenter, g.Center)
	w.U32(fieldOrdinal, uint32(g.Ordinal))
}

func (g *CountMarker) readField(f field) error {
	switch f.id {
	case fieldCenter:
		g.Center = f.pt
	case fieldOrdinal:
		g.Ordinal = int(f.u32)
	}
	return nil
}

func (g *Pixelate) writeFields(w *fieldWriter) {
	w.Rect(fieldRect, g.Rect)
	w.F64(fieldBlock, g.Block)
}

func (g *Pixelate) readField(f field) error {
	switch f.id {
	case fieldRect:
		g.Rect = f.rect
	case fieldBlock:
		if f.f64 <= 0 {
			return fmt.Errorf("pixelate block %v: %w", f.f64, ErrFormat)
		}
		g.Block = f.f64
	}
	return nil
}

func (g *Image) writeFields(w *fieldWriter) {
	g.writeBox(w)
	w.Str(fieldPath, g.Path)
	if g.FlipX {
		w.Bool(fieldFlipX, true)
	}
	if g.FlipY {
		w.Bool(fieldFlipY, true)
	}
}

func (g *Image) readField(f field) error {
	if g.readBox(f) {
		return nil
	}
	switch f.id {
	case fieldPath:
		g.Path = f.str
	case fieldFlipX:
		g.FlipX = f.b
	case fieldFlipY:
		g.FlipY = f.b
	}
	return nil
}
