package scene

import (
	"image/color"

	"github.com/inamate/annotate/internal/draw"
	"github.com/inamate/annotate/internal/geom"
	"github.com/inamate/annotate/internal/graphic"
)

// Sample returns a small annotated drawing that shows off each
// kind of mark.
func Sample() []byte {
	red := color.NRGBA{R: 0xFF, A: 0xFF}
	blue := color.NRGBA{R: 0x1E, G: 0x90, B: 0xFF, A: 0xFF}
	yellow := color.NRGBA{R: 0xFF, G: 0xD7, A: 0x80}

	font := draw.Font{Family: "Go", Size: 16, Weight: draw.WeightBold, Stretch: draw.StretchNormal}

	sc := New()
	sc.Add(graphic.NewFilledRectangle(geom.R(40, 40, 360, 80), yellow, 1))
	sc.Add(graphic.NewText(geom.Pt(48, 48), "Release checklist", font, color.NRGBA{A: 0xFF}))
	sc.Add(graphic.NewRectangle(geom.R(40, 120, 240, 220), red, 3))
	sc.Add(graphic.NewArrow(geom.Pt(320, 280), geom.Pt(245, 215), red, 3))
	sc.Add(graphic.NewEllipse(geom.R(280, 120, 400, 200), blue, 2))
	sc.Add(graphic.NewLine(geom.Pt(40, 260), geom.Pt(200, 260), blue, 2))
	if pl, err := graphic.NewPolyLine([]geom.Point{
		geom.Pt(40, 300), geom.Pt(90, 330), geom.Pt(140, 300), geom.Pt(190, 330),
	}, blue, 2); err == nil {
		sc.Add(pl)
	}
	sc.Add(graphic.NewCountMarker(geom.Pt(60, 140), 1, red, 2))
	sc.Add(graphic.NewCountMarker(geom.Pt(300, 140), 2, red, 2))
	sc.Add(graphic.NewPixelate(geom.R(250, 300, 400, 340), graphic.DefaultBlockSize))
	return sc.Serialize(SerializeOptions{})
}
