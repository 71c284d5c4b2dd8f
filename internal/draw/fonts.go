package draw

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

type faceKey struct {
	data string
	size float64
}

// fontBook resolves Font descriptions to gg text faces.
// Sources are parsed once per process; faces are cached per size.
type fontBook struct {
	mu      sync.Mutex
	sources map[string]*text.FontSource
	faces   map[faceKey]text.Face
}

var fonts = &fontBook{
	sources: make(map[string]*text.FontSource),
	faces:   make(map[faceKey]text.Face),
}

// ttfName picks an embedded Go font for f. Families other than the
// monospace ones map onto the proportional Go family.
func ttfName(f Font) string {
	bold := f.Weight >= 600
	italic := f.Style != FontStyleNormal
	family := strings.ToLower(f.Family)
	if strings.Contains(family, "mono") || strings.Contains(family, "courier") || strings.Contains(family, "consol") {
		if bold {
			return "gomonobold"
		}
		return "gomono"
	}
	switch {
	case bold && italic:
		return "gobolditalic"
	case bold:
		return "gobold"
	case italic:
		return "goitalic"
	}
	return "goregular"
}

func ttfData(name string) []byte {
	switch name {
	case "gobold":
		return gobold.TTF
	case "goitalic":
		return goitalic.TTF
	case "gobolditalic":
		return gobolditalic.TTF
	case "gomono":
		return gomono.TTF
	case "gomonobold":
		return gomonobold.TTF
	}
	return goregular.TTF
}

func (b *fontBook) face(f Font) (text.Face, error) {
	size := f.Size
	if size <= 0 {
		size = 12
	}
	name := ttfName(f)

	b.mu.Lock()
	defer b.mu.Unlock()

	key := faceKey{name, size}
	if face, ok := b.faces[key]; ok {
		return face, nil
	}
	src, ok := b.sources[name]
	if !ok {
		var err error
		src, err = text.NewFontSource(ttfData(name))
		if err != nil {
			return nil, fmt.Errorf("loading font %s: %w", name, err)
		}
		b.sources[name] = src
	}
	face := src.Face(size)
	b.faces[key] = face
	return face, nil
}

// MeasureText returns the advance width and line height of s in font f.
// It needs no surface and is shared by Raster and Recorder.
func MeasureText(s string, f Font) (w, h float64) {
	face, err := fonts.face(f)
	if err != nil {
		return 0, f.Size
	}
	m := face.Metrics()
	lineH := m.Ascent + m.Descent + m.LineGap
	lines := strings.Split(s, "\n")
	for _, line := range lines {
		w = max(w, face.Advance(line))
	}
	return w, lineH * float64(len(lines))
}
