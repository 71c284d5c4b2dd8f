// Package export renders drawings posted by clients to downloadable images.
package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/inamate/annotate/internal/config"
	"github.com/inamate/annotate/internal/document"
	"github.com/inamate/annotate/internal/scene"
)

const maxUploadSize = 50 << 20 // 50MB

type Handler struct {
	background func() scene.Background
}

// NewHandler creates an export handler. background supplies the fill used
// when a request does not name one.
func NewHandler(background func() scene.Background) *Handler {
	return &Handler{background: background}
}

// ExportPNG handles POST /export/png. The body is a serialized drawing;
// ?dpi= scales the output, ?name= sets the download filename and
// ?background= is "transparent" or a hex color.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty drawing", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	dpi := 1.0
	if s := q.Get("dpi"); s != "" {
		dpi, err = strconv.ParseFloat(s, 64)
		if err != nil {
			http.Error(w, "invalid dpi", http.StatusBadRequest)
			return
		}
	}

	bg := h.background()
	if s := q.Get("background"); s != "" {
		bg, err = parseBackground(s)
		if err != nil {
			http.Error(w, "invalid background", http.StatusBadRequest)
			return
		}
	}

	out, err := document.RenderPNG(data, bg, dpi)
	if err != nil {
		switch {
		case errors.Is(err, document.ErrInvalidDPI):
			http.Error(w, "invalid dpi: must be in (0, 8]", http.StatusBadRequest)
		case errors.Is(err, document.ErrInvalidScene):
			http.Error(w, "invalid drawing", http.StatusBadRequest)
		default:
			slog.Error("render export", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	name := sanitize(q.Get("name"))
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Write(out)

	slog.Info("export complete", "format", "png", "dpi", dpi, "size", len(out))
}

func parseBackground(s string) (scene.Background, error) {
	if strings.EqualFold(s, config.Transparent) {
		return scene.Background{Checkered: true}, nil
	}
	c, err := config.ParseColor(s)
	if err != nil {
		return scene.Background{}, err
	}
	return scene.Background{Color: c}, nil
}

func sanitize(name string) string {
	if name == "" {
		return "drawing"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
