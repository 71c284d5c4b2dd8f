package export

import (
	"bytes"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotate/internal/imageio"
	"github.com/inamate/annotate/internal/scene"
)

func post(t *testing.T, query string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(func() scene.Background { return scene.Background{Color: color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}} })
	rec := httptest.NewRecorder()
	h.ExportPNG(rec, httptest.NewRequest("POST", "/export/png"+query, bytes.NewReader(body)))
	return rec
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := imageio.Decode(data)
	require.NoError(t, err)
	return img
}

func TestExportPNG(t *testing.T) {
	sample := scene.Sample()

	rec := post(t, "?name=my%20shot", sample)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="my-shot.png"`, rec.Header().Get("Content-Disposition"))
	one := decodePNG(t, rec.Body.Bytes()).Bounds()

	rec = post(t, "?dpi=2&background=transparent", sample)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="drawing.png"`, rec.Header().Get("Content-Disposition"))
	two := decodePNG(t, rec.Body.Bytes()).Bounds()
	assert.InDelta(t, 2*one.Dx(), two.Dx(), 2)
	assert.InDelta(t, 2*one.Dy(), two.Dy(), 2)
}

func TestExportRejectsBadInput(t *testing.T) {
	sample := scene.Sample()
	for name, tc := range map[string]struct {
		query string
		body  []byte
	}{
		"empty":          {"", nil},
		"garbage":        {"", []byte("not a drawing")},
		"dpi not number": {"?dpi=big", sample},
		"dpi too high":   {"?dpi=100", sample},
		"dpi zero":       {"?dpi=0", sample},
		"bad background": {"?background=mauve", sample},
	} {
		t.Run(name, func(t *testing.T) {
			rec := post(t, tc.query, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "drawing", sanitize(""))
	assert.Equal(t, "a-b_c-1", sanitize("a b_c/1"))
	assert.Equal(t, "------passwd", sanitize("../../passwd"))
}
