package asset

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotate/internal/imageio"
	"github.com/inamate/annotate/internal/typeid"
)

func router(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/assets/upload", h.Upload).Methods("POST", "OPTIONS")
	r.HandleFunc("/assets/{assetId}", h.DeleteHandler).Methods("DELETE")
	r.PathPrefix("/assets/").Handler(h.Serve()).Methods("GET")
	return r
}

func upload(t *testing.T, r http.Handler, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/assets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.Set(1, 1, color.NRGBA{R: 0xFF, A: 0xFF})
	return img
}

func TestUploadServeDelete(t *testing.T) {
	h := NewHandler(t.TempDir())
	r := router(h)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, testImage(), nil))

	rec := upload(t, r, "shot.jpg", jpg.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 6, resp.Width)
	assert.Equal(t, 4, resp.Height)
	assert.Equal(t, "image/jpeg", resp.Type)
	assert.Equal(t, "shot.jpg", resp.Name)
	require.NoError(t, typeid.Validate(resp.ID, typeid.PrefixAsset))

	path, err := h.Path(resp.ID)
	require.NoError(t, err)
	img, err := imageio.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 4), img.Bounds())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", resp.URL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
	mime, _, err := imageio.Sniff(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("DELETE", "/assets/"+resp.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err = h.Path(resp.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("DELETE", "/assets/"+resp.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsNonImages(t *testing.T) {
	r := router(NewHandler(t.TempDir()))
	rec := upload(t, r, "notes.txt", []byte("just some text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("POST", "/assets/upload", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPathRejectsForeignIDs(t *testing.T) {
	h := NewHandler(t.TempDir())
	for _, id := range []string{"../etc/passwd", typeid.NewDocumentID(), typeid.NewAssetID()} {
		_, err := h.Path(id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}
