package document

import (
	"bytes"
	"encoding/json"
	"image"
	_ "image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotate/internal/scene"
	"github.com/inamate/annotate/internal/store"
	"github.com/inamate/annotate/internal/typeid"
)

func newServer(t *testing.T) (*Service, http.Handler) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := NewService(st)
	r := mux.NewRouter()
	NewHandler(svc).Routes(r.PathPrefix("/api").Subrouter())
	return svc, r
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestSampleScene(t *testing.T) {
	gs, err := scene.Decode(scene.Sample())
	require.NoError(t, err)
	assert.Len(t, gs, 10)
}

func TestDocumentLifecycle(t *testing.T) {
	_, h := newServer(t)

	rec := do(t, h, "POST", "/api/documents", []byte(`{"name":"Bug report","sample":true}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := decodeJSON[Document](t, rec)
	assert.Equal(t, "Bug report", doc.Name)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, 10, doc.Graphics)
	require.NoError(t, typeid.Validate(doc.ID, typeid.PrefixDocument))

	rec = do(t, h, "GET", "/api/documents/"+doc.ID+"/scene", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Document-Version"))
	assert.Equal(t, scene.Sample()[:4], rec.Body.Bytes()[:4])

	rec = do(t, h, "PUT", "/api/documents/"+doc.ID+"/scene", []byte("not a drawing"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, "PUT", "/api/documents/"+doc.ID+"/scene", NewEmptyScene())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, decodeJSON[Revision](t, rec).Version)

	rec = do(t, h, "GET", "/api/documents/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[Document](t, rec)
	assert.Equal(t, 2, got.Version)
	assert.Zero(t, got.Graphics)

	rec = do(t, h, "GET", "/api/documents/"+doc.ID+"/revisions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	revs := decodeJSON[[]Revision](t, rec)
	require.Len(t, revs, 2)
	assert.Equal(t, []int{2, 1}, []int{revs[0].Version, revs[1].Version})

	rec = do(t, h, "GET", "/api/documents/"+doc.ID+"/scene?version=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scene.Sample()[4:8], rec.Body.Bytes()[4:8], "graphic count")

	rec = do(t, h, "PATCH", "/api/documents/"+doc.ID, []byte(`{"name":"Renamed"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decodeJSON[Document](t, rec).Name)

	rec = do(t, h, "GET", "/api/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[[]Document](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, doc.ID, list[0].ID)

	rec = do(t, h, "DELETE", "/api/documents/"+doc.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, "GET", "/api/documents/"+doc.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRender(t *testing.T) {
	svc, h := newServer(t)
	doc, err := svc.Create(t.Context(), "shapes", scene.Sample())
	require.NoError(t, err)

	rec := do(t, h, "GET", "/api/documents/"+doc.ID+"/render.png", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	one, _, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Positive(t, one.Width)

	rec = do(t, h, "GET", "/api/documents/"+doc.ID+"/render.png?dpi=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	two, _, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.InDelta(t, 2*one.Width, two.Width, 1)
	assert.InDelta(t, 2*one.Height, two.Height, 1)

	for _, q := range []string{"dpi=0", "dpi=9", "dpi=abc", "version=-1"} {
		rec = do(t, h, "GET", "/api/documents/"+doc.ID+"/render.png?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	rec = do(t, h, "GET", "/api/documents/"+doc.ID+"/render.png?version=7", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFound(t *testing.T) {
	_, h := newServer(t)
	for _, id := range []string{"nope", typeid.NewDocumentID(), typeid.NewAssetID()} {
		rec := do(t, h, "GET", "/api/documents/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		rec = do(t, h, "PUT", "/api/documents/"+id+"/scene", NewEmptyScene())
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		rec = do(t, h, "DELETE", "/api/documents/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestCreateRequiresName(t *testing.T) {
	_, h := newServer(t)
	rec := do(t, h, "POST", "/api/documents", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, "POST", "/api/documents", []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "invalid request body"))
}

func TestRenderPNGBackground(t *testing.T) {
	_, err := RenderPNG([]byte("junk"), scene.Background{}, 1)
	assert.ErrorIs(t, err, ErrInvalidScene)
	out, err := RenderPNG(NewEmptyScene(), scene.Background{}, 1)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Width)
}
