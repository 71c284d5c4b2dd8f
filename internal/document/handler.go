package document

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/annotate/internal/scene"
)

// MaxSceneSize bounds uploaded scene bodies.
const MaxSceneSize = 64 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the document endpoints on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/documents", h.List).Methods("GET")
	r.HandleFunc("/documents", h.Create).Methods("POST")
	r.HandleFunc("/documents/{documentId}", h.Get).Methods("GET")
	r.HandleFunc("/documents/{documentId}", h.Rename).Methods("PATCH")
	r.HandleFunc("/documents/{documentId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/documents/{documentId}/scene", h.GetScene).Methods("GET")
	r.HandleFunc("/documents/{documentId}/scene", h.PutScene).Methods("PUT")
	r.HandleFunc("/documents/{documentId}/revisions", h.Revisions).Methods("GET")
	r.HandleFunc("/documents/{documentId}/render.png", h.Render).Methods("GET")
}

type createRequest struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	var seed []byte
	if req.Sample {
		seed = scene.Sample()
	}
	doc, err := h.service.Create(r.Context(), req.Name, seed)
	if err != nil {
		slog.Error("create document failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), mux.Vars(r)["documentId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("list documents failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	doc, err := h.service.Rename(r.Context(), mux.Vars(r)["documentId"], req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["documentId"]); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetScene(w http.ResponseWriter, r *http.Request) {
	version, ok := intParam(w, r, "version")
	if !ok {
		return
	}

	data, v, err := h.service.Scene(r.Context(), mux.Vars(r)["documentId"], version)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("X-Document-Version", strconv.Itoa(v))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) PutScene(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxSceneSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "scene too large"})
		return
	}

	rev, err := h.service.Save(r.Context(), mux.Vars(r)["documentId"], data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rev)
}

func (h *Handler) Revisions(w http.ResponseWriter, r *http.Request) {
	revs, err := h.service.Revisions(r.Context(), mux.Vars(r)["documentId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, revs)
}

func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	version, ok := intParam(w, r, "version")
	if !ok {
		return
	}
	dpi := 1.0
	if s := r.URL.Query().Get("dpi"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dpi"})
			return
		}
		dpi = v
	}

	png, err := h.service.Render(r.Context(), mux.Vars(r)["documentId"], version, dpi)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, true
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrInvalidScene):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scene"})
	case errors.Is(err, ErrInvalidDPI):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dpi"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
