package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

// multipart framing allowance on top of the file itself
const uploadOverhead = 1 << 20

// UploadHandler handles image uploads and serves them back.
type UploadHandler struct {
	errorResponder
	uploads *service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploads *service.UploadService, development bool) *UploadHandler {
	return &UploadHandler{errorResponder: errorResponder{development: development}, uploads: uploads}
}

// HandleUpload stores the multipart "file" field.
// POST /api/upload
// Response: 201 {"url": "/uploads/<id>"}
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if SessionFromContext(r.Context()) == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+uploadOverhead)
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File exceeds 5MB limit")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadSize+1))
	if err != nil {
		slog.Error("read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Could not read upload")
		return
	}

	url, err := h.uploads.Upload(r.Context(), data)
	if err != nil {
		h.fail(w, "upload image", err, "")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// HandleServe serves uploaded bytes with their stored Content-Type.
// GET /uploads/{id}
func (h *UploadHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.uploads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("serve upload", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
