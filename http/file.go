package http

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tuneauth"
)

// fileHandler represents an HTTP handler for serving audio artifacts.
type fileHandler struct {
	router chi.Router

	fileService tuneauth.FileService
}

// newFileHandler returns a new instance of fileHandler.
func newFileHandler() *fileHandler {
	h := &fileHandler{router: chi.NewRouter()}
	h.router.Get("/{name}", h.handleGet)
	return h
}

// ServeHTTP implements http.Handler.
func (h *fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *fileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	// Fetch file.
	f, rc, err := h.fileService.FindFileByName(ctx, name)
	if err != nil {
		Error(w, r, err)
		return
	} else if f == nil {
		Error(w, r, tuneauth.ErrArtifactNotFound)
		return
	}
	defer rc.Close()

	// Set headers.
	w.Header().Set("Content-Type", contentTypeByExtension(path.Ext(f.Name)))
	w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))

	// Write file contents to response.
	if _, err := io.Copy(w, rc); err != nil {
		logger := FromContext(ctx)
		logger.Error().Err(err).Msg("artifact stream interrupted")
	}
}

// contentTypeByExtension resolves a MIME type. Opus artifacts live in an
// Ogg container, which the stdlib table does not know about.
func contentTypeByExtension(ext string) string {
	if ext == ".opus" {
		return "audio/ogg"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
