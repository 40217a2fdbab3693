package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tuneauth"
)

// snippetHandler represents an HTTP handler for streaming verification
// snippets.
type snippetHandler struct {
	router chi.Router

	fileService     tuneauth.FileService
	snippetStreamer tuneauth.SnippetStreamer
}

// newSnippetHandler returns a new instance of snippetHandler.
func newSnippetHandler() *snippetHandler {
	h := &snippetHandler{router: chi.NewRouter()}
	h.router.Get("/{token}", h.handleGet)
	return h
}

// ServeHTTP implements http.Handler.
func (h *snippetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// handleGet decodes a challenge token and streams the one-second slice it
// describes as a single forward-only mp3 stream.
func (h *snippetHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, err := tuneauth.DecodeChallengeToken(chi.URLParam(r, "token"))
	if err != nil {
		Error(w, r, err)
		return
	}

	f, rc, err := h.fileService.FindFileByName(ctx, token.SongID+".opus")
	if err != nil {
		Error(w, r, err)
		return
	} else if f == nil {
		Error(w, r, tuneauth.ErrArtifactNotFound)
		return
	}
	rc.Close()

	snippet, err := h.snippetStreamer.StreamSnippet(ctx, f.Path, token.Start, tuneauth.SnippetLength)
	if err != nil {
		Error(w, r, err)
		return
	}
	defer snippet.Close()

	w.Header().Set("Content-Type", "audio/mpeg")

	// Once bytes are on the wire the status code is already committed;
	// a transcode failure mid-stream can only cut the stream short.
	if _, err := io.Copy(w, snippet); err != nil {
		logger := FromContext(ctx)
		logger.Error().Err(err).Msg("snippet stream interrupted")
	}
}
