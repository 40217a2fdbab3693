package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// handleStatic serves the built frontend. Paths that do not resolve to a
// real file fall back to index.html so client-side routing keeps working;
// unmatched API paths stay plain 404s.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.NotFound(w, r)
		return
	}

	name := filepath.Join(s.DistPath, filepath.Clean("/"+r.URL.Path))
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		http.ServeFile(w, r, name)
		return
	}

	http.ServeFile(w, r, filepath.Join(s.DistPath, "index.html"))
}
