package http

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"tuneauth"
)

// userView is the shape of a user in API responses. The password never
// leaves the server; only its presence does.
type userView struct {
	Username    string `json:"username"`
	HasPassword bool   `json:"hasPassword"`
	SongsCount  int    `json:"songsCount"`
}

func newUserView(u *tuneauth.User) userView {
	return userView{
		Username:    u.Username,
		HasPassword: u.HasPassword(),
		SongsCount:  len(u.Songs),
	}
}

// handleRegister creates a user on first contact or reports back the
// state of a returning one.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		Error(w, r, err)
		return
	}
	if req.Username == "" {
		Error(w, r, tuneauth.ErrUsernameRequired)
		return
	}

	user, existing, err := s.UserService.FindOrCreateUserByUsername(ctx, req.Username)
	if err != nil {
		Error(w, r, err)
		return
	}

	message := "User created"
	if existing {
		message = "User found"
	}
	encodeJSON(w, r, http.StatusOK, struct {
		Message     string   `json:"message"`
		User        userView `json:"user"`
		IsReturning bool     `json:"isReturning"`
	}{
		Message:     message,
		User:        newUserView(user),
		IsReturning: existing,
	})
}

// handleLogin verifies a username/password pair.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		Error(w, r, err)
		return
	}

	user, err := s.UserService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		Error(w, r, err)
		return
	}

	encodeJSON(w, r, http.StatusOK, struct {
		Message  string `json:"message"`
		Username string `json:"username"`
	}{
		Message:  "Login successful",
		Username: user.Username,
	})
}

// handlePostMetric appends a study metric. Unknown users are silently
// ignored so a stale UI session cannot fail the study flow.
func (s *Server) handlePostMetric(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Username string          `json:"username"`
		Metric   tuneauth.Metric `json:"metric"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		Error(w, r, err)
		return
	}
	if req.Metric.Timestamp.IsZero() {
		req.Metric.Timestamp = time.Now().UTC()
	}

	if err := s.UserService.AppendMetric(ctx, req.Username, &req.Metric); err != nil {
		Error(w, r, err)
		return
	}

	encodeJSON(w, r, http.StatusOK, struct {
		Success bool `json:"success"`
	}{Success: true})
}

// userHandler represents an HTTP handler for managing a user's record and
// song list.
type userHandler struct {
	router chi.Router

	userService    tuneauth.UserService
	songDownloader *tuneauth.SongDownloader
}

// newUserHandler returns a new instance of userHandler.
func newUserHandler() *userHandler {
	h := &userHandler{router: chi.NewRouter()}
	h.router.Get("/{username}", h.handleGet)
	h.router.Post("/{username}/password", h.handleSetPassword)
	h.router.Post("/{username}/songs", h.handleAddSong)
	h.router.Delete("/{username}/songs/{id}", h.handleRemoveSong)
	return h
}

// ServeHTTP implements http.Handler.
func (h *userHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// handleGet returns the full user record minus the password.
func (h *userHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")

	user, err := h.userService.FindUserByUsername(ctx, username)
	if err != nil {
		Error(w, r, err)
		return
	} else if user == nil {
		Error(w, r, tuneauth.ErrUserNotFound)
		return
	}

	encodeJSON(w, r, http.StatusOK, struct {
		Username string            `json:"username"`
		Songs    []tuneauth.Song   `json:"songs"`
		Metrics  []tuneauth.Metric `json:"metrics"`
	}{
		Username: user.Username,
		Songs:    user.Songs,
		Metrics:  user.Metrics,
	})
}

func (h *userHandler) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")

	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		Error(w, r, err)
		return
	}

	if err := h.userService.SetPassword(ctx, username, req.Password); err != nil {
		Error(w, r, err)
		return
	}

	encodeJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "Password set"})
}

// handleAddSong runs the acquisition pipeline for a free-text query. The
// request blocks through search and download, which can take a while.
func (h *userHandler) handleAddSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")

	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		Error(w, r, err)
		return
	}
	if req.Query == "" {
		Error(w, r, ErrSearchQueryRequired)
		return
	}

	song, err := h.songDownloader.AddSong(ctx, username, req.Query)
	if err != nil {
		Error(w, r, err)
		return
	}

	encodeJSON(w, r, http.StatusOK, struct {
		Message string         `json:"message"`
		Song    *tuneauth.Song `json:"song"`
	}{
		Message: "Song added",
		Song:    song,
	})
}

// handleRemoveSong detaches a song from the user's list. The artifact
// file stays behind.
func (h *userHandler) handleRemoveSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")
	songID := chi.URLParam(r, "id")

	remaining, err := h.userService.RemoveSong(ctx, username, songID)
	if err != nil {
		Error(w, r, err)
		return
	}

	encodeJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}{
		Message: "Song removed",
		Count:   remaining,
	})
}

// decodeJSON reads a JSON request body.
func decodeJSON(r io.Reader, v interface{}) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return ErrInvalidRequestBody
	}
	return nil
}

// encodeJSON writes a JSON response body.
func encodeJSON(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := FromContext(r.Context())
		logger.Error().Err(err).Msg("encode response")
	}
}
