package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tuneauth"
)

// challengeHandler represents an HTTP handler for verification rounds.
type challengeHandler struct {
	router chi.Router

	userService        tuneauth.UserService
	challengeGenerator *tuneauth.ChallengeGenerator
}

// newChallengeHandler returns a new instance of challengeHandler.
func newChallengeHandler() *challengeHandler {
	h := &challengeHandler{router: chi.NewRouter()}
	h.router.Get("/{username}", h.handleGet)
	return h
}

// ServeHTTP implements http.Handler.
func (h *challengeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// handleGet generates one verification round for the user. Targets used
// earlier in the session arrive in the exclude query parameter so rounds
// never repeat within one attempt.
func (h *challengeHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")

	var excludeIDs []string
	if v := r.URL.Query().Get("exclude"); v != "" {
		excludeIDs = strings.Split(v, ",")
	}

	user, err := h.userService.FindUserByUsername(ctx, username)
	if err != nil {
		Error(w, r, err)
		return
	} else if user == nil {
		// An unknown user cannot have enough songs; report it the same
		// way so the endpoint leaks nothing about registered names.
		Error(w, r, tuneauth.ErrInsufficientSongs)
		return
	}

	challenge, err := h.challengeGenerator.Generate(user.Songs, excludeIDs)
	if err != nil {
		Error(w, r, err)
		return
	}

	encodeJSON(w, r, http.StatusOK, challenge)
}
