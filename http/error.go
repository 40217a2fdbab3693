package http

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"tuneauth"
)

// HTTP-level errors.
const (
	ErrSearchQueryRequired = tuneauth.Error("search query required")
	ErrInvalidRequestBody  = tuneauth.Error("invalid request body")
)

// errorMap is a whitelist that maps errors to status codes.
var errorMap = map[error]int{
	ErrSearchQueryRequired: http.StatusBadRequest,
	ErrInvalidRequestBody:  http.StatusBadRequest,

	tuneauth.ErrUnauthorized:     http.StatusUnauthorized,
	tuneauth.ErrUsernameRequired: http.StatusBadRequest,
	tuneauth.ErrUserNotFound:     http.StatusNotFound,
	tuneauth.ErrWrongPassword:    http.StatusUnauthorized,

	tuneauth.ErrSongNotFound:      http.StatusNotFound,
	tuneauth.ErrSongLimitReached:  http.StatusBadRequest,
	tuneauth.ErrDuplicateSong:     http.StatusBadRequest,
	tuneauth.ErrParallelDuplicate: http.StatusBadRequest,
	tuneauth.ErrSongTooLong:       http.StatusBadRequest,
	tuneauth.ErrNoResults:         http.StatusBadRequest,
	tuneauth.ErrSearchTimeout:     http.StatusInternalServerError,
	tuneauth.ErrSearchFailed:      http.StatusInternalServerError,
	tuneauth.ErrDownloadFailed:    http.StatusInternalServerError,

	tuneauth.ErrInsufficientSongs: http.StatusBadRequest,
	tuneauth.ErrNoMoreTargets:     http.StatusBadRequest,
	tuneauth.ErrSongTooShort:      http.StatusBadRequest,
	tuneauth.ErrInvalidToken:      http.StatusBadRequest,

	tuneauth.ErrFilenameRequired: http.StatusBadRequest,
	tuneauth.ErrInvalidFilename:  http.StatusBadRequest,
	tuneauth.ErrArtifactNotFound: http.StatusNotFound,
}

// ErrorStatusCode returns the HTTP status code for an error object.
func ErrorStatusCode(err error) int {
	code, _ := lookupError(err)
	return code
}

// lookupError resolves err against the whitelist, unwrapping as needed.
func lookupError(err error) (int, bool) {
	for e, code := range errorMap {
		if errors.Is(err, e) {
			return code, true
		}
	}
	return http.StatusInternalServerError, false
}

// Error writes an error response to the writer.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code, known := lookupError(err)

	// Log error.
	logger := FromContext(r.Context())
	logger.Error().Int("status", code).Err(err).Str("path", r.URL.Path).Msg("http error")

	// Mask unrecognized errors from end users.
	if !known {
		err = tuneauth.ErrInternal
	}

	// Write response.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(&errorResponse{Err: err.Error()})
}

type errorResponse struct {
	Err string `json:"error,omitempty"`
}
