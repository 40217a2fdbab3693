package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tuneauth"
	"tuneauth/bolt"
	"tuneauth/local"
	"tuneauth/mock"
)

// TestScenario_StudyFlow walks the full study flow against a real Bolt
// store and a real on-disk artifact store. Only the media provider and
// the transcoder are faked.
func TestScenario_StudyFlow(t *testing.T) {
	s, closeFn := mustOpenScenarioServer(t)
	defer closeFn()

	// First contact creates the participant.
	body := decodeBody(t, do(s, "POST", "/api/register", `{"username":"alice"}`))
	require.Equal(t, false, body["isReturning"])
	require.Equal(t, "User created", body["message"])

	// Registering again finds the same record.
	body = decodeBody(t, do(s, "POST", "/api/register", `{"username":"Alice"}`))
	require.Equal(t, true, body["isReturning"])

	// Enroll five songs.
	var songIDs []string
	for i := 0; i < tuneauth.MaxSongsPerUser; i++ {
		w := do(s, "POST", "/api/users/alice/songs", fmt.Sprintf(`{"query":"song number %d"}`, i))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		song := decodeBody(t, w)["song"].(map[string]interface{})
		songIDs = append(songIDs, song["id"].(string))
	}

	// A sixth song is over the cap.
	w := do(s, "POST", "/api/users/alice/songs", `{"query":"one too many"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "song limit reached", decodeBody(t, w)["error"])

	// Finish setup with a password.
	w = do(s, "POST", "/api/users/alice/password", `{"password":"hunter2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(s, "POST", "/api/login", `{"username":"alice","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(s, "POST", "/api/login", `{"username":"alice","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Run verification rounds until every song has been a target. Each
	// round's snippet must stream, and its target feeds the next round's
	// exclusion list.
	var used []string
	for round := 0; round < tuneauth.MaxSongsPerUser; round++ {
		target := runChallengeRound(t, s, used)
		require.NotContains(t, used, target)
		used = append(used, target)
	}

	w = do(s, "GET", "/api/challenge/alice?exclude="+strings.Join(used, ","), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "no more songs available", decodeBody(t, w)["error"])

	// Record the attempt outcome.
	w = do(s, "POST", "/api/metrics", `{"username":"alice","metric":{"type":"verification","session":"s1","success":true,"duration":5400}}`)
	require.Equal(t, http.StatusOK, w.Code)

	body = decodeBody(t, do(s, "GET", "/api/users/alice", ""))
	require.Len(t, body["songs"], tuneauth.MaxSongsPerUser)
	require.Len(t, body["metrics"], 1)

	// Dropping a song frees a slot.
	w = do(s, "DELETE", "/api/users/alice/songs/"+songIDs[0], "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(tuneauth.MaxSongsPerUser-1), decodeBody(t, w)["count"])
}

// runChallengeRound fetches a challenge, checks its shape, streams its
// snippet, and returns the target id.
func runChallengeRound(t *testing.T, s *Server, exclude []string) string {
	t.Helper()

	target := "/api/challenge/alice"
	if len(exclude) > 0 {
		target += "?exclude=" + strings.Join(exclude, ",")
	}
	w := do(s, "GET", target, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	require.Len(t, body["options"], 3)

	audioURL := body["audioUrl"].(string)
	w = do(s, "GET", audioURL, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	require.Equal(t, "MP3DATA", w.Body.String())

	return body["targetId"].(string)
}

// mustOpenScenarioServer wires a server over temp-backed bolt and local
// stores plus scripted provider and streamer fakes.
func mustOpenScenarioServer(t *testing.T) (*Server, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "tuneauth-http-")
	require.NoError(t, err)

	db := bolt.NewDB()
	db.Path = filepath.Join(dir, "db")
	require.NoError(t, db.Open())

	fileService := local.NewFileService()
	fileService.Path = filepath.Join(dir, "assets")

	// Each search returns a distinct video so duplicate detection never
	// trips; durations stay comfortably under the ceiling.
	var searches int
	provider := &mock.MediaProvider{
		SearchFn: func(ctx context.Context, query string) (*tuneauth.MediaInfo, error) {
			searches++
			return &tuneauth.MediaInfo{
				ID:         fmt.Sprintf("vid%03d", searches),
				Title:      fmt.Sprintf("Test Track %d (Lyrics)", searches),
				WebpageURL: fmt.Sprintf("https://example.com/watch?v=vid%03d", searches),
				Duration:   180 + searches,
			}, nil
		},
		DownloadFn: func(ctx context.Context, url string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("OPUSDATA")), nil
		},
	}

	downloader := tuneauth.NewSongDownloader()
	downloader.UserService = bolt.NewUserService(db)
	downloader.FileService = fileService
	downloader.Provider = provider

	s := NewServer()
	s.UserService = downloader.UserService
	s.FileService = fileService
	s.SongDownloader = downloader
	s.ChallengeGenerator = newTestGenerator()
	s.SnippetStreamer = &mock.SnippetStreamer{
		StreamSnippetFn: func(ctx context.Context, path string, start, length int) (io.ReadCloser, error) {
			if _, err := os.Stat(path); err != nil {
				return nil, err
			}
			return io.NopCloser(strings.NewReader("MP3DATA")), nil
		},
	}

	return s, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}
