package tuneauth

import (
	"encoding/base64"
	"math/rand"
	"time"

	json "github.com/goccy/go-json"
)

// Challenge errors.
const (
	ErrInsufficientSongs = Error("not enough songs")
	ErrNoMoreTargets     = Error("no more songs available")
	ErrSongTooShort      = Error("song too short for snippet")
	ErrInvalidToken      = Error("invalid token")
)

// Challenge is one verification round: three titles to choose from, the id
// of the correct one, and the URL of the snippet to play.
type Challenge struct {
	Options  []Song `json:"options"`
	TargetID string `json:"targetId"`
	AudioURL string `json:"audioUrl"`
}

// ChallengeToken encodes which song and which offset a snippet request
// refers to, so the server keeps no session state between challenge
// issuance and playback.
type ChallengeToken struct {
	SongID string `json:"songId"`
	Start  int    `json:"start"` // seconds into the artifact
}

// EncodeChallengeToken encodes a token as base64url JSON. The encoding is
// reversible and carries no signature: a participant could forge a token
// for any of their songs. That is a deliberate simplification of the study
// tool, kept as-is rather than silently hardened.
func EncodeChallengeToken(t ChallengeToken) string {
	buf, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// DecodeChallengeToken decodes a token produced by EncodeChallengeToken.
func DecodeChallengeToken(s string) (*ChallengeToken, error) {
	buf, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidToken
	}
	var t ChallengeToken
	if err := json.Unmarshal(buf, &t); err != nil {
		return nil, ErrInvalidToken
	}
	return &t, nil
}

// ChallengeGenerator builds randomized verification rounds from a user's
// song list. All randomness goes through Intn so tests can substitute a
// deterministic source.
type ChallengeGenerator struct {
	// SnippetLength is the snippet window in seconds.
	SnippetLength int

	// FallbackDuration stands in for legacy records without a stored
	// duration.
	FallbackDuration int

	// Intn returns a uniform random int in [0, n).
	Intn func(n int) int
}

// NewChallengeGenerator returns a generator backed by a seeded random
// source.
func NewChallengeGenerator() *ChallengeGenerator {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &ChallengeGenerator{
		SnippetLength:    SnippetLength,
		FallbackDuration: 30,
		Intn:             rnd.Intn,
	}
}

// Generate picks a target song not in excludeIDs, two distractors from the
// remaining songs, and a random snippet offset within the target. The
// caller passes the ids of targets already used this session so a round is
// never repeated within one verification attempt.
func (g *ChallengeGenerator) Generate(songs []Song, excludeIDs []string) (*Challenge, error) {
	if len(songs) < 3 {
		return nil, ErrInsufficientSongs
	}

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	// Pick the target from songs not yet used this session.
	var available []Song
	for _, s := range songs {
		if !excluded[s.ID] {
			available = append(available, s)
		}
	}
	if len(available) == 0 {
		return nil, ErrNoMoreTargets
	}
	target := available[g.Intn(len(available))]

	// Pick two distractors without replacement from the rest.
	var pool []Song
	for _, s := range songs {
		if s.ID != target.ID {
			pool = append(pool, s)
		}
	}
	g.shuffle(pool)
	if len(pool) > 2 {
		pool = pool[:2]
	}

	options := append([]Song{target}, pool...)
	g.shuffle(options)

	// Compute the snippet window.
	duration := target.Duration
	if duration == 0 {
		duration = g.FallbackDuration
	}
	if duration <= g.SnippetLength {
		return nil, ErrSongTooShort
	}
	start := g.Intn(duration - g.SnippetLength)

	token := EncodeChallengeToken(ChallengeToken{SongID: target.ID, Start: start})

	return &Challenge{
		Options:  options,
		TargetID: target.ID,
		AudioURL: "/api/snippet/" + token,
	}, nil
}

// shuffle is a Fisher-Yates shuffle over the generator's random source.
func (g *ChallengeGenerator) shuffle(songs []Song) {
	for i := len(songs) - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		songs[i], songs[j] = songs[j], songs[i]
	}
}
