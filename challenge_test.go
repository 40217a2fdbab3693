package tuneauth_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tuneauth"
)

func testSongs(n int) []tuneauth.Song {
	songs := make([]tuneauth.Song, n)
	for i := range songs {
		songs[i] = tuneauth.Song{
			ID:       string(rune('a'+i)) + "-song",
			Title:    "Song " + string(rune('A'+i)),
			Duration: 180 + i,
		}
	}
	return songs
}

func seededGenerator(seed int64) *tuneauth.ChallengeGenerator {
	g := tuneauth.NewChallengeGenerator()
	g.Intn = rand.New(rand.NewSource(seed)).Intn
	return g
}

// Ensure fewer than three songs can never produce a challenge.
func TestChallengeGenerator_InsufficientSongs(t *testing.T) {
	g := seededGenerator(1)
	for n := 0; n < 3; n++ {
		_, err := g.Generate(testSongs(n), nil)
		require.ErrorIs(t, err, tuneauth.ErrInsufficientSongs)
	}
}

// Ensure a session that has used every song gets no further rounds.
func TestChallengeGenerator_NoMoreTargets(t *testing.T) {
	g := seededGenerator(1)
	songs := testSongs(3)

	_, err := g.Generate(songs, []string{"a-song", "b-song", "c-song"})
	require.ErrorIs(t, err, tuneauth.ErrNoMoreTargets)
}

// Ensure every generated round has three options containing the target
// exactly once, and a snippet window inside the target's duration.
func TestChallengeGenerator_Properties(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		g := seededGenerator(seed)
		songs := testSongs(5)

		c, err := g.Generate(songs, []string{"a-song"})
		require.NoError(t, err)

		require.Len(t, c.Options, 3)
		require.NotEqual(t, "a-song", c.TargetID, "excluded song picked as target")

		var targetCount int
		var target tuneauth.Song
		seen := map[string]bool{}
		for _, opt := range c.Options {
			require.False(t, seen[opt.ID], "option repeated")
			seen[opt.ID] = true
			if opt.ID == c.TargetID {
				targetCount++
				target = opt
			}
		}
		require.Equal(t, 1, targetCount, "target must appear exactly once")

		token, err := tuneauth.DecodeChallengeToken(strings.TrimPrefix(c.AudioURL, "/api/snippet/"))
		require.NoError(t, err)
		require.Equal(t, c.TargetID, token.SongID)
		require.GreaterOrEqual(t, token.Start, 0)
		require.LessOrEqual(t, token.Start+tuneauth.SnippetLength, target.Duration)
	}
}

// Ensure legacy records without a stored duration use the 30s fallback.
func TestChallengeGenerator_DurationFallback(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		g := seededGenerator(seed)
		songs := testSongs(3)
		for i := range songs {
			songs[i].Duration = 0
		}

		c, err := g.Generate(songs, nil)
		require.NoError(t, err)

		token, err := tuneauth.DecodeChallengeToken(strings.TrimPrefix(c.AudioURL, "/api/snippet/"))
		require.NoError(t, err)
		require.GreaterOrEqual(t, token.Start, 0)
		require.LessOrEqual(t, token.Start+tuneauth.SnippetLength, 30)
	}
}

// Ensure a target shorter than the snippet window is rejected rather
// than producing an impossible offset.
func TestChallengeGenerator_SongTooShort(t *testing.T) {
	g := seededGenerator(1)
	songs := testSongs(3)
	for i := range songs {
		songs[i].Duration = 1
	}

	_, err := g.Generate(songs, nil)
	require.ErrorIs(t, err, tuneauth.ErrSongTooShort)
}

// Ensure tokens round-trip and malformed tokens are rejected.
func TestChallengeToken(t *testing.T) {
	token := tuneauth.ChallengeToken{SongID: "my-song-0a1b2c3d", Start: 42}

	decoded, err := tuneauth.DecodeChallengeToken(tuneauth.EncodeChallengeToken(token))
	require.NoError(t, err)
	require.Equal(t, &token, decoded)

	for _, s := range []string{"", "!!!", "bm90IGpzb24"} {
		_, err := tuneauth.DecodeChallengeToken(s)
		require.ErrorIs(t, err, tuneauth.ErrInvalidToken)
	}
}
