package tuneauth

// Song errors.
const (
	ErrSongNotFound      = Error("song not found")
	ErrSongLimitReached  = Error("song limit reached")
	ErrDuplicateSong     = Error("song is already in your list")
	ErrParallelDuplicate = Error("song was already added by a parallel download")
	ErrSongTooLong       = Error("song is too long")
	ErrNoResults         = Error("no results found")
	ErrSearchTimeout     = Error("search timed out")
	ErrSearchFailed      = Error("search failed")
	ErrDownloadFailed    = Error("failed to download song")
)

// MaxSongsPerUser is the size of a participant's song list.
const MaxSongsPerUser = 5

// Song represents a downloaded audio track in a user's list.
type Song struct {
	// ID is a slug derived from the title plus a random suffix. It names
	// the audio artifact and is unique even for identical titles.
	ID string `json:"id"`

	// Title is the display string from the provider metadata.
	Title string `json:"title"`

	// OriginalID is the provider's canonical video id, used to keep a
	// user from adding the same source twice.
	OriginalID string `json:"originalId"`

	// Path is the public path of the audio artifact.
	Path string `json:"path"`

	// Duration is the full track length in seconds.
	Duration int `json:"duration"`
}
