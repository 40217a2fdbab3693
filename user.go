package tuneauth

import (
	"context"
	"time"
)

// User errors.
const (
	ErrUsernameRequired = Error("username required")
	ErrUserNotFound     = Error("user not found")
	ErrWrongPassword    = Error("invalid password")
)

// User represents a study participant. Usernames are unique and matched
// case-insensitively. The password is stored in plain text on purpose:
// this is an informal study instrument, not a security system.
type User struct {
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"`
	Songs     []Song    `json:"songs"`
	Metrics   []Metric  `json:"metrics"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPassword returns true once the participant has set a password.
func (u *User) HasPassword() bool { return u.Password != "" }

// FindSong returns the song with the given id, or nil.
func (u *User) FindSong(id string) *Song {
	for i := range u.Songs {
		if u.Songs[i].ID == id {
			return &u.Songs[i]
		}
	}
	return nil
}

// HasOriginalID returns true if any of the user's songs came from the
// provider video with the given canonical id.
func (u *User) HasOriginalID(originalID string) bool {
	for i := range u.Songs {
		if u.Songs[i].OriginalID == originalID {
			return true
		}
	}
	return false
}

// UserService represents a service for managing users and their song lists.
type UserService interface {
	// FindUserByUsername returns a user, or nil if no user matches.
	FindUserByUsername(ctx context.Context, username string) (*User, error)

	// FindOrCreateUserByUsername returns an existing user or creates one
	// with an empty song list. Reports whether the user already existed.
	FindOrCreateUserByUsername(ctx context.Context, username string) (user *User, existing bool, err error)

	// SetPassword stores the user's plaintext password.
	SetPassword(ctx context.Context, username, password string) error

	// Authenticate verifies a username/password pair.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// AttachSong appends a song to the user's list. The duplicate and
	// song-limit checks run against fresh state inside the same write
	// transaction as the append, so two concurrent downloads cannot both
	// attach the same song or push the list past the limit.
	AttachSong(ctx context.Context, username string, song *Song) error

	// RemoveSong detaches a song from the user's list and returns the
	// remaining count. The audio artifact is left in place.
	RemoveSong(ctx context.Context, username, songID string) (remaining int, err error)

	// AppendMetric records a study metric. Unknown users are ignored.
	AppendMetric(ctx context.Context, username string, metric *Metric) error
}
