package tuneauth

import (
	"context"
	"io"
	"regexp"
)

// File errors.
const (
	ErrFilenameRequired = Error("filename required")
	ErrInvalidFilename  = Error("invalid filename")
	ErrArtifactNotFound = Error("audio not found")
)

// File represents an audio artifact in the content store.
type File struct {
	Name string `json:"name"`
	Path string `json:"-"` // on-disk location, used by the snippet streamer
	Size int64  `json:"size"`
}

// FileService represents a service for managing audio artifacts. The store
// is append-only: artifact names include a random suffix, so concurrent
// writes never collide and nothing is ever overwritten.
type FileService interface {
	FindFileByName(ctx context.Context, name string) (*File, io.ReadCloser, error)
	CreateFile(ctx context.Context, f *File, r io.Reader) error
}

// IsValidFilename returns true if the name is in a valid format.
func IsValidFilename(name string) bool {
	return filenameRegex.MatchString(name)
}

var filenameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*(\.[a-z0-9]+)?$`)
