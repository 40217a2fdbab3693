package local

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"tuneauth"
)

// FileService represents a service for serving audio artifacts from the
// local filesystem.
type FileService struct {
	Path string
}

// NewFileService returns a new instance of FileService.
func NewFileService() *FileService {
	return &FileService{}
}

// FindFileByName returns a file and a reader to its contents.
// The reader must be closed by the caller.
func (s *FileService) FindFileByName(ctx context.Context, name string) (*tuneauth.File, io.ReadCloser, error) {
	if name == "" {
		return nil, nil, tuneauth.ErrFilenameRequired
	} else if !tuneauth.IsValidFilename(name) {
		return nil, nil, tuneauth.ErrInvalidFilename
	}

	// Stat file.
	path := filepath.Join(s.Path, name)
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	} else if err != nil {
		return nil, nil, err
	}

	// Open local file.
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	} else if err != nil {
		return nil, nil, err
	}

	// Generate file object.
	f := &tuneauth.File{Name: name, Path: path, Size: fi.Size()}

	return f, file, nil
}

// CreateFile creates a new file with the contents of r. Artifact names
// carry a random suffix so an existing file is never overwritten.
func (s *FileService) CreateFile(ctx context.Context, f *tuneauth.File, r io.Reader) error {
	if f.Name == "" {
		return tuneauth.ErrFilenameRequired
	} else if !tuneauth.IsValidFilename(f.Name) {
		return tuneauth.ErrInvalidFilename
	}

	// Ensure parent path exists.
	if err := os.MkdirAll(s.Path, 0777); err != nil {
		return err
	}

	// Create file inside directory.
	path := filepath.Join(s.Path, f.Name)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return err
	}
	defer file.Close()

	// Copy contents.
	if _, err := io.Copy(file, r); err != nil {
		os.Remove(file.Name())
		return err
	}

	// Close file handle.
	if err := file.Close(); err != nil {
		return err
	}

	// Read size.
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	f.Path = path
	f.Size = fi.Size()

	return nil
}
