package local_test

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"tuneauth"
	"tuneauth/local"
)

// Ensure file service can create and fetch an artifact.
func TestFileService(t *testing.T) {
	s := NewFileService()
	defer s.MustClose()

	// Create file.
	if err := s.CreateFile(context.Background(), &tuneauth.File{Name: "my-song-0a1b2c3d.opus"}, strings.NewReader("ABC")); err != nil {
		t.Fatal(err)
	}

	// Fetch file & verify.
	if f, rc, err := s.FindFileByName(context.Background(), "my-song-0a1b2c3d.opus"); err != nil {
		t.Fatal(err)
	} else if f.Name != "my-song-0a1b2c3d.opus" {
		t.Fatalf("unexpected name: %q", f.Name)
	} else if f.Size != 3 {
		t.Fatalf("unexpected size: %d", f.Size)
	} else if f.Path == "" {
		t.Fatal("expected on-disk path")
	} else if buf, err := io.ReadAll(rc); err != nil {
		t.Fatal(err)
	} else if string(buf) != "ABC" {
		t.Fatalf("unexpected file data: %q", buf)
	} else if err := rc.Close(); err != nil {
		t.Fatal(err)
	}
}

// Ensure a missing artifact returns nil without an error.
func TestFileService_FindFileByName_NotFound(t *testing.T) {
	s := NewFileService()
	defer s.MustClose()

	if f, _, err := s.FindFileByName(context.Background(), "nope.opus"); err != nil {
		t.Fatal(err)
	} else if f != nil {
		t.Fatalf("expected no file, got %#v", f)
	}
}

// Ensure invalid names are rejected before touching the filesystem.
func TestFileService_InvalidFilename(t *testing.T) {
	s := NewFileService()
	defer s.MustClose()

	if _, _, err := s.FindFileByName(context.Background(), ""); err != tuneauth.ErrFilenameRequired {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := s.FindFileByName(context.Background(), "../etc/passwd"); err != tuneauth.ErrInvalidFilename {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CreateFile(context.Background(), &tuneauth.File{Name: "UPPER.opus"}, strings.NewReader("x")); err != tuneauth.ErrInvalidFilename {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Ensure an existing artifact is never overwritten.
func TestFileService_CreateFile_NoOverwrite(t *testing.T) {
	s := NewFileService()
	defer s.MustClose()

	if err := s.CreateFile(context.Background(), &tuneauth.File{Name: "a.opus"}, strings.NewReader("one")); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateFile(context.Background(), &tuneauth.File{Name: "a.opus"}, strings.NewReader("two")); err == nil {
		t.Fatal("expected error on overwrite")
	}
}

// FileService is a test wrapper for local.FileService.
type FileService struct {
	*local.FileService
}

// NewFileService returns a file service in a temporary directory.
func NewFileService() *FileService {
	path, err := os.MkdirTemp("", "tuneauth-")
	if err != nil {
		panic(err)
	}

	s := &FileService{FileService: local.NewFileService()}
	s.Path = path
	return s
}

// MustClose cleans up the temporary directory used by the service.
func (s *FileService) MustClose() {
	if err := os.RemoveAll(s.Path); err != nil {
		panic(err)
	}
}
