package mock

import (
	"context"
	"io"

	"tuneauth"
)

var _ tuneauth.FileService = &FileService{}

type FileService struct {
	FindFileByNameFn func(ctx context.Context, name string) (*tuneauth.File, io.ReadCloser, error)
	CreateFileFn     func(ctx context.Context, f *tuneauth.File, r io.Reader) error
}

func (s *FileService) FindFileByName(ctx context.Context, name string) (*tuneauth.File, io.ReadCloser, error) {
	return s.FindFileByNameFn(ctx, name)
}

func (s *FileService) CreateFile(ctx context.Context, f *tuneauth.File, r io.Reader) error {
	return s.CreateFileFn(ctx, f, r)
}
