package mock

import (
	"context"
	"io"

	"tuneauth"
)

var _ tuneauth.SnippetStreamer = &SnippetStreamer{}

type SnippetStreamer struct {
	StreamSnippetFn func(ctx context.Context, path string, start, length int) (io.ReadCloser, error)
}

func (s *SnippetStreamer) StreamSnippet(ctx context.Context, path string, start, length int) (io.ReadCloser, error) {
	return s.StreamSnippetFn(ctx, path, start, length)
}
