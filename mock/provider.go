package mock

import (
	"context"
	"io"

	"tuneauth"
)

var _ tuneauth.MediaProvider = &MediaProvider{}

type MediaProvider struct {
	SearchFn   func(ctx context.Context, query string) (*tuneauth.MediaInfo, error)
	DownloadFn func(ctx context.Context, url string) (io.ReadCloser, error)
}

func (p *MediaProvider) Search(ctx context.Context, query string) (*tuneauth.MediaInfo, error) {
	return p.SearchFn(ctx, query)
}

func (p *MediaProvider) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	return p.DownloadFn(ctx, url)
}
