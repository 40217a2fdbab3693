package tuneauth

import (
	"context"
	"io"
)

// MediaInfo holds the provider metadata for a single search result.
type MediaInfo struct {
	ID         string // provider's canonical video id
	Title      string
	WebpageURL string
	Duration   int // seconds
}

// MediaProvider represents an external search-and-download capability.
// The concrete implementation shells out to yt-dlp; tests substitute a
// fake returning scripted metadata and audio.
type MediaProvider interface {
	// Search issues a single-result search and returns its metadata,
	// or nil if nothing was found. The caller bounds the search with
	// the context deadline.
	Search(ctx context.Context, query string) (*MediaInfo, error)

	// Download fetches the smallest audio-only stream for the url,
	// transcoded to a high-compression codec, and returns a reader over
	// the result. The caller must close the reader.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
