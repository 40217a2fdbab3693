package tuneauth

import (
	"context"
	"io"
)

// SnippetLength is the length of a verification stimulus in seconds.
const SnippetLength = 1

// SnippetStreamer produces a bounded slice of an audio artifact,
// transcoded to a broadly playable streaming format.
type SnippetStreamer interface {
	// StreamSnippet returns length seconds of audio starting at start
	// seconds into the artifact at path. The caller must close the
	// returned reader.
	StreamSnippet(ctx context.Context, path string, start, length int) (io.ReadCloser, error)
}
