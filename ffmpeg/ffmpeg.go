// Package ffmpeg implements the snippet streamer by shelling out to the
// ffmpeg command line tool.
package ffmpeg

import (
	"context"
	"io"
	"os/exec"
	"strconv"

	"tuneauth"
)

// Ensure streamer implements interface.
var _ tuneauth.SnippetStreamer = &Streamer{}

// Streamer transcodes bounded slices of audio artifacts to mp3.
type Streamer struct {
	// Binary is the ffmpeg executable name or path.
	Binary string
}

// NewStreamer returns a new instance of Streamer.
func NewStreamer() *Streamer {
	return &Streamer{Binary: "ffmpeg"}
}

// StreamSnippet returns length seconds of mp3 audio starting at start
// seconds into the artifact at path. The slice is produced as a single
// forward-only stream over ffmpeg's stdout; closing the reader reaps the
// process.
func (s *Streamer) StreamSnippet(ctx context.Context, path string, start, length int) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, s.binary(), snippetArgs(path, start, length)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &snippetReader{rc: stdout, cmd: cmd}, nil
}

func (s *Streamer) binary() string {
	if s.Binary != "" {
		return s.Binary
	}
	return "ffmpeg"
}

// snippetArgs builds the transcode invocation. Seeking happens before the
// input is opened so ffmpeg jumps straight to the offset instead of
// decoding its way there.
func snippetArgs(path string, start, length int) []string {
	return []string{
		"-v", "error",
		"-ss", strconv.Itoa(start),
		"-t", strconv.Itoa(length),
		"-i", path,
		"-f", "mp3",
		"pipe:1",
	}
}

// snippetReader wraps ffmpeg's stdout and waits for the process on close.
type snippetReader struct {
	rc  io.ReadCloser
	cmd *exec.Cmd
}

func (r *snippetReader) Read(p []byte) (int, error) { return r.rc.Read(p) }

func (r *snippetReader) Close() error {
	r.rc.Close()
	// The process may already have exited, or may be killed by closing
	// its stdout mid-stream. Either way the wait error is not actionable.
	r.cmd.Wait()
	return nil
}
