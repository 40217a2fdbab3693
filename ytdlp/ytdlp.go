// Package ytdlp implements the media provider by shelling out to the
// yt-dlp command line tool.
package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"tuneauth"
)

// DefaultUserAgent is a desktop browser user agent. Some sources serve
// restricted or degraded responses to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Ensure client implements interface.
var _ tuneauth.MediaProvider = &Client{}

// Client represents a media provider backed by the yt-dlp binary.
type Client struct {
	// Binary is the yt-dlp executable name or path.
	Binary string

	// Proxy, if set, is passed through to yt-dlp.
	Proxy string

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	Logger zerolog.Logger
}

// NewClient returns a new instance of Client.
func NewClient() *Client {
	return &Client{
		Binary: "yt-dlp",
		Logger: zerolog.Nop(),
	}
}

// Search issues a single-result search and returns its metadata, or nil
// if nothing was found.
func (c *Client) Search(ctx context.Context, query string) (*tuneauth.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, c.binary(), c.searchArgs(query)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.Logger.Debug().Str("query", query).Msg("yt-dlp search")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp search: %w: %s", err, lastLine(stderr.String()))
	}

	return parseMediaInfo(stdout.Bytes())
}

// Download fetches the smallest audio-only stream for url, transcoded to
// opus at maximum compression, and returns a reader over the result. The
// temporary download directory is removed when the reader is closed.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	dir, err := os.MkdirTemp("", "tuneauth-ytdlp-")
	if err != nil {
		return nil, err
	}
	out := filepath.Join(dir, "audio.opus")

	cmd := exec.CommandContext(ctx, c.binary(), c.downloadArgs(url, out)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.Logger.Debug().Str("url", url).Msg("yt-dlp download")
	if err := cmd.Run(); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("yt-dlp download: %w: %s", err, lastLine(stderr.String()))
	}

	f, err := os.Open(out)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return &tempFile{File: f, dir: dir}, nil
}

func (c *Client) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return "yt-dlp"
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

func (c *Client) searchArgs(query string) []string {
	args := []string{
		"ytsearch1:" + query,
		"--dump-json",
		"--no-playlist",
		"--skip-download",
		"--no-warnings",
		"--user-agent", c.userAgent(),
	}
	if c.Proxy != "" {
		args = append(args, "--proxy", c.Proxy)
	}
	return args
}

func (c *Client) downloadArgs(url, output string) []string {
	args := []string{
		url,
		"--format", "worstaudio", // smallest source stream
		"--extract-audio",
		"--audio-format", "opus",
		"--audio-quality", "9", // maximum compression
		"--output", output,
		"--no-playlist",
		"--no-part",
		"--no-mtime",
		"--concurrent-fragments", "16",
		"--no-warnings",
		"--user-agent", c.userAgent(),
	}
	if c.Proxy != "" {
		args = append(args, "--proxy", c.Proxy)
	}
	return args
}

// mediaJSON mirrors the fields of yt-dlp's --dump-json output that the
// pipeline needs. A search result may nest the hit in an entries array.
type mediaJSON struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	WebpageURL string      `json:"webpage_url"`
	Duration   float64     `json:"duration"`
	Entries    []mediaJSON `json:"entries"`
}

// parseMediaInfo decodes a --dump-json document. Returns nil if the
// document holds no entry.
func parseMediaInfo(data []byte) (*tuneauth.MediaInfo, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc mediaJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yt-dlp metadata: %w", err)
	}
	if len(doc.Entries) > 0 {
		doc = doc.Entries[0]
	}
	if doc.ID == "" {
		return nil, nil
	}

	return &tuneauth.MediaInfo{
		ID:         doc.ID,
		Title:      doc.Title,
		WebpageURL: doc.WebpageURL,
		Duration:   int(doc.Duration),
	}, nil
}

// lastLine returns the final non-empty line of s, which for yt-dlp is
// where the actual error message lands.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

// tempFile is a file handle that removes its parent directory on close.
type tempFile struct {
	*os.File
	dir string
}

func (f *tempFile) Close() error {
	err := f.File.Close()
	os.RemoveAll(f.dir)
	return err
}
