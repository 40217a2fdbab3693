package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"tuneauth"
	"tuneauth/bolt"
	"tuneauth/ffmpeg"
	"tuneauth/http"
	"tuneauth/local"
	"tuneauth/ytdlp"
)

func main() {
	m := NewMain()

	// Load optional .env before anything reads the environment.
	godotenv.Load()

	// Parse command line flags.
	if err := m.ParseFlags(os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(m.Stderr, err)
		os.Exit(1)
	}

	// Load configuration.
	if err := m.LoadConfig(); err != nil {
		fmt.Fprintln(m.Stderr, err)
		os.Exit(1)
	}

	// Execute program.
	if err := m.Run(); err != nil {
		fmt.Fprintln(m.Stderr, err)
		os.Exit(1)
	}

	// Shutdown on SIGINT (CTRL-C).
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	fmt.Fprintln(m.Stdout, "received interrupt, shutting down...")

	if err := m.Close(); err != nil {
		fmt.Fprintln(m.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the main program execution.
type Main struct {
	ConfigPath string
	Config     Config

	// Input/output streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	closeFn func() error
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{
		ConfigPath: DefaultConfigPath,
		Config:     DefaultConfig(),

		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,

		closeFn: func() error { return nil },
	}
}

// Close cleans up the program.
func (m *Main) Close() error { return m.closeFn() }

// Usage returns the usage message.
func (m *Main) Usage() string {
	return strings.TrimSpace(`
usage: tuneauth [flags]

The daemon process for the music-memory authentication study.

The following flags are available:

	-config PATH
		Specifies the configuration file to read.
		Defaults to ~/.tuneauth/config

`)
}

// ParseFlags parses the command line flags.
func (m *Main) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("tuneauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&m.ConfigPath, "config", "", "config file")
	return fs.Parse(args)
}

// LoadConfig parses the configuration file.
func (m *Main) LoadConfig() error {
	// Default configuration path if not specified.
	path := m.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	// Interpolate path.
	if err := InterpolatePaths(&path); err != nil {
		return err
	}

	// Read configuration file.
	if _, err := toml.DecodeFile(path, &m.Config); os.IsNotExist(err) {
		if m.ConfigPath != "" {
			return err
		}
	} else if err != nil {
		return err
	}
	return nil
}

// Run executes the program.
func (m *Main) Run() error {
	// Interpolate config paths.
	dbPath := m.Config.Database.Path
	filePath := m.Config.File.Path
	if err := InterpolatePaths(&dbPath, &filePath); err != nil {
		return err
	}

	// Initialize logging.
	logger := newLogger(m.Config.Log, m.Stdout)

	// Initialize artifact store.
	fileService := local.NewFileService()
	fileService.Path = filePath
	logger.Info().Str("path", m.Config.File.Path).Msg("artifact storage")

	// Initialize yt-dlp client.
	provider := ytdlp.NewClient()
	provider.Binary = m.Config.YTDLP.Binary
	provider.Proxy = m.Config.YTDLP.Proxy
	provider.Logger = logger

	// Initialize ffmpeg streamer.
	streamer := ffmpeg.NewStreamer()
	if m.Config.FFmpeg.Binary != "" {
		streamer.Binary = m.Config.FFmpeg.Binary
	}

	// Open database.
	db := bolt.NewDB()
	db.Path = dbPath
	if err := db.Open(); err != nil {
		return err
	}
	logger.Info().Str("path", m.Config.Database.Path).Msg("database initialized")

	// Instantiate bolt services.
	userService := bolt.NewUserService(db)

	// Assemble the acquisition pipeline.
	songDownloader := tuneauth.NewSongDownloader()
	songDownloader.UserService = userService
	songDownloader.FileService = fileService
	songDownloader.Provider = provider
	songDownloader.Logger = logger
	if m.Config.YTDLP.SearchTimeout > 0 {
		songDownloader.SearchTimeout = time.Duration(m.Config.YTDLP.SearchTimeout) * time.Second
	}

	// Initialize HTTP server.
	httpServer := http.NewServer()
	httpServer.Addr = m.Config.HTTP.Addr
	httpServer.Host = m.Config.HTTP.Host
	httpServer.Autocert = m.Config.HTTP.Autocert
	httpServer.DistPath = m.Config.HTTP.DistPath
	httpServer.Logger = logger

	httpServer.UserService = userService
	httpServer.FileService = fileService
	httpServer.SongDownloader = songDownloader
	httpServer.ChallengeGenerator = tuneauth.NewChallengeGenerator()
	httpServer.SnippetStreamer = streamer

	// Open HTTP server.
	if err := httpServer.Open(); err != nil {
		return err
	}
	u := httpServer.URL()
	logger.Info().Stringer("url", &u).Msg("http listening")

	// Assign close function.
	m.closeFn = func() error {
		err := httpServer.Close()
		db.Close()
		return err
	}

	return nil
}

// newLogger builds the root logger from config. Text format uses the
// console writer for development; anything else logs JSON.
func newLogger(c LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}

	if c.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// DefaultConfigPath is the default configuration path.
const DefaultConfigPath = "~/.tuneauth/config"

// Config represents a configuration file.
type Config struct {
	Database struct {
		Path string `toml:"path"`
	} `toml:"database"`

	File struct {
		Path string `toml:"path"`
	} `toml:"file"`

	HTTP struct {
		Addr     string `toml:"addr"`
		Host     string `toml:"host"`
		Autocert bool   `toml:"autocert"`
		DistPath string `toml:"dist-path"`
	} `toml:"http"`

	Log LogConfig `toml:"log"`

	YTDLP struct {
		Binary        string `toml:"binary"`
		Proxy         string `toml:"proxy"`
		SearchTimeout int    `toml:"search-timeout"` // seconds
	} `toml:"yt-dlp"`

	FFmpeg struct {
		Binary string `toml:"binary"`
	} `toml:"ffmpeg"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns a configuration with default settings.
func DefaultConfig() Config {
	var c Config
	c.Database.Path = "~/.tuneauth/db"
	c.File.Path = "~/.tuneauth/assets"
	c.HTTP.Addr = ":3001"
	c.YTDLP.Binary = "yt-dlp"
	return c
}

// InterpolatePaths replaces the tilde prefix with the user's home directory.
func InterpolatePaths(a ...*string) error {
	for _, s := range a {
		if !strings.HasPrefix(*s, "~/") {
			continue
		}

		u, err := user.Current()
		if err != nil {
			return err
		} else if u.HomeDir == "" {
			return errors.New("home directory not found")
		}
		*s = filepath.Join(u.HomeDir, strings.TrimPrefix(*s, "~/"))
	}
	return nil
}
