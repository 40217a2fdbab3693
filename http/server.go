package http

import (
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"

	"tuneauth"
)

// Server represents an HTTP server.
type Server struct {
	ln      net.Listener
	group   errgroup.Group
	metrics *serverMetrics

	// Services
	UserService        tuneauth.UserService
	FileService        tuneauth.FileService
	SongDownloader     *tuneauth.SongDownloader
	ChallengeGenerator *tuneauth.ChallengeGenerator
	SnippetStreamer    tuneauth.SnippetStreamer

	// Server options.
	Addr        string // bind address
	Host        string // external hostname
	Autocert    bool   // ACME autocert
	Recoverable bool   // panic recovery
	DistPath    string // built frontend, optional

	Logger zerolog.Logger
}

// NewServer returns a new instance of Server.
func NewServer() *Server {
	return &Server{
		Recoverable: true,
		Logger:      zerolog.Nop(),
		metrics:     newServerMetrics(),
	}
}

// Open opens the server.
func (s *Server) Open() error {
	// Open listener on specified bind address.
	// Use HTTPS port if autocert is enabled.
	if s.Autocert {
		s.ln = autocert.NewListener(s.Host)
	} else {
		ln, err := net.Listen("tcp", s.Addr)
		if err != nil {
			return err
		}
		s.ln = ln
	}

	// Start HTTP server.
	ln := s.ln
	s.group.Go(func() error {
		if err := http.Serve(ln, s.router()); err != nil && !isClosedErr(err) {
			return err
		}
		return nil
	})

	return nil
}

// Close closes the socket and waits for the serve loop to stop.
func (s *Server) Close() error {
	if s.ln != nil {
		s.ln.Close()
	}
	return s.group.Wait()
}

// URL returns a base URL string with the scheme and host.
// This is available after the server has been opened.
func (s *Server) URL() url.URL {
	if s.ln == nil {
		return url.URL{}
	}

	if s.Autocert {
		return url.URL{Scheme: "https", Host: s.Host}
	}
	return url.URL{Scheme: "http", Host: s.ln.Addr().String()}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	// Attach router middleware.
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.Logger))
	r.Use(s.metrics.Middleware)
	if s.Recoverable {
		r.Use(middleware.Recoverer)
	}

	r.Get("/ping", s.handlePing)
	r.Method("GET", "/metrics", s.metrics.Handler())

	// Create API routes.
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/metrics", s.handlePostMetric)
	r.Mount("/api/users", s.userHandler())
	r.Mount("/api/challenge", s.challengeHandler())
	r.Mount("/api/snippet", s.snippetHandler())

	// Audio artifacts.
	r.Mount("/assets", s.fileHandler())

	// Built frontend, with index fallback for client-side routing.
	if s.DistPath != "" {
		r.NotFound(s.handleStatic)
	}

	return r
}

// handlePing verifies the server is up and returns a success.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (s *Server) userHandler() *userHandler {
	h := newUserHandler()
	h.userService = s.UserService
	h.songDownloader = s.SongDownloader
	return h
}

func (s *Server) challengeHandler() *challengeHandler {
	h := newChallengeHandler()
	h.userService = s.UserService
	h.challengeGenerator = s.ChallengeGenerator
	return h
}

func (s *Server) snippetHandler() *snippetHandler {
	h := newSnippetHandler()
	h.fileService = s.FileService
	h.snippetStreamer = s.SnippetStreamer
	return h
}

func (s *Server) fileHandler() *fileHandler {
	h := newFileHandler()
	h.fileService = s.FileService
	return h
}

// isClosedErr returns true if the error came from serving on a closed
// listener during shutdown.
func isClosedErr(err error) bool {
	return errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed)
}
