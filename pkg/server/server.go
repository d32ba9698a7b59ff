package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/pipeline"
	"github.com/matzehuels/districtviz/pkg/search"
)

const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 30 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr       string
	Source     district.Source
	SourceName string

	// Runner executes chart renders; nil uses an uncached runner.
	Runner *pipeline.Runner

	// Addresses answers the address half of /search; nil disables it.
	Addresses search.AddressSource

	// Chart holds defaults for chart requests (unit, numeral format,
	// palette, width, height, margin). Query parameters override them.
	Chart pipeline.Options

	RequestTimeout time.Duration
	Logger         *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	log    *log.Logger
	router chi.Router
}

// New validates cfg and builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "server needs a data source")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}

	s := &Server{cfg: cfg, runner: runner, log: cfg.Logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(logRequests(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/districts", s.handleDistricts)
	r.Get("/indicators/{column}", s.handleIndicator)
	r.Get("/charts/{chart}", s.handleChart)
	r.Get("/search", s.handleSearch)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) load(ctx context.Context) (district.Dataset, error) {
	return s.runner.Load(ctx, pipeline.Options{
		Source:     s.cfg.Source,
		SourceName: s.cfg.SourceName,
		Logger:     s.log,
	})
}
