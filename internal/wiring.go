package internal

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/lifenote/internal/api"
	"github.com/starford/lifenote/internal/client"
	"github.com/starford/lifenote/internal/controller"
	"github.com/starford/lifenote/internal/docstore"
	"github.com/starford/lifenote/internal/noteservice"
	"github.com/starford/lifenote/internal/timedetail"
)

// NewLogger builds the application logger. The server logs JSON; interactive
// commands log text to stderr.
func NewLogger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewClock returns the clock notes are stamped with.
func NewClock(cfg *Config) (*timedetail.Clock, error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}
	return timedetail.NewClock(loc), nil
}

// OpenService opens the configured store and returns a note service on top
// of it. The returned close function releases the store.
func OpenService(cfg *Config, logger *slog.Logger, opts ...noteservice.Option) (*noteservice.Service, func() error, error) {
	clock, err := NewClock(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := docstore.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	return newService(store, cfg, clock, logger, opts...), store.Close, nil
}

func newService(store docstore.Store, cfg *Config, clock *timedetail.Clock, logger *slog.Logger, opts ...noteservice.Option) *noteservice.Service {
	base := []noteservice.Option{
		noteservice.WithCollection(cfg.Store.Collection),
		noteservice.WithClock(clock.Now),
		noteservice.WithLogger(logger),
	}
	return noteservice.NewService(store, append(base, opts...)...)
}

// OpenRepository returns the repository interactive commands drive: the HTTP
// client when a server URL is configured, the local store otherwise.
func OpenRepository(cfg *Config, logger *slog.Logger) (controller.Repository, func() error, error) {
	if cfg.Client.Remote() {
		logger.Debug("using remote server", slog.String("server_url", cfg.Client.ServerURL))
		return client.New(cfg.Client.ServerURL, cfg.Client.Timeout), func() error { return nil }, nil
	}
	svc, closeFn, err := OpenService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, closeFn, nil
}

// NewHTTPHandler builds the server's root router: health checks plus the API
// mounted under /api.
func NewHTTPHandler(svc api.NoteService, year func() int, events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(svc, year, events))
	return r
}
