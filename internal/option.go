package internal

import (
	"log/slog"

	"github.com/starford/lifenote/internal/docstore"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	logger *slog.Logger
	store  docstore.Store
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the default JSON logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithStore makes the application use store instead of opening the one
// named in the configuration. The caller keeps ownership of store.
func WithStore(store docstore.Store) Option {
	return func(a *application) {
		a.store = store
	}
}
