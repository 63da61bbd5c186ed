// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/lifenote/internal/docstore"
	"github.com/starford/lifenote/internal/noteservice"
	"github.com/starford/lifenote/internal/sse"
)

// Run starts the HTTP server with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		// Initialize structured JSON logger.
		logger = NewLogger(os.Stdout, cfg.App.LogLevel, true)
		slog.SetDefault(logger)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("store_path", cfg.Store.Path),
		slog.String("timezone", cfg.App.Timezone),
		slog.String("log_level", cfg.App.LogLevel.String()))

	clock, err := NewClock(cfg)
	if err != nil {
		return fmt.Errorf("init clock: %w", err)
	}

	store := app.store
	if store == nil {
		store, err = docstore.Open(cfg.Store.Driver, cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		defer store.Close()
	}

	// SSE broker.
	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	svc := newService(store, cfg, clock, logger, noteservice.OnCreated(broker.PublishNoteCreated))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           NewHTTPHandler(svc, clock.Year, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)
	defer stopWatch()

	// Notes dropped into an fs store by other writers are broadcast too.
	if fsStore, ok := store.(*docstore.FS); ok {
		g.Go(func() error {
			err := fsStore.Watch(watchCtx, svc.Collection(), logger, func(_ string, doc docstore.Document) {
				note, err := noteservice.DecodeNote(doc)
				if err != nil {
					logger.Warn("watcher: skipping document", slog.String("id", doc.ID), slog.String("error", err.Error()))
					return
				}
				broker.PublishNoteCreated(note)
			})
			if err != nil {
				logger.Error("watcher: stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		stopWatch()
		// Event streams never go idle on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
