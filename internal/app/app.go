package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/events"
	"github.com/vk/flowgrid/internal/unit"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx    context.Context
	outW   io.Writer
	inR    io.Reader
	logger *slog.Logger
	config *Config

	loader    unit.Loader
	host      unit.Host
	observers []events.Observer

	httpServer *http.Server
}

// Option customizes an App, mostly for tests.
type Option func(*App)

// WithHost replaces the Extism sandbox host.
func WithHost(h unit.Host) Option {
	return func(a *App) { a.host = h }
}

// WithLoader replaces the configured unit loader.
func WithLoader(l unit.Loader) Option {
	return func(a *App) { a.loader = l }
}

// WithObserver adds an event observer next to the log observer.
func WithObserver(o events.Observer) Option {
	return func(a *App) { a.observers = append(a.observers, o) }
}

// WithStdin sets the reader used when the state path is "-".
func WithStdin(r io.Reader) Option {
	return func(a *App) { a.inR = r }
}

// NewApp is the constructor for the main application. Logs go to logW; the
// resulting state and descriptors go to outW unless an output path is set.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.Engine.LogLevel, cfg.Engine.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		ctx:    ctx,
		outW:   outW,
		logger: logger,
		config: cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
