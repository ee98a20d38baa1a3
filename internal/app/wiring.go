package app

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/engine"
	"github.com/vk/flowgrid/internal/events"
	"github.com/vk/flowgrid/internal/scheduler"
	"github.com/vk/flowgrid/internal/unit"
)

// buildLoader assembles the unit loader chain: local files, "s3://" when an
// endpoint is configured, and an LRU cache in front of both.
func (a *App) buildLoader() (unit.Loader, error) {
	if a.loader != nil {
		return a.loader, nil
	}
	cfg := a.config.Engine

	mux := &unit.MuxLoader{
		Schemes:  map[string]unit.Loader{},
		Fallback: unit.FileLoader{Dir: cfg.UnitsDir},
	}
	if cfg.S3.Endpoint != "" {
		s3, err := unit.NewS3Loader(unit.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		mux.Schemes["s3"] = s3
		a.logger.Debug("S3 unit sources enabled.", "endpoint", cfg.S3.Endpoint)
	}

	if cfg.CacheSize <= 0 {
		return mux, nil
	}
	return unit.NewCachingLoader(mux, cfg.CacheSize)
}

func (a *App) buildHost() unit.Host {
	if a.host != nil {
		return a.host
	}
	return &unit.ExtismHost{
		Timeout:    a.config.Engine.InvokeTimeout,
		EnableWasi: a.config.Engine.EnableWasi,
	}
}

// buildObserver always logs events and, when configured, streams them to a
// socket.io server. The returned func releases the connection.
func (a *App) buildObserver(ctx context.Context) (events.Observer, func()) {
	logger := ctxlog.FromContext(ctx)
	observers := append([]events.Observer{&events.LogObserver{Logger: a.logger}}, a.observers...)
	cleanup := func() {}

	if url := a.config.Engine.EventsURL; url != "" {
		sink, err := events.DialSocketIO(ctx, url, a.config.Engine.EventsNamespace)
		if err != nil {
			logger.Warn("Event sink unavailable, continuing without it.", "url", url, "error", err)
		} else {
			observers = append(observers, sink)
			cleanup = sink.Close
		}
	}
	return events.Multi(observers...), cleanup
}

func (a *App) buildEngine(ctx context.Context) (*engine.Engine, func(), error) {
	loader, err := a.buildLoader()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up unit loader: %w", err)
	}
	order, err := scheduler.ParseOrder(a.config.Engine.Order)
	if err != nil {
		return nil, nil, err
	}
	observer, cleanup := a.buildObserver(ctx)

	eng := engine.New(unit.NewInvoker(loader, a.buildHost()), engine.Options{
		Order:             order,
		MaxFiringsPerNode: a.config.Engine.MaxFiringsPerNode,
		Observer:          observer,
	})
	return eng, cleanup, nil
}
