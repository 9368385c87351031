// Package app wires the core, store, auth, preview and transport layers.
package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gipsyblues/echoplexus/internal/auth"
	"github.com/gipsyblues/echoplexus/internal/chatlog"
	"github.com/gipsyblues/echoplexus/internal/config"
	"github.com/gipsyblues/echoplexus/internal/core"
	"github.com/gipsyblues/echoplexus/internal/preview"
	"github.com/gipsyblues/echoplexus/internal/pubsub"
	"github.com/gipsyblues/echoplexus/internal/store"
	"github.com/gipsyblues/echoplexus/internal/store/memory"
	"github.com/gipsyblues/echoplexus/internal/store/redisstore"
	transporthttp "github.com/gipsyblues/echoplexus/internal/transport/http"
)

// App owns the running pieces of the server.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	bus             pubsub.Bus
	preview         *preview.Service
	log             *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("backend", cfg.Store.Backend).Msg("store initialized")

	var bus pubsub.Bus = pubsub.Noop{}
	if cfg.NATSURL != "" {
		natsBus, err := pubsub.ConnectNATS(cfg.NATSURL, "echoplexus")
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("init event mirror: %w", err)
		}
		bus = natsBus
		logger.Info().Str("url", cfg.NATSURL).Msg("event mirror connected")
	}

	hub := core.NewHub(
		core.NewRegistry(),
		st,
		auth.NewService(st, st),
		chatlog.NewService(st),
		bus,
		cfg.ServerNick,
		logger,
	)

	var previewSvc *preview.Service
	if cfg.Preview.Enabled {
		if err := os.MkdirAll(cfg.Preview.SandboxDir, 0o755); err != nil {
			logger.Warn().Err(err).Str("dir", cfg.Preview.SandboxDir).Msg("failed to create sandbox dir")
		}
		previewSvc = preview.NewService(
			cfg.Preview.Command,
			cfg.Preview.Args,
			cfg.Preview.SandboxDir,
			cfg.URLRoot,
			hub.PostSystemNotice,
			logger,
		)
		hub.SetPreviewer(previewSvc)
		logger.Info().Str("command", cfg.Preview.Command).Msg("link previews enabled")
	}

	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		bus:             bus,
		preview:         previewSvc,
		log:             logger,
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return memory.New(), nil
	case "redis", "":
		return redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup waits for in-flight preview tasks and closes external connections.
func (a *App) cleanup() {
	if a.preview != nil {
		a.preview.Wait()
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close event mirror")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
