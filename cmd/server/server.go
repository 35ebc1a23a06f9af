package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"impostor"
	"impostor/internal/advisor"
	"impostor/internal/config"
	"impostor/internal/handlers"
	localMiddleware "impostor/internal/middleware"
	"impostor/internal/profile"
	"impostor/internal/store"
)

// visitorIdle is how long a client may stay silent before its rate limiter is dropped
const visitorIdle = 10 * time.Minute

// App holds the wired server components
type App struct {
	cfg     *config.ServerConfig
	log     *zap.Logger
	store   *store.MemoryStore
	limiter *localMiddleware.RateLimiter
	handler http.Handler
}

// SetupServer wires the advisor, stores and routes for cfg
func SetupServer(ctx context.Context, cfg *config.ServerConfig, logger *zap.Logger, opts *handlers.RouterOptions) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts == nil {
		opts = &handlers.RouterOptions{}
	}

	adv, err := advisor.New(ctx, cfg.Advisor, logger.Named("advisor"))
	if err != nil {
		return nil, fmt.Errorf("creating advisor: %w", err)
	}

	profiles := profile.NewStore(cfg.Profiles, logger)
	bus := handlers.NewEventBus()
	gameStore := store.NewMemoryStore(cfg, handlers.NewControllerFactory(cfg, adv, profiles, bus, logger), logger)
	h := handlers.New(gameStore, bus, cfg, profiles, logger)

	if opts.RateLimiter == nil {
		opts.RateLimiter = localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst, logger.Named("ratelimit"))
	}
	if opts.StaticFS == nil {
		opts.StaticFS = impostor.StaticFS()
	}

	return &App{
		cfg:     cfg,
		log:     logger,
		store:   gameStore,
		limiter: opts.RateLimiter,
		handler: handlers.SetupRouter(h, cfg, opts),
	}, nil
}

// Handler returns the root HTTP handler
func (a *App) Handler() http.Handler {
	return a.handler
}

// Serve runs the HTTP server, the session sweeper and the rate limiter cleanup
// until ctx is cancelled, then shuts the server down gracefully
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:      a.handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout, // 0 for SSE support
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.store.Run(gctx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(visitorIdle)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := a.limiter.Cleanup(visitorIdle); n > 0 {
					a.log.Debug("rate limiter pruned", zap.Int("visitors", n))
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})

	return g.Wait()
}
