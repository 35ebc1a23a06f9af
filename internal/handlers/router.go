package handlers

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"impostor/internal/config"
	localMiddleware "impostor/internal/middleware"
)

// RouterOptions allows customization of router setup for tests
type RouterOptions struct {
	DisableRateLimiting  bool
	DisableRequestLogger bool
	CustomMiddleware     []func(http.Handler) http.Handler

	// RateLimiter is shared with the caller so it can prune idle visitors.
	// One is created from the config when nil.
	RateLimiter *localMiddleware.RateLimiter

	// StaticFS serves /static/*; StaticDir is used when it is nil
	StaticFS  fs.FS
	StaticDir string // defaults to "static"
}

// SetupRouter creates the application router with all routes and middleware
func SetupRouter(h *Handler, cfg *config.ServerConfig, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}
	if opts.StaticDir == "" {
		opts.StaticDir = "static"
	}

	r := chi.NewRouter()

	// Chi's built-in middleware (conditionally applied)
	if !opts.DisableRequestLogger {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Our custom middleware
	r.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))
	r.Use(localMiddleware.SecurityHeaders())

	// Rate limiting (conditionally applied)
	if !opts.DisableRateLimiting {
		limiter := opts.RateLimiter
		if limiter == nil {
			limiter = localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst, h.log)
		}
		r.Use(limiter.Middleware())
	}

	for _, mw := range opts.CustomMiddleware {
		r.Use(mw)
	}

	// Static files
	static := http.FileServer(http.Dir(opts.StaticDir))
	if opts.StaticFS != nil {
		static = http.FileServer(http.FS(opts.StaticFS))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", static))

	// Streams stay open for the life of the page, so they skip the request timeout
	r.Get("/sse/game/{code}", ValidateSSERequest(h.StreamGame))
	r.Get("/ws/game/{code}", h.GameSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout(cfg)))

		r.Get("/", h.Home)
		r.Post("/game/new", h.CreateGame)
		r.Get("/game/{code}", h.GamePage)
		r.Post("/game/{code}/start", h.StartGame)
		r.Post("/game/{code}/clue", h.SubmitClue)
		r.Post("/game/{code}/vote", h.CastVote)
		r.Get("/game/{code}/settings", h.SettingsPage)
		r.Post("/game/{code}/settings", h.SaveSettings)
		r.Get("/game/{code}/qr", h.QRCode)
	})

	// Health check endpoints (no auth required)
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

func requestTimeout(cfg *config.ServerConfig) time.Duration {
	if cfg.Server.RequestTimeout > 0 {
		return cfg.Server.RequestTimeout
	}
	return 60 * time.Second
}
