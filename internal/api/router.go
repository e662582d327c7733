package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"colhash/internal/middleware"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Handler *Handler
	// MountUI registers the browser UI under /ui when non-nil. The UI
	// applies its own authentication.
	MountUI   func(r chi.Router)
	Validator middleware.JWTValidator
	RateLimit middleware.RateLimitConfig
	// CORSAllowedOrigins defaults to all origins when empty.
	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

// NewRouter builds the HTTP router: /health is public, /v1 sits behind the
// rate limiter and bearer auth, /ui behind the rate limiter. ctx bounds
// background work such as limiter cleanup.
func NewRouter(ctx context.Context, opts RouterOptions) http.Handler {
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, "NotFound", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	r.Get("/health", opts.Handler.Health)

	r.Group(func(r chi.Router) {
		if opts.RateLimit.RequestsPerSecond > 0 {
			r.Use(middleware.RateLimiter(ctx, opts.RateLimit))
		}
		r.With(middleware.Auth(opts.Validator, opts.Logger)).Route("/v1", opts.Handler.Routes)
		if opts.MountUI != nil {
			r.Route("/ui", opts.MountUI)
		}
	})

	return r
}
