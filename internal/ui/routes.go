package ui

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"colhash/internal/middleware"
)

// MountRoutes registers the editor and sign-in routes on r, which the
// caller mounts under /ui.
func MountRoutes(r chi.Router, h *Handler, logger *slog.Logger) {
	r.Use(h.EnsureCSRFToken)
	r.Use(h.RequireCSRF)

	r.Get("/login", h.LoginPage)
	r.Post("/login", h.LoginSubmit)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.CookieHeaderBridge)
		r.Use(middleware.AuthWith(h.Validator, logger, RedirectToLogin))
		r.Get("/", h.EditorPage)
		r.Post("/run", h.EditorRun)
	})
}
