// Package router sets up all HTTP routes and middleware chains for the
// Gazette server. It organizes routes into the public read API, the
// authentication endpoints, and the admin API with its middleware stack.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gazette/internal/handlers"
	"gazette/internal/middleware"
	"gazette/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. loginLimiter guards the credential
// endpoints; the caller owns its lifecycle.
func New(sessionStore *session.Store, loginLimiter *middleware.RateLimiter, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Authentication endpoints. Login and 2FA verification are
	// rate-limited by client IP; 2FA routes need a session but not a
	// completed second factor.
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.CSRF)

		r.With(loginLimiter.Middleware).Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/2fa/setup", auth.TwoFASetup)
			r.With(loginLimiter.Middleware).Post("/2fa/verify", auth.TwoFAVerify)
		})

		r.With(middleware.RequireAuth, middleware.Require2FA).Get("/me", auth.Me)
	})

	// Admin API — requires a fully authenticated session and CSRF
	// protection on every mutation.
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)

		// Page tree
		r.Route("/pages", func(r chi.Router) {
			r.Get("/", admin.PagesList)
			r.Post("/", admin.PageCreate)
			r.Get("/{id}", admin.PageGet)
			r.Put("/{id}", admin.PageUpdate)
			r.Delete("/{id}", admin.PageDelete)
			r.Post("/{id}/publish", admin.PagePublish)
			r.Post("/{id}/unpublish", admin.PageUnpublish)
		})

		// Category taxonomy
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", admin.CategoriesList)
			r.Post("/", admin.CategoryCreate)
			r.Get("/{id}", admin.CategoryGet)
			r.Put("/{id}", admin.CategoryUpdate)
			r.Delete("/{id}", admin.CategoryDelete)
		})

		// Tags
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", admin.TagsList)
			r.Delete("/{id}", admin.TagDelete)
		})

		// User management — admin only
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", admin.UsersList)
			r.Post("/{id}/reset-2fa", admin.UserResetTwoFA)
			r.Delete("/{id}", admin.UserDelete)
		})

		// Site settings — admin only
		r.Route("/sites", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", admin.SitesList)
			r.Post("/", admin.SiteCreate)
			r.Route("/{siteID}", func(r chi.Router) {
				r.Get("/analytics", admin.AnalyticsGet)
				r.Put("/analytics", admin.AnalyticsUpdate)
				r.Get("/config", admin.ConfigGet)
				r.Put("/config", admin.ConfigUpdate)
			})
		})
	})

	// Public read API. Static segments are registered before the {slug}
	// wildcard so chi matches them first.
	r.Route("/api/blog/{blog}", func(r chi.Router) {
		r.Get("/", public.Listing)
		r.Get("/categories", public.Categories)
		r.Get("/tags", public.Tags)
		r.Get("/year/{year}", public.Listing)
		r.Get("/author/{authorID}", public.Listing)
		r.Get("/{slug}", public.Entry)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
