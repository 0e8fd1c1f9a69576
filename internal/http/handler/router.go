package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/themanaworld/api/internal/captcha"
	"github.com/themanaworld/api/internal/http/middleware"
	"github.com/themanaworld/api/internal/http/response"
	"github.com/themanaworld/api/internal/ratelimit"
)

// Handlers bundles the endpoint handlers for router construction.
type Handlers struct {
	Session  *SessionHandler
	Identity *IdentityHandler
	Account  *AccountHandler
	Legacy   *LegacyHandler
	Evol     *EvolHandler
}

// NewRouter builds the HTTP surface. Every route sits behind the
// cooldown gate; requesting a session additionally requires a captcha.
func NewRouter(h Handlers, limiter *ratelimit.Limiter, verifier captcha.Verifier, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Cooldown(limiter))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "unknown endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "unknown endpoint")
	})

	r.Route("/api/vault", func(r chi.Router) {
		r.With(middleware.Captcha(verifier, limiter, logger)).Put("/session", h.Session.Request)
		r.Get("/session", h.Session.Confirm)
		r.Delete("/session", h.Session.Logout)

		r.Get("/identity", h.Identity.List)
		r.Post("/identity", h.Identity.Add)

		r.Get("/account", h.Account.Settings)
		r.Patch("/account", h.Account.Update)

		r.Route("/legacy", func(r chi.Router) {
			r.Get("/account", h.Legacy.List)
			r.Post("/account", h.Legacy.Claim)
			r.Patch("/account", h.Legacy.Migrate)
		})

		r.Route("/evol", func(r chi.Router) {
			r.Get("/account", h.Evol.List)
			r.Post("/account", h.Evol.Create)
			r.Patch("/account", h.Evol.Update)
		})
	})

	return r
}
