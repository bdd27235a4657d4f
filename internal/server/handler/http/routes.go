package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/zuschusspiloten/leadserver/internal/middleware"
	"github.com/zuschusspiloten/leadserver/internal/session"
)

// NewRouter constructs the HTTP handler serving the public submission API
// and the admin area.
//
// Routes:
//
//	POST /api/submit                     → submit.Submit
//	POST /api/submit.php                 → submit.Submit (legacy frontend path)
//	GET  /admin/login                    → admin.LoginPage
//	POST /admin/login                    → admin.LoginSubmit
//	GET  /admin/logout                   → admin.Logout
//	GET  /admin/                         → admin.Dashboard       (login required)
//	GET  /admin/api/leads                → admin.ListLeads       (login required)
//	GET  /admin/api/leads/{id}           → admin.GetLead         (login required)
//	POST /admin/api/leads/{id}/status    → admin.UpdateLeadStatus (login required)
//
// The public API allows cross-origin POSTs from anywhere — the form is meant
// to be embedded on the marketing site and served from any origin. The admin
// area resolves the session cookie and gates everything past login.
func NewRouter(
	submit *SubmitHandler,
	admin *AdminHandler,
	sessions *session.Manager,
	cookieName string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-CSRF-Token"},
		}))
		r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
				"success": false,
				"error":   "Nur POST-Anfragen erlaubt",
			})
		})

		r.Post("/submit", submit.Submit)
		r.Post("/submit.php", submit.Submit)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.WithSession(sessions, cookieName))

		// Public entry points
		r.Get("/login", admin.LoginPage)
		r.Post("/login", admin.LoginSubmit)
		r.Get("/logout", admin.Logout)

		// Protected group: requires an authenticated session
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Get("/", admin.Dashboard)
			r.Route("/api/leads", func(r chi.Router) {
				r.Get("/", admin.ListLeads)
				r.Get("/{id}", admin.GetLead)
				r.Post("/{id}/status", admin.UpdateLeadStatus)
			})
		})
	})

	return r
}
