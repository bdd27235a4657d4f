package http

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zuschusspiloten/leadserver/internal/middleware"
	"github.com/zuschusspiloten/leadserver/internal/models"
	"github.com/zuschusspiloten/leadserver/internal/session"
)

// AdminAuth defines the credential verification required by the admin area.
type AdminAuth interface {
	// Login verifies the pair and returns the operator on success.
	Login(ctx context.Context, username, password string) (*models.AdminUser, bool)
}

// LeadAdmin defines the lead operations exposed to operators.
type LeadAdmin interface {
	List(ctx context.Context, orderBy, direction string) ([]models.Lead, error)
	Get(ctx context.Context, id int64) (*models.Lead, error)
	UpdateStatus(ctx context.Context, id int64, status string) (bool, error)
}

// AdminHandler handles the password-protected admin area: login form,
// dashboard and the lead JSON endpoints behind it.
type AdminHandler struct {
	// Auth verifies operator credentials.
	Auth AdminAuth
	// Leads serves the dashboard data.
	Leads LeadAdmin
	// Sessions owns the server-side session state.
	Sessions *session.Manager
	// CookieName is the session cookie name.
	CookieName string
	// CookieLifetime is the session cookie max age.
	CookieLifetime time.Duration
	// Secure marks the session cookie Secure (off in debug mode).
	Secure bool
	// Debug exposes storage error details.
	Debug bool
}

// The admin pages are deliberately bare: layout and styling live with the
// website, this is the operator's fallback surface.
var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="de">
<head><meta charset="UTF-8"><meta name="robots" content="noindex, nofollow"><title>Admin Login - Zuschuss Piloten</title></head>
<body>
<h1>Admin-Bereich</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="POST" action="/admin/login">
<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
<label>Benutzername <input type="text" name="username" required autofocus></label>
<label>Passwort <input type="password" name="password" required></label>
<button type="submit">Anmelden</button>
</form>
</body>
</html>
`))

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="de">
<head><meta charset="UTF-8"><meta name="robots" content="noindex, nofollow"><title>Dashboard - Zuschuss Piloten Admin</title></head>
<body>
<p>Angemeldet als: <strong>{{.Username}}</strong> — <a href="/admin/logout">Abmelden</a></p>
<h1>Leads / Anfragen</h1>
{{if .Error}}<p class="error">Fehler beim Laden der Daten: {{.Error}}</p>{{else}}
<p>{{len .Leads}} Einträge</p>
<table>
<tr><th>ID</th><th>Datum</th><th>Status</th><th>Unternehmen</th><th>Ansprechpartner</th><th>E-Mail</th><th>Branche</th></tr>
{{range .Leads}}<tr><td>#{{.ID}}</td><td>{{.CreatedAt.Format "02.01.2006 15:04"}}</td><td>{{.Status}}</td><td>{{.Company}}</td><td>{{.ContactName}}</td><td>{{.Email}}</td><td>{{.Industry}}</td></tr>
{{end}}</table>
{{end}}
</body>
</html>
`))

type loginPageData struct {
	CSRFToken string
	Error     string
}

// leadRow is the dashboard view of one lead. Text fields were HTML-escaped
// once at intake, so they are emitted as-is to avoid double escaping.
type leadRow struct {
	ID          int64
	CreatedAt   time.Time
	Status      string
	Company     template.HTML
	ContactName template.HTML
	Email       template.HTML
	Industry    template.HTML
}

type dashboardData struct {
	Username string
	Leads    []leadRow
	Error    string
}

// LoginPage serves the admin login form. An already authenticated session is
// sent straight to the dashboard. A session is started on first contact so
// the CSRF token has somewhere to live.
func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	if s != nil && s.LoggedIn {
		http.Redirect(w, r, "/admin/", http.StatusFound)
		return
	}
	if s == nil {
		s = h.Sessions.Start()
		h.writeSessionCookie(w, s)
	}

	h.renderLogin(w, loginPageData{CSRFToken: h.Sessions.CSRFToken(s.ID)})
}

// LoginSubmit processes the login form: CSRF check, credential check,
// session regeneration, redirect to the dashboard. Failures re-render the
// form with a generic message that does not reveal which check failed.
func (h *AdminHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	if s != nil && s.LoggedIn {
		http.Redirect(w, r, "/admin/", http.StatusFound)
		return
	}

	// No live session means no token to validate against; the form the
	// browser submitted was stale.
	if s == nil {
		s = h.Sessions.Start()
		h.writeSessionCookie(w, s)
		h.renderLogin(w, loginPageData{
			CSRFToken: h.Sessions.CSRFToken(s.ID),
			Error:     "Sicherheitsfehler. Bitte Seite neu laden.",
		})
		return
	}

	_ = r.ParseForm()

	if !h.Sessions.ValidateCSRF(s.ID, r.PostFormValue("csrf_token")) {
		h.renderLogin(w, loginPageData{
			CSRFToken: h.Sessions.CSRFToken(s.ID),
			Error:     "Sicherheitsfehler. Bitte Seite neu laden.",
		})
		return
	}

	user, ok := h.Auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if !ok {
		h.renderLogin(w, loginPageData{
			CSRFToken: h.Sessions.CSRFToken(s.ID),
			Error:     "Ungültiger Benutzername oder Passwort",
		})
		return
	}

	ns := h.Sessions.Login(s.ID, user.ID, user.Username)
	h.writeSessionCookie(w, ns)
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

// Logout clears the session state and expires the cookie.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := middleware.SessionFromContext(r.Context()); s != nil {
		h.Sessions.Destroy(s.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

// Dashboard renders the lead table. Optional sort/dir query parameters pass
// through the repository allow-list.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())

	data := dashboardData{Username: s.AdminName}
	leads, err := h.Leads.List(r.Context(), r.URL.Query().Get("sort"), r.URL.Query().Get("dir"))
	if err != nil {
		data.Error = "Datenbankfehler"
		if h.Debug {
			data.Error = err.Error()
		}
	}
	for _, lead := range leads {
		data.Leads = append(data.Leads, leadRow{
			ID:          lead.ID,
			CreatedAt:   lead.CreatedAt,
			Status:      lead.Status,
			Company:     template.HTML(lead.Company),
			ContactName: template.HTML(lead.ContactName),
			Email:       template.HTML(lead.Email),
			Industry:    template.HTML(lead.Industry),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = dashboardTmpl.Execute(w, data)
}

// ListLeads returns all leads as JSON for the dashboard's client-side view.
func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.List(r.Context(), r.URL.Query().Get("sort"), r.URL.Query().Get("dir"))
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(leads),
		"leads":   leads,
	})
}

// GetLead returns one lead as JSON, 404 when absent.
func (h *AdminHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Ungültige ID",
		})
		return
	}

	lead, err := h.Leads.Get(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if lead == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   "Lead nicht gefunden",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"lead":    lead,
	})
}

// UpdateLeadStatus transitions a lead to a new status. Unknown status values
// are rejected without touching storage.
func (h *AdminHandler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Ungültige ID",
		})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Ungültiges JSON-Format",
		})
		return
	}

	ok, err := h.Leads.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Ungültiger Status",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AdminHandler) renderLogin(w http.ResponseWriter, data loginPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginTmpl.Execute(w, data)
}

func (h *AdminHandler) writeSessionCookie(w http.ResponseWriter, s *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(h.CookieLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AdminHandler) writeStorageError(w http.ResponseWriter, err error) {
	msg := "Ein Fehler ist aufgetreten. Bitte versuchen Sie es später erneut."
	if h.Debug {
		msg = "Datenbankfehler: " + err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   msg,
	})
}
