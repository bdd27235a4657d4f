// Package http provides the HTTP handlers for the public submission API and
// the admin area.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zuschusspiloten/leadserver/internal/middleware"
	"github.com/zuschusspiloten/leadserver/internal/service"
)

// LeadIntake defines the lead operations required by the submission endpoint.
type LeadIntake interface {
	// Validate returns a map of field name to message for every invalid field.
	Validate(sub service.Submission) map[string]string
	// Submit sanitizes and persists the submission, returning the new lead id.
	Submit(ctx context.Context, sub service.Submission, ip, userAgent string) (int64, error)
}

// AbuseGuard defines the anti-abuse checks applied before validation.
type AbuseGuard interface {
	// IsHoneypotFilled reports whether the hidden field carries a value.
	IsHoneypotFilled(value string) bool
	// IsRateLimited applies the sliding-window check for one attempt.
	IsRateLimited(ctx context.Context, ip, action string) bool
}

// SubmitHandler handles public lead submissions.
type SubmitHandler struct {
	// Leads performs validation and persistence.
	Leads LeadIntake
	// Abuse performs the honeypot and rate-limit checks.
	Abuse AbuseGuard
	// Debug exposes storage error details in 500 responses.
	Debug bool
}

// Submit processes one inbound lead submission. The body is JSON or
// form-encoded depending on Content-Type. Checks run in a fixed order:
// honeypot (bots get a fake success and nothing is stored), rate limit
// (429), field validation (400 with a complete per-field error map), then
// sanitization and persistence (200 with the new lead id, 500 on failure).
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub service.Submission

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "Ungültiges JSON-Format",
			})
			return
		}
	} else {
		_ = r.ParseForm()
		sub = service.Submission{
			Company:   r.PostFormValue("company"),
			Contact:   r.PostFormValue("contact"),
			Email:     r.PostFormValue("email"),
			Phone:     r.PostFormValue("phone"),
			Address:   r.PostFormValue("address"),
			Industry:  r.PostFormValue("industry"),
			Employees: r.PostFormValue("employees"),
			Project:   r.PostFormValue("project"),
			Website:   r.PostFormValue("website"),
		}
	}

	// Bots that fill the hidden field get a success response and nothing
	// is stored, so they learn nothing about the defense.
	if h.Abuse.IsHoneypotFilled(sub.Website) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Vielen Dank für Ihre Anfrage!",
		})
		return
	}

	clientIP := middleware.ClientIP(r)
	if h.Abuse.IsRateLimited(r.Context(), clientIP, service.ActionFormSubmit) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"success": false,
			"error":   "Zu viele Anfragen. Bitte versuchen Sie es später erneut.",
		})
		return
	}

	if errs := h.Leads.Validate(sub); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Bitte korrigieren Sie die markierten Felder",
			"errors":  errs,
		})
		return
	}

	leadID, err := h.Leads.Submit(r.Context(), sub, clientIP, r.UserAgent())
	if err != nil {
		msg := "Ein Fehler ist aufgetreten. Bitte versuchen Sie es später erneut."
		if h.Debug {
			msg = "Datenbankfehler: " + err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   msg,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Vielen Dank! Ihre Anfrage wurde erfolgreich übermittelt. Wir melden uns innerhalb von 24 Stunden bei Ihnen.",
		"lead_id": leadID,
	})
}

// writeJSON sends data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
