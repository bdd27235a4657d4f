package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/zuschusspiloten/leadserver/internal/service"
)

// fakeLeadIntake implements LeadIntake for testing.
type fakeLeadIntake struct {
	validateErrs map[string]string
	submitID     int64
	submitErr    error

	submitted bool
	gotSub    service.Submission
	gotIP     string
	gotUA     string
}

func (f *fakeLeadIntake) Validate(sub service.Submission) map[string]string {
	return f.validateErrs
}

func (f *fakeLeadIntake) Submit(ctx context.Context, sub service.Submission, ip, userAgent string) (int64, error) {
	f.submitted = true
	f.gotSub = sub
	f.gotIP = ip
	f.gotUA = userAgent
	return f.submitID, f.submitErr
}

// fakeAbuseGuard implements AbuseGuard for testing.
type fakeAbuseGuard struct {
	limited bool
}

func (f *fakeAbuseGuard) IsHoneypotFilled(value string) bool {
	return strings.TrimSpace(value) != ""
}

func (f *fakeAbuseGuard) IsRateLimited(ctx context.Context, ip, action string) bool {
	return f.limited
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

const validJSONBody = `{
	"company": "Muster GmbH",
	"contact": "Hans Meier",
	"email": "hans@muster.de",
	"phone": "+49 30 123456",
	"address": "Musterstr. 1, Berlin",
	"industry": "Handwerk",
	"employees": "10-49",
	"project": "Digitalisierung der Werkstatt"
}`

func TestSubmit_InvalidJSON(t *testing.T) {
	leads := &fakeLeadIntake{}
	h := &SubmitHandler{Leads: leads, Abuse: &fakeAbuseGuard{}}

	req := httptest.NewRequest("POST", "/api/submit", strings.NewReader("not a json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Ungültiges JSON-Format" {
		t.Errorf("error = %v", body["error"])
	}
	if leads.submitted {
		t.Error("malformed request must not be persisted")
	}
}

// A filled honeypot yields a success response but nothing is stored.
func TestSubmit_HoneypotFakeSuccess(t *testing.T) {
	leads := &fakeLeadIntake{}
	h := &SubmitHandler{Leads: leads, Abuse: &fakeAbuseGuard{}}

	payload := strings.Replace(validJSONBody, `"company"`, `"website": "http://spam.biz", "company"`, 1)
	req := httptest.NewRequest("POST", "/api/submit", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Error("bot must receive a success response")
	}
	if body["message"] != "Vielen Dank für Ihre Anfrage!" {
		t.Errorf("message = %v", body["message"])
	}
	if leads.submitted {
		t.Error("honeypot submission must not be persisted")
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	leads := &fakeLeadIntake{}
	h := &SubmitHandler{Leads: leads, Abuse: &fakeAbuseGuard{limited: true}}

	req := httptest.NewRequest("POST", "/api/submit", strings.NewReader(validJSONBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d; want 429", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Zu viele Anfragen. Bitte versuchen Sie es später erneut." {
		t.Errorf("error = %v", body["error"])
	}
	if leads.submitted {
		t.Error("throttled submission must not be persisted")
	}
}

func TestSubmit_ValidationErrors(t *testing.T) {
	leads := &fakeLeadIntake{
		validateErrs: map[string]string{
			"email":   "Ungültige E-Mail-Adresse",
			"company": "Unternehmensname ist erforderlich",
		},
	}
	h := &SubmitHandler{Leads: leads, Abuse: &fakeAbuseGuard{}}

	req := httptest.NewRequest("POST", "/api/submit", strings.NewReader(`{"email": "not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Bitte korrigieren Sie die markierten Felder" {
		t.Errorf("error = %v", body["error"])
	}
	errs, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("errors missing or wrong shape: %v", body["errors"])
	}
	if errs["email"] != "Ungültige E-Mail-Adresse" {
		t.Errorf("errors.email = %v", errs["email"])
	}
	if errs["company"] != "Unternehmensname ist erforderlich" {
		t.Errorf("errors.company = %v", errs["company"])
	}
	if leads.submitted {
		t.Error("invalid submission must not be persisted")
	}
}

func TestSubmit_SuccessJSON(t *testing.T) {
	leads := &fakeLeadIntake{submitID: 42}
	h := &SubmitHandler{Leads: leads, Abuse: &fakeAbuseGuard{}}

	req := httptest.NewRequest("POST", "/api/submit", strings.NewReader(validJSONBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200\n%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Error("expected success")
	}
	if body["lead_id"] != float64(42) {
		t.Errorf("lead_id = %v; want 42", body["lead_id"])
	}
	if !leads.submitted {
		t.Fatal("expected submission to be persisted")
	}
	if leads.gotIP != "1.2.3.4" {
		t.Errorf("captured IP = %q; want 1.2.3.4", leads.gotIP)
	}
	if leads.gotUA != "Mozilla/5.0" {
		t.Errorf("captured user agent = %q", leads.gotUA)
	}
	if leads.gotSub.Company != "Muster GmbH" {
		t.Errorf("submission company = %q", leads.gotSub.Company)
	}
}

func TestSubmit_SuccessFormEncoded(t *testing.T) {
	leads := &fakeLeadIntake{submitID: 7}
	h := &SubmitHandler{Leads: leads, Abuse: &fakeAbuseGuard{}}

	form := url.Values{
		"company":   {"Muster GmbH"},
		"contact":   {"Hans Meier"},
		"email":     {"hans@muster.de"},
		"address":   {"Musterstr. 1"},
		"industry":  {"Handwerk"},
		"employees": {"10-49"},
		"project":   {"Projekt"},
	}
	req := httptest.NewRequest("POST", "/api/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200\n%s", rec.Code, rec.Body.String())
	}
	if leads.gotSub.Contact != "Hans Meier" {
		t.Errorf("form field contact = %q", leads.gotSub.Contact)
	}
}

func TestSubmit_StorageError(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantError string
	}{
		{"production hides detail", false, "Ein Fehler ist aufgetreten. Bitte versuchen Sie es später erneut."},
		{"debug exposes detail", true, "Datenbankfehler: insert failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leads := &fakeLeadIntake{submitErr: errors.New("insert failed")}
			h := &SubmitHandler{Leads: leads, Abuse: &fakeAbuseGuard{}, Debug: tt.debug}

			req := httptest.NewRequest("POST", "/api/submit", strings.NewReader(validJSONBody))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Submit(rec, req)

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d; want 500", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["error"] != tt.wantError {
				t.Errorf("error = %v; want %q", body["error"], tt.wantError)
			}
		})
	}
}
