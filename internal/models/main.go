// Package models defines the core data structures for leads, admin users
// and rate-limit records.
package models

import "time"

// LeadStatus identifies the processing state of a lead.
type LeadStatus string

const (
	// StatusNew is the initial state of every lead.
	StatusNew LeadStatus = "neu"
	// StatusContacted marks a lead that has been reached out to.
	StatusContacted LeadStatus = "kontaktiert"
	// StatusQualified marks a lead that passed qualification.
	StatusQualified LeadStatus = "qualifiziert"
	// StatusClosed marks a won lead.
	StatusClosed LeadStatus = "abgeschlossen"
	// StatusRejected marks a declined lead.
	StatusRejected LeadStatus = "abgelehnt"
)

// ValidStatus reports whether s is one of the five allowed lead states.
func ValidStatus(s string) bool {
	switch LeadStatus(s) {
	case StatusNew, StatusContacted, StatusQualified, StatusClosed, StatusRejected:
		return true
	}
	return false
}

// Lead represents a submitted business inquiry captured by the public form.
type Lead struct {
	// ID is the store-assigned identifier, immutable after creation.
	ID int64 `json:"id"`
	// Company is the name of the inquiring business.
	Company string `json:"company"`
	// ContactName is the person to reach at the company.
	ContactName string `json:"contact_name"`
	// Email is the validated contact address.
	Email string `json:"email"`
	// Phone is optional and empty when not provided.
	Phone string `json:"phone"`
	// Address is the postal address of the company.
	Address string `json:"address"`
	// Industry is the self-reported business sector.
	Industry string `json:"industry"`
	// Employees is the self-reported head count bracket.
	Employees string `json:"employees"`
	// ProjectDescription holds the free-text inquiry.
	ProjectDescription string `json:"project_description"`
	// IPAddress is the client address captured at submission time.
	IPAddress string `json:"ip_address"`
	// UserAgent is the client user agent captured at submission time.
	UserAgent string `json:"user_agent"`
	// Status is one of the five LeadStatus values, "neu" on creation.
	Status string `json:"status"`
	// CreatedAt is set by the store on insert, immutable.
	CreatedAt time.Time `json:"created_at"`
}

// AdminUser represents an operator credential. Accounts are provisioned
// out-of-band; the application only verifies passwords and updates last_login.
type AdminUser struct {
	// ID is the unique identifier for the operator.
	ID int64
	// Username is the unique login name.
	Username string
	// PasswordHash is the bcrypt hash of the operator password.
	PasswordHash string
	// LastLogin is the time of the most recent successful login.
	LastLogin *time.Time
}

// RateLimitRecord is one timestamped attempt counted by the sliding-window
// rate limiter.
type RateLimitRecord struct {
	// IPAddress is the client address the attempt was made from.
	IPAddress string
	// Action labels the guarded operation, e.g. "form_submit".
	Action string
	// CreatedAt is when the attempt happened.
	CreatedAt time.Time
}
