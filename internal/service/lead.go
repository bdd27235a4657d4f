// Package service provides business-logic services for lead intake,
// anti-abuse guarding and operator authentication, delegating persistence
// to repository interfaces.
package service

import (
	"context"

	"github.com/zuschusspiloten/leadserver/internal/models"
	"github.com/zuschusspiloten/leadserver/internal/validation"
)

// LeadRepository defines the persistence operations needed by the LeadService.
type LeadRepository interface {
	// Create inserts a new lead and returns the generated id.
	Create(ctx context.Context, lead *models.Lead) (int64, error)
	// GetAll returns all leads sorted by an allow-listed column/direction.
	GetAll(ctx context.Context, orderBy, direction string) ([]models.Lead, error)
	// GetByID fetches one lead, (nil, nil) when absent.
	GetByID(ctx context.Context, id int64) (*models.Lead, error)
	// UpdateStatus sets a lead's status, false for unknown status values.
	UpdateStatus(ctx context.Context, id int64, status string) (bool, error)
}

// Submission carries the raw form fields of one inbound request, before
// validation and sanitization.
type Submission struct {
	Company   string `json:"company"`
	Contact   string `json:"contact"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Industry  string `json:"industry"`
	Employees string `json:"employees"`
	Project   string `json:"project"`
	// Website is the honeypot field; humans never see it, so any value
	// marks the submission as automated.
	Website string `json:"website"`
}

// LeadService implements lead intake and the admin lead operations.
type LeadService struct {
	// repo performs the data-layer operations.
	repo LeadRepository
}

// NewLeadService constructs a LeadService using the provided repository.
func NewLeadService(repo LeadRepository) *LeadService {
	return &LeadService{repo: repo}
}

// Validate checks every field of the submission and returns a map of field
// name to message for all offending fields at once. An empty map means the
// submission is valid. Messages are the user-facing German texts.
func (s *LeadService) Validate(sub Submission) map[string]string {
	errs := make(map[string]string)

	if !validation.IsRequired(sub.Company) {
		errs["company"] = "Unternehmensname ist erforderlich"
	}
	if !validation.IsRequired(sub.Contact) {
		errs["contact"] = "Ansprechpartner ist erforderlich"
	}
	if !validation.IsRequired(sub.Email) {
		errs["email"] = "E-Mail ist erforderlich"
	} else if !validation.IsValidEmail(sub.Email) {
		errs["email"] = "Ungültige E-Mail-Adresse"
	}
	if !validation.IsRequired(sub.Address) {
		errs["address"] = "Adresse ist erforderlich"
	}
	if !validation.IsRequired(sub.Industry) {
		errs["industry"] = "Branche ist erforderlich"
	}
	if !validation.IsRequired(sub.Employees) {
		errs["employees"] = "Mitarbeiteranzahl ist erforderlich"
	}
	if !validation.IsRequired(sub.Project) {
		errs["project"] = "Projektbeschreibung ist erforderlich"
	}
	if sub.Phone != "" && !validation.IsValidPhone(sub.Phone) {
		errs["phone"] = "Ungültige Telefonnummer"
	}

	return errs
}

// Submit sanitizes the submission, captures the caller's address and user
// agent, and persists a new lead. The caller must have run Validate first.
// Returns the generated lead id.
func (s *LeadService) Submit(ctx context.Context, sub Submission, ip, userAgent string) (int64, error) {
	lead := &models.Lead{
		Company:            validation.Sanitize(sub.Company),
		ContactName:        validation.Sanitize(sub.Contact),
		Email:              validation.Sanitize(sub.Email),
		Address:            validation.Sanitize(sub.Address),
		Industry:           validation.Sanitize(sub.Industry),
		Employees:          validation.Sanitize(sub.Employees),
		ProjectDescription: validation.Sanitize(sub.Project),
		IPAddress:          ip,
		UserAgent:          userAgent,
	}
	if sub.Phone != "" {
		lead.Phone = validation.Sanitize(sub.Phone)
	}

	return s.repo.Create(ctx, lead)
}

// List returns all leads sorted by the requested column and direction.
// Values outside the repository allow-list fall back to created_at DESC.
func (s *LeadService) List(ctx context.Context, orderBy, direction string) ([]models.Lead, error) {
	return s.repo.GetAll(ctx, orderBy, direction)
}

// Get fetches a single lead, (nil, nil) when absent.
func (s *LeadService) Get(ctx context.Context, id int64) (*models.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus transitions a lead to the given status. Returns false for
// values outside the five allowed states.
func (s *LeadService) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	return s.repo.UpdateStatus(ctx, id, status)
}
