// Package repository provides persistence implementations for leads, admin
// users and rate-limit records using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/zuschusspiloten/leadserver/internal/models"
)

// Columns callers may sort the lead list by. Sort identifiers cannot be
// parameterized, so anything outside this map falls back to the default.
var allowedOrderColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"status":     true,
	"company":    true,
	"email":      true,
}

var allowedOrderDirections = map[string]bool{
	"ASC":  true,
	"DESC": true,
}

// PostgresLeadRepository implements lead persistence against PostgreSQL.
type PostgresLeadRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresLeadRepository creates a new PostgresLeadRepository with the
// given database connection. db must be a valid *sql.DB connected to a
// PostgreSQL instance.
func NewPostgresLeadRepository(db *sql.DB) *PostgresLeadRepository {
	return &PostgresLeadRepository{DB: db}
}

// Create inserts a new lead row. Status defaults to "neu" and created_at to
// now, both assigned by the store. Empty phone and user agent are stored as
// NULL. Returns the generated id.
func (r *PostgresLeadRepository) Create(ctx context.Context, lead *models.Lead) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO leads
			(company, contact_name, email, phone, address, industry, employees, project_description, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		lead.Company,
		lead.ContactName,
		lead.Email,
		nullable(lead.Phone),
		lead.Address,
		lead.Industry,
		lead.Employees,
		lead.ProjectDescription,
		nullable(lead.IPAddress),
		nullable(lead.UserAgent),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create lead: %w", err)
	}
	return id, nil
}

// GetAll returns every lead ordered by the requested column and direction.
// orderBy is restricted to {id, created_at, status, company, email} and
// direction to {ASC, DESC}; any other value falls back to created_at DESC.
func (r *PostgresLeadRepository) GetAll(ctx context.Context, orderBy, direction string) ([]models.Lead, error) {
	if !allowedOrderColumns[orderBy] {
		orderBy = "created_at"
		direction = "DESC"
	}
	direction = strings.ToUpper(direction)
	if !allowedOrderDirections[direction] {
		direction = "DESC"
	}

	// orderBy and direction are allow-listed above, never caller text.
	query := fmt.Sprintf(`
		SELECT id, company, contact_name, email, phone, address, industry, employees,
		       project_description, ip_address, user_agent, status, created_at
		FROM leads ORDER BY %s %s`, orderBy, direction)

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

// GetByID fetches a single lead. Returns (nil, nil) when no lead with the
// given id exists.
func (r *PostgresLeadRepository) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, company, contact_name, email, phone, address, industry, employees,
		       project_description, ip_address, user_agent, status, created_at
		FROM leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// UpdateStatus sets the lead's status. Values outside the five allowed
// states are rejected with (false, nil) without touching storage.
func (r *PostgresLeadRepository) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	if !models.ValidStatus(status) {
		return false, nil
	}

	_, err := r.DB.ExecContext(ctx, `UPDATE leads SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return false, fmt.Errorf("update lead status: %w", err)
	}
	return true, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanLead.
type scanner interface {
	Scan(dest ...any) error
}

func scanLead(s scanner) (*models.Lead, error) {
	var lead models.Lead
	var phone, address, industry, employees, project, ip, ua sql.NullString
	err := s.Scan(
		&lead.ID,
		&lead.Company,
		&lead.ContactName,
		&lead.Email,
		&phone,
		&address,
		&industry,
		&employees,
		&project,
		&ip,
		&ua,
		&lead.Status,
		&lead.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.Phone = phone.String
	lead.Address = address.String
	lead.Industry = industry.String
	lead.Employees = employees.String
	lead.ProjectDescription = project.String
	lead.IPAddress = ip.String
	lead.UserAgent = ua.String
	return &lead, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
