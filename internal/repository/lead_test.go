package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/zuschusspiloten/leadserver/internal/models"
)

var leadColumns = []string{
	"id", "company", "contact_name", "email", "phone", "address", "industry",
	"employees", "project_description", "ip_address", "user_agent", "status", "created_at",
}

func setupLeadMock(t *testing.T) (*PostgresLeadRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresLeadRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestCreate_Success(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	lead := &models.Lead{
		Company:            "Muster GmbH",
		ContactName:        "Hans Meier",
		Email:              "hans@muster.de",
		Phone:              "+49 30 123456",
		Address:            "Musterstr. 1, Berlin",
		Industry:           "Handwerk",
		Employees:          "10-49",
		ProjectDescription: "Digitalisierung der Werkstatt",
		IPAddress:          "1.2.3.4",
		UserAgent:          "Mozilla/5.0",
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO leads")).
		WithArgs(
			lead.Company, lead.ContactName, lead.Email,
			sqlmock.AnyArg(), lead.Address, lead.Industry, lead.Employees,
			lead.ProjectDescription, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Create(context.Background(), lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Errorf("Create returned id = %d; want 42", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreate_Error(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO leads")).
		WillReturnError(errors.New("insert failed"))

	_, err := repo.Create(context.Background(), &models.Lead{Company: "X"})
	if err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetAll_DefaultOrder(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(leadColumns).
		AddRow(int64(2), "B GmbH", "Bea", "b@b.de", nil, "Weg 2", "IT", "1-9", "Projekt B", "2.2.2.2", nil, "neu", now).
		AddRow(int64(1), "A GmbH", "Alf", "a@a.de", "+49 30 1", "Weg 1", "Bau", "10-49", "Projekt A", "1.1.1.1", "curl", "kontaktiert", now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WillReturnRows(rows)

	leads, err := repo.GetAll(context.Background(), "created_at", "DESC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("GetAll returned %d leads; want 2", len(leads))
	}
	if leads[0].Company != "B GmbH" || leads[0].Phone != "" {
		t.Errorf("first lead scanned wrong: %+v", leads[0])
	}
	if leads[1].Status != "kontaktiert" || leads[1].UserAgent != "curl" {
		t.Errorf("second lead scanned wrong: %+v", leads[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// A caller-controlled sort column outside the allow-list must never reach
// the SQL text; the query falls back to created_at DESC.
func TestGetAll_InjectionFallsBack(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(leadColumns))

	_, err := repo.GetAll(context.Background(), "DROP TABLE leads", "DESC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetAll_BadDirectionFallsBack(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY company DESC")).
		WillReturnRows(sqlmock.NewRows(leadColumns))

	_, err := repo.GetAll(context.Background(), "company", "SIDEWAYS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetAll_LowercaseDirection(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY status ASC")).
		WillReturnRows(sqlmock.NewRows(leadColumns))

	_, err := repo.GetAll(context.Background(), "status", "asc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM leads WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(leadColumns).
			AddRow(int64(7), "Muster GmbH", "Hans Meier", "hans@muster.de", nil, "Musterstr. 1",
				"Handwerk", "10-49", "Projekt", "1.2.3.4", nil, "neu", now))

	lead, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead == nil {
		t.Fatal("expected lead, got nil")
	}
	if lead.ID != 7 || lead.Company != "Muster GmbH" || lead.Status != "neu" {
		t.Errorf("lead scanned wrong: %+v", lead)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetByID_Absent(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM leads WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(leadColumns))

	lead, err := repo.GetByID(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead != nil {
		t.Errorf("expected nil for absent lead, got %+v", lead)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateStatus_Valid(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET status = $1 WHERE id = $2")).
		WithArgs("qualifiziert", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateStatus(context.Background(), 7, "qualifiziert")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected true for valid status")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// An unknown status must be rejected before any SQL runs.
func TestUpdateStatus_InvalidValue(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	ok, err := repo.UpdateStatus(context.Background(), 7, "bogus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false for unknown status")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL executed: %v", err)
	}
}

func TestUpdateStatus_Error(t *testing.T) {
	repo, mock, cleanup := setupLeadMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET status = $1 WHERE id = $2")).
		WithArgs("neu", int64(7)).
		WillReturnError(errors.New("update failed"))

	ok, err := repo.UpdateStatus(context.Background(), 7, "neu")
	if err == nil {
		t.Errorf("expected error, got nil")
	}
	if ok {
		t.Error("expected false on storage error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
