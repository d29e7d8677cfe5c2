// internal/store/site_test.go
//
// Unit-tests for quota-guarded site creation and status writes.
//
// Run: go test ./internal/store -v

package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestCreateSiteWithinQuota(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT max_sites FROM customers WHERE id = ? FOR UPDATE`)).
		WithArgs("cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"max_sites"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COUNT(*) FROM sites WHERE customer_id = ?`)).
		WithArgs("cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sites`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	site, err := st.CreateSite(context.Background(), "cust-1", NewSite{Name: "Acme Site"})
	if err != nil {
		t.Fatalf("CreateSite error: %v", err)
	}
	if site.ID != "acme-site" {
		t.Errorf("derived id = %q, want %q", site.ID, "acme-site")
	}
	if site.Status != StatusCreated {
		t.Errorf("status = %q, want %q", site.Status, StatusCreated)
	}
	if site.Config.SchemaVersion != 1 {
		t.Errorf("config not normalized: version %d", site.Config.SchemaVersion)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateSiteQuotaExceeded(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT max_sites FROM customers`)).
		WithArgs("cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"max_sites"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM sites`)).
		WithArgs("cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := st.CreateSite(context.Background(), "cust-1", NewSite{Name: "One Too Many"})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateSiteCustomerMissing(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT max_sites FROM customers`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := st.CreateSite(context.Background(), "ghost", NewSite{Name: "Orphan"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSiteDuplicateID(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT max_sites FROM customers`)).
		WillReturnRows(sqlmock.NewRows([]string{"max_sites"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM sites`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sites`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := st.CreateSite(context.Background(), "cust-1", NewSite{Name: "Acme Site"})
	if !errors.Is(err, ErrDuplicateSite) {
		t.Fatalf("expected ErrDuplicateSite, got %v", err)
	}
}

func TestUpdateSiteStatus(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE sites SET status = ?, url = ?, updated_at = ? WHERE id = ?`)).
		WithArgs("deployed", "https://acme.example.com", sqlmock.AnyArg(), "acme-site").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.UpdateSiteStatus(context.Background(), "acme-site", StatusDeployed,
		map[string]any{"url": "https://acme.example.com"})
	if err != nil {
		t.Fatalf("UpdateSiteStatus error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateSiteStatusRejectsUnknownValue(t *testing.T) {
	st, _ := newMockStore(t)

	err := st.UpdateSiteStatus(context.Background(), "acme-site", Status("bogus"), nil)
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateSiteStatusRejectsUnknownExtra(t *testing.T) {
	st, _ := newMockStore(t)

	err := st.UpdateSiteStatus(context.Background(), "acme-site", StatusDeployed,
		map[string]any{"config": "{}"})
	if !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestSetSiteConfigRawRejectsInvalidJSON(t *testing.T) {
	st, _ := newMockStore(t)

	if err := st.SetSiteConfigRaw(context.Background(), "acme-site", []byte("{nope")); err == nil {
		t.Fatal("expected error for invalid JSON snapshot")
	}
}
