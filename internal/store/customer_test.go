// internal/store/customer_test.go
//
// Unit-tests for customer CRUD using sqlmock.
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
	"github.com/jmoiron/sqlx"
)

// newMockStore wraps a sqlmock connection in the Store under test.
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "mysql")), mock
}

func TestCreateCustomerDefaults(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO customers`)).
		WithArgs(sqlmock.AnyArg(), "ada@example.com", "Ada", "", "starter", "active",
			1, 512, 10, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := st.CreateCustomer(context.Background(), NewCustomer{
		Email: "ada@example.com",
		Name:  "Ada",
	})
	if err != nil {
		t.Fatalf("CreateCustomer error: %v", err)
	}
	if c.ID == "" || c.PlanType != "starter" || c.MaxSites != 1 ||
		c.MaxStorageMB != 512 || c.MaxBandwidthGB != 10 || c.Status != "active" {
		t.Fatalf("defaults not applied: %#v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO customers`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := st.CreateCustomer(context.Background(), NewCustomer{
		Email: "ada@example.com",
		Name:  "Ada",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateCustomerRequiresEmail(t *testing.T) {
	st, _ := newMockStore(t)
	if _, err := st.CreateCustomer(context.Background(), NewCustomer{Name: "Ada"}); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestGetCustomerNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM customers WHERE id = ?`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := st.GetCustomer(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCustomerInvalidField(t *testing.T) {
	st, mock := newMockStore(t)

	// Email is identity; the update must fail before any SQL runs.
	err := st.UpdateCustomer(context.Background(), "cust-1",
		map[string]any{"email": "new@example.com", "name": "X"})
	if !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL issued: %v", err)
	}
}

func TestUpdateCustomer(t *testing.T) {
	st, mock := newMockStore(t)

	// Keys are applied in sorted order.
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE customers SET max_sites = ?, name = ?, updated_at = ? WHERE id = ?`)).
		WithArgs(5, "Ada L.", sqlmock.AnyArg(), "cust-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.UpdateCustomer(context.Background(), "cust-1",
		map[string]any{"name": "Ada L.", "max_sites": 5})
	if err != nil {
		t.Fatalf("UpdateCustomer error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateCustomerMissingRow(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE customers SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.UpdateCustomer(context.Background(), "ghost",
		map[string]any{"name": "X"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
