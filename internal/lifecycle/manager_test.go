// internal/lifecycle/manager_test.go
//
// Unit-tests for the lifecycle manager using sqlmock.
//
// Run: go test ./internal/lifecycle -v

package lifecycle

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mocher01/lowebi-sub005/internal/store"
)

func newMockManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(store.New(sqlx.NewDb(db, "mysql")), zap.NewNop().Sugar()), mock
}

func siteRow(id string, status store.Status) *sqlmock.Rows {
	now := time.Now().UTC().Truncate(time.Second)
	return sqlmock.NewRows([]string{
		"id", "customer_id", "name", "domain", "config", "status",
		"port", "url", "created_at", "updated_at",
	}).AddRow(id, "cust-1", id, nil, []byte(`{"schema_version":1}`), status,
		nil, nil, now, now)
}

func TestAdvanceStatus(t *testing.T) {
	m, mock := newMockManager(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sites WHERE id = ?`)).
		WithArgs("acme-site").
		WillReturnRows(siteRow("acme-site", store.StatusDeploying))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE sites SET status = ?, url = ?, updated_at = ? WHERE id = ?`)).
		WithArgs("deployed", "https://acme.example.com", sqlmock.AnyArg(), "acme-site").
		WillReturnResult(sqlmock.NewResult(0, 1))

	site, err := m.AdvanceStatus(context.Background(), "acme-site",
		store.StatusDeployed, map[string]any{"url": "https://acme.example.com"})
	if err != nil {
		t.Fatalf("AdvanceStatus error: %v", err)
	}
	if site.Status != store.StatusDeployed {
		t.Errorf("returned status = %s, want deployed", site.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestAdvanceStatusRejectsIllegalEdge(t *testing.T) {
	m, mock := newMockManager(t)

	// archived is terminal; no UPDATE may be issued.
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sites WHERE id = ?`)).
		WithArgs("acme-site").
		WillReturnRows(siteRow("acme-site", store.StatusArchived))

	_, err := m.AdvanceStatus(context.Background(), "acme-site", store.StatusBuilding, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL issued: %v", err)
	}
}

func TestAdvanceStatusRejectsUnknownValue(t *testing.T) {
	m, _ := newMockManager(t)

	_, err := m.AdvanceStatus(context.Background(), "acme-site", store.Status("bogus"), nil)
	if !errors.Is(err, store.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestArchive(t *testing.T) {
	m, mock := newMockManager(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sites WHERE id = ?`)).
		WithArgs("acme-site").
		WillReturnRows(siteRow("acme-site", store.StatusDeployed))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sites SET status = ?, updated_at = ?`)).
		WithArgs("archived", sqlmock.AnyArg(), "acme-site").
		WillReturnResult(sqlmock.NewResult(0, 1))

	site, err := m.Archive(context.Background(), "acme-site")
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}
	if site.Status != store.StatusArchived {
		t.Errorf("returned status = %s, want archived", site.Status)
	}
}
