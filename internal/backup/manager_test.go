// internal/backup/manager_test.go
//
// Unit-tests for snapshot create/restore using sqlmock.
//
// Run: go test ./internal/backup -v

package backup

import (
	"bytes"
	"context"
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

func TestCreateSnapshotsRawBytes(t *testing.T) {
	m, mock := newMockManager(t)

	// Snapshot must carry the stored column bytes verbatim, whitespace and
	// key order included.
	raw := []byte(`{"schema_version": 1, "brand": {"logo": "logo.svg"}}`)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT config FROM sites WHERE id = ?`)).
		WithArgs("acme-site").
		WillReturnRows(sqlmock.NewRows([]string{"config"}).AddRow(raw))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO site_backups`)).
		WithArgs(sqlmock.AnyArg(), "acme-site", "nightly", raw, "ops", "manual", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := m.Create(context.Background(), "acme-site", "nightly", "ops", store.BackupManual)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if b.ID == "" || !bytes.Equal(b.Snapshot, raw) {
		t.Fatalf("snapshot not verbatim: %#v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateDefaults(t *testing.T) {
	m, mock := newMockManager(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT config FROM sites WHERE id = ?`)).
		WillReturnRows(sqlmock.NewRows([]string{"config"}).AddRow([]byte(`{}`)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO site_backups`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := m.Create(context.Background(), "acme-site", "", "", "")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if b.Name == "" || b.CreatedBy != "system" || b.Type != store.BackupManual {
		t.Fatalf("defaults not applied: %#v", b)
	}
}

func TestRestore(t *testing.T) {
	m, mock := newMockManager(t)

	raw := []byte(`{"schema_version":1}`)
	now := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM site_backups WHERE id = ?`)).
		WithArgs("bkp-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "site_id", "backup_name", "config_snapshot", "created_by",
			"backup_type", "created_at",
		}).AddRow("bkp-1", "acme-site", "pre-patch: config", raw, "hot-patch-engine",
			"pre-patch", now))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE sites SET config = ?, updated_at = ? WHERE id = ?`)).
		WithArgs(raw, sqlmock.AnyArg(), "acme-site").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sites WHERE id = ?`)).
		WithArgs("acme-site").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "name", "domain", "config", "status",
			"port", "url", "created_at", "updated_at",
		}).AddRow("acme-site", "cust-1", "Acme Site", nil, raw, "deployed",
			nil, nil, now, now))

	site, err := m.Restore(context.Background(), "bkp-1")
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if site.ID != "acme-site" {
		t.Errorf("restored site = %q", site.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
