// internal/store/backup.go
//
// Backup snapshot rows.
//
// Context
// -------
// A backup is an immutable, point-in-time copy of one site's configuration
// document.  Rows are only ever inserted and read—there is no update path,
// and restoring from a backup writes to the *site*, never to the backup.
// Retention is indefinite; pruning is out of scope.
//
// Schema reference
//
//	CREATE TABLE site_backups (
//	    id              VARCHAR(64)  PRIMARY KEY,
//	    site_id         VARCHAR(64)  NOT NULL REFERENCES sites(id),
//	    backup_name     VARCHAR(256) NOT NULL,
//	    config_snapshot JSON         NOT NULL,
//	    created_by      VARCHAR(128) NOT NULL,
//	    backup_type     VARCHAR(32)  NOT NULL,
//	    created_at      TIMESTAMP    NOT NULL
//	);
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BackupType distinguishes operator-requested snapshots from the
// automatic ones the patch engine takes before every mutation.
type BackupType string

const (
	BackupManual   BackupType = "manual"
	BackupPrePatch BackupType = "pre-patch"
)

// Backup mirrors one row in the `site_backups` table.
type Backup struct {
	ID        string     `db:"id"`
	SiteID    string     `db:"site_id"`
	Name      string     `db:"backup_name"`
	Snapshot  []byte     `db:"config_snapshot"`
	CreatedBy string     `db:"created_by"`
	Type      BackupType `db:"backup_type"`
	CreatedAt time.Time  `db:"created_at"`
}

const backupColumns = `id, site_id, backup_name, config_snapshot, created_by,
       backup_type, created_at`

// InsertBackup persists a snapshot row.  The write is a single INSERT, so
// a backup either exists in full or not at all.
func (s *Store) InsertBackup(ctx context.Context, b *Backup) error {
	const q = `
        INSERT INTO site_backups (` + backupColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		b.ID, b.SiteID, b.Name, b.Snapshot, b.CreatedBy, b.Type, b.CreatedAt)
	return err
}

// GetBackup fetches one backup by id.
func (s *Store) GetBackup(ctx context.Context, id string) (*Backup, error) {
	const q = `SELECT ` + backupColumns + ` FROM site_backups WHERE id = ? LIMIT 1`
	var b Backup
	if err := s.db.GetContext(ctx, &b, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: backup %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &b, nil
}

// ListBackupsForSite returns a site's backups, newest first.
func (s *Store) ListBackupsForSite(ctx context.Context, siteID string) ([]Backup, error) {
	const q = `SELECT ` + backupColumns + `
        FROM site_backups WHERE site_id = ? ORDER BY created_at DESC`
	var rows []Backup
	if err := s.db.SelectContext(ctx, &rows, q, siteID); err != nil {
		return nil, err
	}
	return rows, nil
}
