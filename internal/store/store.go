// internal/store/store.go
//
// Tenant store handle.
//
// Context
// -------
// Store is the single source of truth for customers, sites, deployments,
// and backup snapshots.  Every other component goes through it; nothing
// else in the control plane issues SQL or reads legacy config files.  The
// handle is injected into component constructors—there is no package-level
// connection state.
//
// All queries are parameterised, and any multi-row invariant (the quota
// check before a site insert) runs inside a single transaction.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package store

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Store wraps the control-plane database pool.
type Store struct {
	db *sqlx.DB
}

// New returns a Store over an open pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
