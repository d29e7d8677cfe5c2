// internal/store/errors.go
//
// Sentinel errors for the tenant store.
//
// Callers classify failures with errors.Is; the store always wraps these
// sentinels with enough context (id, field, status) for an operator to act.
package store

import "errors"

var (
	// ErrNotFound covers missing customers, sites, and backups.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a customer email is already taken.
	ErrDuplicateEmail = errors.New("customer email already exists")

	// ErrDuplicateSite is returned when a derived site id collides with an
	// existing row.
	ErrDuplicateSite = errors.New("site id already exists")

	// ErrInvalidField is returned when an update names a field outside the
	// entity's mutable allow-list.
	ErrInvalidField = errors.New("field is not updatable")

	// ErrInvalidStatus is returned when a status value is outside the
	// site-status enum.
	ErrInvalidStatus = errors.New("invalid site status")

	// ErrQuotaExceeded is returned when a customer has no free site slots.
	ErrQuotaExceeded = errors.New("site quota exceeded")
)
