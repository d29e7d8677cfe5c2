// internal/patch/errors.go
//
// Patch error taxonomy.
//
// Context
// -------
// Validation failures (unknown type, missing site, missing artifact tree,
// busy site) carry no side effects and no backup id.  Once a pre-patch
// backup exists, every failure type carries its id so an operator can
// inspect or re-run the operation by hand.  RollbackError is the one
// shape that must never be swallowed: it means the automatic recovery
// itself failed and the site needs manual intervention.
package patch

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPatchType is returned for a patch type with no handler.
	ErrUnknownPatchType = errors.New("unknown patch type")

	// ErrSiteNotDeployable is returned when the site has no
	// generated-artifact tree to patch.
	ErrSiteNotDeployable = errors.New("site is not deployable")

	// ErrPatchInProgress is returned when another patch already holds the
	// site's in-flight lock.
	ErrPatchInProgress = errors.New("another patch is in progress for this site")
)

// ApplyError is a handler-reported domain failure.  The pre-patch backup
// was restored before this error reached the caller.
type ApplyError struct {
	SiteID   string
	Type     Type
	BackupID string
	Err      error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s patch on site %s failed (backup %s): %v",
		e.Type, e.SiteID, e.BackupID, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// PublishError means the handler succeeded but pushing to the live
// instance failed.  The pre-patch backup was restored.
type PublishError struct {
	SiteID   string
	Type     Type
	BackupID string
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish of %s patch on site %s failed (backup %s): %v",
		e.Type, e.SiteID, e.BackupID, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// RollbackError is the compound failure: a patch failed and restoring the
// pre-patch backup failed too.  The site is in a known-inconsistent state
// requiring manual intervention.
type RollbackError struct {
	SiteID   string
	BackupID string
	Cause    error // the failure that triggered the rollback
	Restore  error // the failure of the rollback itself
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf(
		"site %s is in an inconsistent state and requires manual intervention: "+
			"patch failed (%v) and restore of backup %s also failed (%v)",
		e.SiteID, e.Cause, e.BackupID, e.Restore)
}

func (e *RollbackError) Unwrap() error { return e.Cause }
