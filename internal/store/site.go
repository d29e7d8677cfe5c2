// internal/store/site.go
//
// Site rows, status enum, and quota-guarded creation.
//
// Context
// -------
// A site always belongs to exactly one customer and is tracked through a
// deployment-status lifecycle.  Creation is the invariant-critical path:
// the quota check and the insert execute inside one transaction, with the
// customer row locked, so two concurrent creations for the same customer
// cannot both observe a free slot when only one remains.
//
// Status *transitions* are validated by the lifecycle manager; the store
// only rejects values outside the enum.  Sites are never deleted—
// decommissioning moves them to `archived`.
//
// Schema reference
//
//	CREATE TABLE sites (
//	    id          VARCHAR(64)  PRIMARY KEY,
//	    customer_id VARCHAR(64)  NOT NULL REFERENCES customers(id),
//	    name        VARCHAR(256) NOT NULL,
//	    domain      VARCHAR(256) NULL,
//	    config      JSON         NOT NULL,
//	    status      VARCHAR(32)  NOT NULL DEFAULT 'created',
//	    port        INT          NULL,
//	    url         VARCHAR(512) NULL,
//	    created_at  TIMESTAMP    NOT NULL,
//	    updated_at  TIMESTAMP    NOT NULL
//	);
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mocher01/lowebi-sub005/internal/siteconfig"
)

// Status is the site deployment-lifecycle state.
type Status string

const (
	StatusCreated   Status = "created"
	StatusBuilding  Status = "building"
	StatusDeploying Status = "deploying"
	StatusDeployed  Status = "deployed"
	StatusFailed    Status = "failed"
	StatusError     Status = "error"
	StatusArchived  Status = "archived"
)

// AllStatuses lists the full enum, in lifecycle order.
var AllStatuses = []Status{
	StatusCreated, StatusBuilding, StatusDeploying, StatusDeployed,
	StatusFailed, StatusError, StatusArchived,
}

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusBuilding, StatusDeploying, StatusDeployed,
		StatusFailed, StatusError, StatusArchived:
		return true
	}
	return false
}

// Site mirrors one row in the `sites` table.
type Site struct {
	ID         string              `db:"id"`
	CustomerID string              `db:"customer_id"`
	Name       string              `db:"name"`
	Domain     *string             `db:"domain"`
	Config     siteconfig.Document `db:"config"`
	Status     Status              `db:"status"`
	Port       *int                `db:"port"`
	URL        *string             `db:"url"`
	CreatedAt  time.Time           `db:"created_at"`
	UpdatedAt  time.Time           `db:"updated_at"`
}

// NewSite is the input for CreateSite.  When ID is empty it is derived
// from Name; the migrator sets it explicitly to preserve legacy ids.
type NewSite struct {
	ID     string
	Name   string
	Domain string
	Config siteconfig.Document
	Port   int
	URL    string
}

const siteColumns = `id, customer_id, name, domain, config, status, port, url,
       created_at, updated_at`

// CreateSite inserts a site for customerID after a transactional quota
// check.  The customer row is locked for the duration so concurrent
// creations serialize per customer.  Fails with ErrNotFound (customer),
// ErrQuotaExceeded, or ErrDuplicateSite.
func (s *Store) CreateSite(ctx context.Context, customerID string, n NewSite) (*Site, error) {
	if n.Name == "" && n.ID == "" {
		return nil, errors.New("site name is required")
	}

	id := n.ID
	if id == "" {
		id = MakeSiteID(n.Name)
	}
	name := n.Name
	if name == "" {
		name = id
	}
	if err := n.Config.Normalize(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var maxSites int
	err = tx.GetContext(ctx, &maxSites,
		`SELECT max_sites FROM customers WHERE id = ? FOR UPDATE`, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, customerID)
		}
		return nil, err
	}

	var owned int
	err = tx.GetContext(ctx, &owned,
		`SELECT COUNT(*) FROM sites WHERE customer_id = ?`, customerID)
	if err != nil {
		return nil, err
	}
	if owned >= maxSites {
		return nil, fmt.Errorf("%w: customer %s has %d of %d sites",
			ErrQuotaExceeded, customerID, owned, maxSites)
	}

	site := &Site{
		ID:         id,
		CustomerID: customerID,
		Name:       name,
		Config:     n.Config,
		Status:     StatusCreated,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	site.UpdatedAt = site.CreatedAt
	if n.Domain != "" {
		site.Domain = &n.Domain
	}
	if n.Port != 0 {
		site.Port = &n.Port
	}
	if n.URL != "" {
		site.URL = &n.URL
	}

	const q = `
        INSERT INTO sites (` + siteColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q,
		site.ID, site.CustomerID, site.Name, site.Domain, site.Config,
		site.Status, site.Port, site.URL, site.CreatedAt, site.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSite, site.ID)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return site, nil
}

// GetSite fetches one site by id.
func (s *Store) GetSite(ctx context.Context, id string) (*Site, error) {
	const q = `SELECT ` + siteColumns + ` FROM sites WHERE id = ? LIMIT 1`
	var site Site
	if err := s.db.GetContext(ctx, &site, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: site %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &site, nil
}

// ListSitesForCustomer returns a customer's sites, oldest first.
func (s *Store) ListSitesForCustomer(ctx context.Context, customerID string) ([]Site, error) {
	const q = `SELECT ` + siteColumns + ` FROM sites WHERE customer_id = ? ORDER BY created_at`
	var rows []Site
	if err := s.db.SelectContext(ctx, &rows, q, customerID); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountSitesForCustomer returns the number of sites the customer owns.
func (s *Store) CountSitesForCustomer(ctx context.Context, customerID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM sites WHERE customer_id = ?`, customerID)
	return n, err
}

// siteExtraMutable is the allow-list of extra columns UpdateSiteStatus may
// touch alongside the status itself.
var siteExtraMutable = map[string]struct{}{
	"domain": {},
	"port":   {},
	"url":    {},
}

// UpdateSiteStatus sets a site's status plus optional extra columns (url,
// port, domain).  The value is validated against the enum; transition
// legality is the lifecycle manager's concern.  The write is idempotent:
// re-asserting the current status is not an error.
func (s *Store) UpdateSiteStatus(ctx context.Context, id string, status Status, extra map[string]any) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		if _, ok := siteExtraMutable[k]; !ok {
			return fmt.Errorf("%w: %s", ErrInvalidField, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := []string{"status = ?"}
	args := []any{status}
	for _, k := range keys {
		sets = append(sets, k+" = ?")
		args = append(args, extra[k])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Truncate(time.Second), id)

	q := `UPDATE sites SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

// SiteConfigRaw returns the exact stored bytes of the site's config
// column.  Backups snapshot these bytes verbatim so restores are
// bit-for-bit.
func (s *Store) SiteConfigRaw(ctx context.Context, id string) ([]byte, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, `SELECT config FROM sites WHERE id = ? LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: site %s", ErrNotFound, id)
		}
		return nil, err
	}
	return raw, nil
}

// SetSiteConfigRaw overwrites the site's config column with raw bytes,
// used by backup restore.  The bytes must be valid JSON.
func (s *Store) SetSiteConfigRaw(ctx context.Context, id string, raw []byte) error {
	if !json.Valid(raw) {
		return errors.New("config snapshot is not valid JSON")
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sites SET config = ?, updated_at = ? WHERE id = ?`,
		raw, time.Now().UTC().Truncate(time.Second), id)
	return err
}

// UpdateSiteConfig persists a typed configuration document.
func (s *Store) UpdateSiteConfig(ctx context.Context, id string, doc siteconfig.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.SetSiteConfigRaw(ctx, id, raw)
}
