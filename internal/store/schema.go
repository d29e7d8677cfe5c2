// internal/store/schema.go
//
// Schema bootstrap and control-plane statistics.
//
// Context
// -------
// `InitSchema` creates the four control-plane tables if they do not exist.
// It is invoked by `lowebi init` and safe to re-run.  `site_deployments`
// is owned by the deployment collaborator—the control plane only creates
// the table and reads counts from it for the status command.
package store

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
        id               VARCHAR(64)  PRIMARY KEY,
        email            VARCHAR(256) NOT NULL,
        name             VARCHAR(256) NOT NULL,
        company_name     VARCHAR(256) NOT NULL DEFAULT '',
        plan_type        VARCHAR(32)  NOT NULL DEFAULT 'starter',
        status           VARCHAR(32)  NOT NULL DEFAULT 'active',
        max_sites        INT          NOT NULL DEFAULT 1,
        max_storage_mb   INT          NOT NULL DEFAULT 512,
        max_bandwidth_gb INT          NOT NULL DEFAULT 10,
        metadata         JSON         NULL,
        created_at       TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at       TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
        UNIQUE KEY uq_customers_email (email)
    )`,
	`CREATE TABLE IF NOT EXISTS sites (
        id          VARCHAR(64)  PRIMARY KEY,
        customer_id VARCHAR(64)  NOT NULL,
        name        VARCHAR(256) NOT NULL,
        domain      VARCHAR(256) NULL,
        config      JSON         NOT NULL,
        status      VARCHAR(32)  NOT NULL DEFAULT 'created',
        port        INT          NULL,
        url         VARCHAR(512) NULL,
        created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
        KEY idx_sites_customer (customer_id),
        CONSTRAINT fk_sites_customer FOREIGN KEY (customer_id) REFERENCES customers (id)
    )`,
	`CREATE TABLE IF NOT EXISTS site_backups (
        id              VARCHAR(64)  PRIMARY KEY,
        site_id         VARCHAR(64)  NOT NULL,
        backup_name     VARCHAR(256) NOT NULL,
        config_snapshot JSON         NOT NULL,
        created_by      VARCHAR(128) NOT NULL DEFAULT 'system',
        backup_type     VARCHAR(32)  NOT NULL DEFAULT 'manual',
        created_at      TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
        KEY idx_backups_site (site_id),
        CONSTRAINT fk_backups_site FOREIGN KEY (site_id) REFERENCES sites (id)
    )`,
	`CREATE TABLE IF NOT EXISTS site_deployments (
        id          BIGINT       PRIMARY KEY AUTO_INCREMENT,
        site_id     VARCHAR(64)  NOT NULL,
        status      VARCHAR(32)  NOT NULL DEFAULT 'pending',
        detail      TEXT         NULL,
        created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
        KEY idx_deployments_site (site_id)
    )`,
}

// InitSchema creates the control-plane tables.  Idempotent.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Stats is the aggregate snapshot shown by `lowebi status`.
type Stats struct {
	Customers     int            `json:"customers"`
	Sites         int            `json:"sites"`
	SitesByStatus map[Status]int `json:"sites_by_status"`
	Backups       int            `json:"backups"`
	Deployments   int            `json:"deployments"`
}

// CollectStats gathers row counts across the control-plane tables.
func (s *Store) CollectStats(ctx context.Context) (*Stats, error) {
	st := &Stats{SitesByStatus: make(map[Status]int)}

	if err := s.db.GetContext(ctx, &st.Customers,
		`SELECT COUNT(*) FROM customers`); err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &st.Sites,
		`SELECT COUNT(*) FROM sites`); err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &st.Backups,
		`SELECT COUNT(*) FROM site_backups`); err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &st.Deployments,
		`SELECT COUNT(*) FROM site_deployments`); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM sites GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		st.SitesByStatus[status] = n
	}
	return st, rows.Err()
}

// DeploymentCount returns the number of deployment records for one site.
func (s *Store) DeploymentCount(ctx context.Context, siteID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM site_deployments WHERE site_id = ?`, siteID)
	return n, err
}
