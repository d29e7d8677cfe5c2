// internal/migrate/migrator.go
//
// Legacy configuration importer.
//
// Context
// -------
// The previous generation of the platform kept one directory per site,
// each holding a `config.json`.  The migrator walks that root and loads
// every site into the tenant store under a lazily-created default
// customer.  It is idempotent and resumable: directories whose site id
// already exists are skipped without error, and per-site failures are
// collected into the summary instead of aborting the batch, because a
// malformed legacy entry must not block migration of the rest.
//
// Sites are processed with bounded parallelism; each creation is itself
// transactionally safe, so concurrent imports cannot break the quota
// invariant.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mocher01/lowebi-sub005/internal/metrics"
	"github.com/mocher01/lowebi-sub005/internal/siteconfig"
	"github.com/mocher01/lowebi-sub005/internal/store"
)

// DefaultCustomerEmail identifies the customer that adopts legacy sites
// until real ownership is assigned.
const DefaultCustomerEmail = "legacy-import@lowebi.local"

// legacyMaxSites is effectively unlimited; legacy imports predate quotas.
const legacyMaxSites = 100000

const defaultConcurrency = 4

// Store is the slice of the tenant store the migrator needs.
type Store interface {
	GetSite(ctx context.Context, id string) (*store.Site, error)
	GetCustomerByEmail(ctx context.Context, email string) (*store.Customer, error)
	CreateCustomer(ctx context.Context, n store.NewCustomer) (*store.Customer, error)
	CreateSite(ctx context.Context, customerID string, n store.NewSite) (*store.Site, error)
}

// SiteError records one failed import.
type SiteError struct {
	SiteID string `json:"site_id"`
	Error  string `json:"error"`
}

// Summary is the result of one migration run.
type Summary struct {
	Migrated int         `json:"migrated_count"`
	Skipped  int         `json:"skipped_count"`
	Errors   []SiteError `json:"errors"`
}

// Migrator bulk-loads legacy site directories into the store.
type Migrator struct {
	store       Store
	root        string
	concurrency int
	log         *zap.SugaredLogger

	custOnce sync.Once
	custID   string
	custErr  error
}

// New returns a Migrator over the legacy root directory.
func New(st Store, root string, log *zap.SugaredLogger) *Migrator {
	return &Migrator{store: st, root: root, concurrency: defaultConcurrency, log: log}
}

// legacySite is the shape of a legacy per-directory config file.  The
// document fields sit alongside name and domain at the top level.
type legacySite struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	siteconfig.Document
}

// Run walks the legacy root and imports every site directory.  The
// returned Summary is valid even when err is nil and Errors is non-empty;
// only a failure to read the root itself aborts the run.
func (m *Migrator) Run(ctx context.Context) (*Summary, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("read legacy root %s: %w", m.root, err)
	}

	var (
		mu  sync.Mutex
		sum Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		siteID := entry.Name()

		g.Go(func() error {
			outcome, err := m.importSite(gctx, siteID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				metrics.MigrationErrorsTotal.Inc()
				sum.Errors = append(sum.Errors, SiteError{SiteID: siteID, Error: err.Error()})
			case outcome == outcomeSkipped:
				sum.Skipped++
			default:
				metrics.SitesMigratedTotal.Inc()
				sum.Migrated++
			}
			// Per-site failures never abort the batch.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(sum.Errors, func(i, j int) bool {
		return sum.Errors[i].SiteID < sum.Errors[j].SiteID
	})

	m.log.Infow("migration finished",
		"root", m.root,
		"migrated", sum.Migrated,
		"skipped", sum.Skipped,
		"errors", len(sum.Errors),
	)
	return &sum, nil
}

type importOutcome int

const (
	outcomeMigrated importOutcome = iota
	outcomeSkipped
)

// importSite loads one legacy directory.  Skips without error when the
// site already exists.
func (m *Migrator) importSite(ctx context.Context, siteID string) (importOutcome, error) {
	_, err := m.store.GetSite(ctx, siteID)
	switch {
	case err == nil:
		m.log.Debugw("legacy site already migrated", "site", siteID)
		return outcomeSkipped, nil
	case !errors.Is(err, store.ErrNotFound):
		return 0, fmt.Errorf("check existing site: %w", err)
	}

	cfgPath := filepath.Join(m.root, siteID, "config.json")
	raw, err := os.ReadFile(cfgPath)
	if err != nil {
		return 0, fmt.Errorf("read legacy config: %w", err)
	}

	var legacy legacySite
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return 0, fmt.Errorf("parse legacy config: %w", err)
	}
	if err := legacy.Document.Normalize(); err != nil {
		return 0, err
	}
	if legacy.Name == "" {
		legacy.Name = siteID
	}

	custID, err := m.defaultCustomer(ctx)
	if err != nil {
		return 0, err
	}

	_, err = m.store.CreateSite(ctx, custID, store.NewSite{
		ID:     siteID,
		Name:   legacy.Name,
		Domain: legacy.Domain,
		Config: legacy.Document,
	})
	if err != nil {
		return 0, fmt.Errorf("create site: %w", err)
	}

	m.log.Infow("legacy site migrated", "site", siteID, "customer", custID)
	return outcomeMigrated, nil
}

// defaultCustomer resolves or lazily creates the legacy-import customer.
// The sync.Once keeps parallel imports from racing on creation.
func (m *Migrator) defaultCustomer(ctx context.Context) (string, error) {
	m.custOnce.Do(func() {
		c, err := m.store.GetCustomerByEmail(ctx, DefaultCustomerEmail)
		if err == nil {
			m.custID = c.ID
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			m.custErr = err
			return
		}

		created, err := m.store.CreateCustomer(ctx, store.NewCustomer{
			Email:    DefaultCustomerEmail,
			Name:     "Legacy Import",
			PlanType: "legacy",
			MaxSites: legacyMaxSites,
		})
		if err != nil {
			m.custErr = err
			return
		}
		m.custID = created.ID
		m.log.Infow("default legacy customer created", "customer", created.ID)
	})
	return m.custID, m.custErr
}
