// internal/lifecycle/manager.go
//
// Site lifecycle manager.
//
// Context
// -------
// The Manager is the only component that moves a site between lifecycle
// statuses.  It layers two validations on top of the store: the quota
// check on creation (delegated to the store's transactional CreateSite)
// and the state-machine check on every status change.  Other components
// receive a *Manager, never raw status-write access.
//
// Notes
// -----
// • Quota and transition rejections are expected operator-facing errors;
//   they are logged at Info, not Error.
// • Oxford commas, two spaces after periods.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mocher01/lowebi-sub005/internal/metrics"
	"github.com/mocher01/lowebi-sub005/internal/store"
)

// ErrInvalidTransition is returned when a requested status change is not
// an edge of the state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

// Manager enforces quotas and status transitions.
type Manager struct {
	store *store.Store
	log   *zap.SugaredLogger
}

// New returns a Manager over the tenant store.
func New(st *store.Store, log *zap.SugaredLogger) *Manager {
	return &Manager{store: st, log: log}
}

// CreateSite creates a site for a customer, enforcing the site quota.
// The count-then-insert sequence runs inside one store transaction.
func (m *Manager) CreateSite(ctx context.Context, customerID string, data store.NewSite) (*store.Site, error) {
	site, err := m.store.CreateSite(ctx, customerID, data)
	if err != nil {
		if errors.Is(err, store.ErrQuotaExceeded) {
			metrics.QuotaRejectionsTotal.Inc()
			m.log.Infow("site creation rejected by quota",
				"customer", customerID, "name", data.Name)
		}
		return nil, err
	}

	metrics.SitesCreatedTotal.Inc()
	m.log.Infow("site created",
		"site", site.ID, "customer", customerID, "status", site.Status)
	return site, nil
}

// AdvanceStatus moves a site to a new status if the edge is permitted,
// optionally updating url, port, or domain via extra.  Returns the
// updated site.
func (m *Manager) AdvanceStatus(ctx context.Context, siteID string, next store.Status, extra map[string]any) (*store.Site, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidStatus, next)
	}

	site, err := m.store.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(site.Status, next) {
		return nil, fmt.Errorf("%w: %s → %s (site %s; allowed: %v)",
			ErrInvalidTransition, site.Status, next, siteID, AllowedFrom(site.Status))
	}

	if err := m.store.UpdateSiteStatus(ctx, siteID, next, extra); err != nil {
		return nil, err
	}

	m.log.Infow("site status advanced",
		"site", siteID, "from", site.Status, "to", next)

	site.Status = next
	return site, nil
}

// Archive decommissions a site.  Allowed from every status except
// archived itself.
func (m *Manager) Archive(ctx context.Context, siteID string) (*store.Site, error) {
	return m.AdvanceStatus(ctx, siteID, store.StatusArchived, nil)
}
