// internal/patch/engine.go
//
// Hot-patch engine.
//
// Context
// -------
// The engine applies a bounded, named category of live mutation to an
// already-deployed site.  Every patch follows the same sequence:
//
//	validate → backup → apply → publish | rollback
//
// The backup is taken unconditionally before any mutation, and any
// failure after it—handler or publish—triggers a restore of that backup
// before the original error is surfaced.  A caller must never observe a
// half-applied patch as the persisted state.
//
// Concurrency
// -----------
// At most one patch is in flight per site id; a second request for a busy
// site is rejected with ErrPatchInProgress.  Patches on different sites
// proceed independently.  The in-flight lock is held through publish,
// which can be slow (network copy plus remote restart).
package patch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mocher01/lowebi-sub005/internal/artifact"
	"github.com/mocher01/lowebi-sub005/internal/deploy"
	"github.com/mocher01/lowebi-sub005/internal/metrics"
	"github.com/mocher01/lowebi-sub005/internal/siteconfig"
	"github.com/mocher01/lowebi-sub005/internal/store"
)

// Type names one patch category.
type Type string

const (
	TypeConfig   Type = "config"
	TypeContent  Type = "content"
	TypeAssets   Type = "assets"
	TypeStyle    Type = "style"
	TypeTemplate Type = "template"
)

// Options is the caller-supplied option map, decoded per handler.
type Options map[string]any

// Result is returned to the caller on the success path.
type Result struct {
	Success  bool     `json:"success"`
	Type     Type     `json:"patch_type"`
	SiteID   string   `json:"site_id"`
	BackupID string   `json:"backup_id"`
	Changes  []string `json:"changes"`
	Warning  string   `json:"warning,omitempty"`
}

// Store is the slice of the tenant store the engine and handlers need.
type Store interface {
	GetSite(ctx context.Context, id string) (*store.Site, error)
	UpdateSiteConfig(ctx context.Context, id string, doc siteconfig.Document) error
	UpdateSiteStatus(ctx context.Context, id string, status store.Status, extra map[string]any) error
}

// Backups is the slice of the backup manager the engine needs.
type Backups interface {
	Create(ctx context.Context, siteID, label, creator string, t store.BackupType) (*store.Backup, error)
	Restore(ctx context.Context, backupID string) (*store.Site, error)
}

// AssetProcessor regenerates derived variants (logo sizes, thumbnails) of
// a replaced asset.  Optional; the assets handler skips reprocessing when
// none is configured.
type AssetProcessor interface {
	Process(ctx context.Context, siteID, assetPath string) ([]string, error)
}

// Handler applies one patch category.  Expected domain failures are
// returned as errors; handlers do not panic for bad input.
type Handler func(ctx context.Context, pc *Context, opts Options) (changes []string, err error)

// Context carries everything a handler may touch.
type Context struct {
	Site   *store.Site
	Tree   *artifact.Tree
	Store  Store
	Assets AssetProcessor
	Log    *zap.SugaredLogger
}

// Engine dispatches patches and owns the backup/rollback sequencing.
type Engine struct {
	store   Store
	backups Backups
	syncer  deploy.Syncer
	tree    *artifact.Tree
	assets  AssetProcessor
	log     *zap.SugaredLogger

	mu       sync.Mutex
	inflight map[string]struct{}

	handlers     map[Type]Handler
	descriptions map[Type]string
}

// NewEngine wires the engine and registers the built-in handlers.
func NewEngine(st Store, b Backups, sy deploy.Syncer, tree *artifact.Tree, log *zap.SugaredLogger) *Engine {
	e := &Engine{
		store:        st,
		backups:      b,
		syncer:       sy,
		tree:         tree,
		log:          log,
		inflight:     make(map[string]struct{}),
		handlers:     make(map[Type]Handler),
		descriptions: make(map[Type]string),
	}

	e.Register(TypeConfig, applyConfigPatch,
		"merge partial updates into brand, hero, and integration settings")
	e.Register(TypeContent, applyContentPatch,
		"rewrite blog posts and service descriptions")
	e.Register(TypeAssets, applyAssetsPatch,
		"replace named asset files and reprocess derived variants")
	e.Register(TypeStyle, applyStylePatch,
		"rewrite style-variable declarations in the generated stylesheet")
	e.Register(TypeTemplate, applyTemplatePatch,
		"apply caller-supplied search/replace fixes to generated files")

	return e
}

// Register installs or replaces the handler for a patch type.
func (e *Engine) Register(t Type, h Handler, description string) {
	e.handlers[t] = h
	e.descriptions[t] = description
}

// SetAssetProcessor wires the optional asset-processing collaborator.
func (e *Engine) SetAssetProcessor(p AssetProcessor) { e.assets = p }

// Types returns the registered patch types, sorted.
func (e *Engine) Types() []Type {
	out := make([]Type, 0, len(e.handlers))
	for t := range e.handlers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Describe returns the one-line description of a patch type.
func (e *Engine) Describe(t Type) string { return e.descriptions[t] }

// acquire takes the per-site in-flight lock.
func (e *Engine) acquire(siteID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[siteID]; busy {
		return false
	}
	e.inflight[siteID] = struct{}{}
	metrics.PatchesInFlight.Inc()
	return true
}

func (e *Engine) release(siteID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, siteID)
	metrics.PatchesInFlight.Dec()
}

// Apply runs one patch end to end.  See the package comment for the
// sequencing contract.
func (e *Engine) Apply(ctx context.Context, siteID string, pt Type, opts Options) (*Result, error) {
	handler, ok := e.handlers[pt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPatchType, pt)
	}

	if !e.acquire(siteID) {
		return nil, fmt.Errorf("%w: %s", ErrPatchInProgress, siteID)
	}
	defer e.release(siteID)

	// 1. Validate.  No backup is taken for a validation failure.
	site, err := e.store.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !e.tree.Exists(siteID) {
		return nil, fmt.Errorf("%w: site %s has no generated-artifact tree",
			ErrSiteNotDeployable, siteID)
	}

	// 2. Backup, unconditionally, before any mutation.
	bkp, err := e.backups.Create(ctx, siteID,
		"pre-patch: "+string(pt), "hot-patch-engine", store.BackupPrePatch)
	if err != nil {
		return nil, fmt.Errorf("pre-patch backup for site %s: %w", siteID, err)
	}

	e.log.Infow("applying patch",
		"site", siteID, "type", pt, "backup", bkp.ID)

	// 3. Apply.
	pc := &Context{Site: site, Tree: e.tree, Store: e.store, Assets: e.assets, Log: e.log}
	changes, err := handler(ctx, pc, opts)
	if err != nil {
		return nil, e.rollback(ctx, siteID, bkp.ID, pt,
			&ApplyError{SiteID: siteID, Type: pt, BackupID: bkp.ID, Err: err})
	}

	// 4. Publish, or roll back on any publish failure.
	if err := e.syncer.Push(ctx, siteID, e.tree.Dir(siteID)); err != nil {
		return nil, e.rollback(ctx, siteID, bkp.ID, pt,
			&PublishError{SiteID: siteID, Type: pt, BackupID: bkp.ID, Err: err})
	}
	if err := e.syncer.Restart(ctx, siteID); err != nil {
		return nil, e.rollback(ctx, siteID, bkp.ID, pt,
			&PublishError{SiteID: siteID, Type: pt, BackupID: bkp.ID, Err: err})
	}

	res := &Result{
		Success:  true,
		Type:     pt,
		SiteID:   siteID,
		BackupID: bkp.ID,
		Changes:  changes,
	}

	// 5. Record the publish.  The live instance is already running the new
	// tree, so a stale store record is reported as a warning, not rolled
	// back; the write is idempotent and retried once.
	if err := e.markDeployed(ctx, siteID); err != nil {
		e.log.Errorw("status write after publish failed; store record is stale",
			"site", siteID, "type", pt, "backup", bkp.ID, "err", err)
		res.Warning = fmt.Sprintf("patch published but status write failed: %v", err)
	}

	metrics.PatchesAppliedTotal.WithLabelValues(string(pt)).Inc()
	e.log.Infow("patch published",
		"site", siteID, "type", pt, "backup", bkp.ID, "changes", len(changes))
	return res, nil
}

// rollback restores the pre-patch backup and re-renders the derived
// artifacts so tree and document stay consistent.  It returns cause
// unless the restore itself fails, in which case the compound
// RollbackError takes its place.
func (e *Engine) rollback(ctx context.Context, siteID, backupID string, pt Type, cause error) error {
	e.log.Warnw("rolling back patch",
		"site", siteID, "type", pt, "backup", backupID, "cause", cause)

	site, err := e.backups.Restore(ctx, backupID)
	if err != nil {
		return &RollbackError{SiteID: siteID, BackupID: backupID, Cause: cause, Restore: err}
	}

	e.rerenderDerived(site)
	metrics.PatchRollbacksTotal.WithLabelValues(string(pt)).Inc()
	return cause
}

// rerenderDerived rewrites the artifacts that are deterministic functions
// of the configuration document.  Best effort: a render failure after a
// successful restore is logged, not escalated, because the persisted
// state is already consistent.
func (e *Engine) rerenderDerived(site *store.Site) {
	if err := e.tree.WriteFile(site.ID, siteconfig.StyleVarsPath,
		site.Config.RenderStyleVars()); err != nil {
		e.log.Warnw("style-variable re-render failed", "site", site.ID, "err", err)
	}
	if snippet, err := site.Config.RenderEmbedSnippet(); err == nil {
		if err := e.tree.WriteFile(site.ID, siteconfig.EmbedSnippetPath, snippet); err != nil {
			e.log.Warnw("embed-snippet re-render failed", "site", site.ID, "err", err)
		}
	}
}

// markDeployed re-asserts the deployed status with one retry.
func (e *Engine) markDeployed(ctx context.Context, siteID string) error {
	err := e.store.UpdateSiteStatus(ctx, siteID, store.StatusDeployed, nil)
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return err
	case <-time.After(500 * time.Millisecond):
	}
	return e.store.UpdateSiteStatus(ctx, siteID, store.StatusDeployed, nil)
}
