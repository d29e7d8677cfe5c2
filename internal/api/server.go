// internal/api/server.go
//
// Admin HTTP surface.
//
// Context
// -------
// The wizard, dashboards, and deployment tooling are external
// collaborators; this router is the thin surface they call.  Every
// endpoint is a pass-through to a core component—no business logic lives
// here, only decoding, dispatch, and error mapping.
//
// There is no authentication on purpose: the platform proxy in front of
// the control plane terminates operator identity (auth is out of scope
// for this service).
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mocher01/lowebi-sub005/internal/backup"
	"github.com/mocher01/lowebi-sub005/internal/lifecycle"
	"github.com/mocher01/lowebi-sub005/internal/migrate"
	"github.com/mocher01/lowebi-sub005/internal/patch"
	"github.com/mocher01/lowebi-sub005/internal/store"
)

// Server bundles the core components behind HTTP handlers.
type Server struct {
	store     *store.Store
	lifecycle *lifecycle.Manager
	backups   *backup.Manager
	engine    *patch.Engine
	migrator  *migrate.Migrator
	log       *zap.SugaredLogger
}

// New wires a Server.  migrator may be nil when no legacy root is
// configured; the /migrate endpoint then answers 404.
func New(st *store.Store, lm *lifecycle.Manager, bm *backup.Manager,
	en *patch.Engine, mig *migrate.Migrator, log *zap.SugaredLogger) *Server {
	return &Server{store: st, lifecycle: lm, backups: bm, engine: en, migrator: mig, log: log}
}

// Router builds the chi router for the admin surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", s.listCustomers)
		r.Post("/", s.createCustomer)
		r.Get("/{id}", s.getCustomer)
		r.Patch("/{id}", s.updateCustomer)
		r.Get("/{id}/sites", s.listSites)
		r.Post("/{id}/sites", s.createSite)
	})

	r.Route("/sites/{id}", func(r chi.Router) {
		r.Get("/", s.getSite)
		r.Post("/status", s.advanceStatus)
		r.Get("/backups", s.listBackups)
		r.Post("/backups", s.createBackup)
		r.Post("/patch", s.applyPatch)
	})

	r.Post("/backups/{id}/restore", s.restoreBackup)
	r.Get("/patch/types", s.patchTypes)
	r.Post("/migrate", s.runMigration)
	r.Get("/status", s.stats)

	return r
}

// logRequests is a minimal access-log middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		s.log.Debugw("request", "method", r.Method, "path", r.URL.Path)
	})
}
