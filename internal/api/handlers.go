// internal/api/handlers.go
//
// Endpoint handlers and error mapping for the admin surface.
//
// Every handler decodes, calls exactly one core operation, and writes the
// result.  The error mapper translates the store/lifecycle/patch taxonomy
// into HTTP statuses; unknown errors become 500 with the detail logged,
// not leaked.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mocher01/lowebi-sub005/internal/lifecycle"
	"github.com/mocher01/lowebi-sub005/internal/patch"
	"github.com/mocher01/lowebi-sub005/internal/store"
)

//
// helpers
//

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			s.log.Errorw("response encode failed", "err", err)
		}
	}
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	type errBody struct {
		Error string `json:"error"`
	}

	var status int
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, patch.ErrUnknownPatchType):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicateSite),
		errors.Is(err, store.ErrQuotaExceeded),
		errors.Is(err, patch.ErrPatchInProgress),
		errors.Is(err, patch.ErrSiteNotDeployable):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidField),
		errors.Is(err, store.ErrInvalidStatus),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
		s.log.Errorw("request failed", "err", err)
	}

	s.respond(w, status, errBody{Error: err.Error()})
}

func decodeBody[T any](r *http.Request) (*T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

//
// customers
//

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListCustomers(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, rows)
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	type body struct {
		Email          string         `json:"email"`
		Name           string         `json:"name"`
		CompanyName    string         `json:"company_name"`
		PlanType       string         `json:"plan_type"`
		MaxSites       int            `json:"max_sites"`
		MaxStorageMB   int            `json:"max_storage_mb"`
		MaxBandwidthGB int            `json:"max_bandwidth_gb"`
		Metadata       map[string]any `json:"metadata"`
	}
	b, err := decodeBody[body](r)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	c, err := s.store.CreateCustomer(r.Context(), store.NewCustomer{
		Email:          b.Email,
		Name:           b.Name,
		CompanyName:    b.CompanyName,
		PlanType:       b.PlanType,
		MaxSites:       b.MaxSites,
		MaxStorageMB:   b.MaxStorageMB,
		MaxBandwidthGB: b.MaxBandwidthGB,
		Metadata:       b.Metadata,
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, c)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}

	owned, err := s.store.CountSitesForCustomer(r.Context(), c.ID)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respond(w, http.StatusOK, struct {
		*store.Customer
		SiteCount int `json:"site_count"`
	}{c, owned})
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeBody[map[string]any](r)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.store.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), *fields); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

//
// sites
//

func (s *Server) listSites(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListSitesForCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, rows)
}

func (s *Server) createSite(w http.ResponseWriter, r *http.Request) {
	type body struct {
		Name   string `json:"name"`
		Domain string `json:"domain"`
	}
	b, err := decodeBody[body](r)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	site, err := s.lifecycle.CreateSite(r.Context(), chi.URLParam(r, "id"),
		store.NewSite{Name: b.Name, Domain: b.Domain})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, site)
}

func (s *Server) getSite(w http.ResponseWriter, r *http.Request) {
	site, err := s.store.GetSite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}

	// Deployment records are written by the deployment collaborator; the
	// detail view only surfaces the count.
	deployments, err := s.store.DeploymentCount(r.Context(), site.ID)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respond(w, http.StatusOK, struct {
		*store.Site
		Deployments int `json:"deployment_count"`
	}{site, deployments})
}

func (s *Server) advanceStatus(w http.ResponseWriter, r *http.Request) {
	type body struct {
		Status string         `json:"status"`
		Extra  map[string]any `json:"extra"`
	}
	b, err := decodeBody[body](r)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	site, err := s.lifecycle.AdvanceStatus(r.Context(), chi.URLParam(r, "id"),
		store.Status(b.Status), b.Extra)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, site)
}

//
// backups
//

func (s *Server) listBackups(w http.ResponseWriter, r *http.Request) {
	rows, err := s.backups.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, rows)
}

func (s *Server) createBackup(w http.ResponseWriter, r *http.Request) {
	type body struct {
		Label     string `json:"label"`
		CreatedBy string `json:"created_by"`
	}
	b, err := decodeBody[body](r)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	bkp, err := s.backups.Create(r.Context(), chi.URLParam(r, "id"),
		b.Label, b.CreatedBy, store.BackupManual)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, bkp)
}

func (s *Server) restoreBackup(w http.ResponseWriter, r *http.Request) {
	site, err := s.backups.Restore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, site)
}

//
// patching
//

func (s *Server) patchTypes(w http.ResponseWriter, _ *http.Request) {
	type entry struct {
		Type        patch.Type `json:"type"`
		Description string     `json:"description"`
	}
	types := s.engine.Types()
	out := make([]entry, 0, len(types))
	for _, t := range types {
		out = append(out, entry{Type: t, Description: s.engine.Describe(t)})
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) applyPatch(w http.ResponseWriter, r *http.Request) {
	type body struct {
		Type    string        `json:"type"`
		Options patch.Options `json:"options"`
	}
	b, err := decodeBody[body](r)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := s.engine.Apply(r.Context(), chi.URLParam(r, "id"),
		patch.Type(b.Type), b.Options)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, res)
}

//
// operations
//

func (s *Server) runMigration(w http.ResponseWriter, r *http.Request) {
	if s.migrator == nil {
		s.respond(w, http.StatusNotFound,
			map[string]string{"error": "no legacy config directory configured"})
		return
	}
	sum, err := s.migrator.Run(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, sum)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.CollectStats(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, st)
}
