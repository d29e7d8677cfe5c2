// Package metrics holds Prometheus instruments that are used across the
// control plane.  All collectors are registered with the global registry,
// so importing this package in main.go is enough to expose them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SitesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sites_created_total",
			Help: "Cumulative number of sites created.",
		})

	QuotaRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quota_rejections_total",
			Help: "Cumulative number of site creations rejected by quota.",
		})

	PatchesAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patches_applied_total",
			Help: "Cumulative number of successfully published hot patches.",
		}, []string{"type"})

	PatchRollbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patch_rollbacks_total",
			Help: "Cumulative number of hot patches rolled back.",
		}, []string{"type"})

	PatchesInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "patches_in_flight",
			Help: "Number of hot patches currently holding a site lock.",
		})

	SitesMigratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sites_migrated_total",
			Help: "Cumulative number of legacy sites imported by the migrator.",
		})

	MigrationErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "migration_errors_total",
			Help: "Cumulative number of per-site migration failures.",
		})

	BackupsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backups_created_total",
			Help: "Cumulative number of configuration backups created.",
		})
)

func init() {
	prometheus.MustRegister(
		SitesCreatedTotal,
		QuotaRejectionsTotal,
		PatchesAppliedTotal,
		PatchRollbacksTotal,
		PatchesInFlight,
		SitesMigratedTotal,
		MigrationErrorsTotal,
		BackupsCreatedTotal,
	)
}
