// cmd/lowebi/main.go
//
// Lowebi control plane – CLI entry point.
//
// Command map
// -----------
//
//	init      – create the control-plane schema.
//	migrate   – import legacy per-directory site configs.
//	backup    – create / restore / list configuration snapshots.
//	patch     – list patch types, apply a hot patch.
//	status    – control-plane statistics.
//	serve     – run the admin HTTP API.
//
// Each command bootstraps the same app aggregate: config → logger →
// database → components.  Bootstrap happens inside RunE so `lowebi help`
// never touches the database.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmoiron/sqlx"

	"github.com/mocher01/lowebi-sub005/internal/artifact"
	"github.com/mocher01/lowebi-sub005/internal/backup"
	"github.com/mocher01/lowebi-sub005/internal/config"
	"github.com/mocher01/lowebi-sub005/internal/database"
	"github.com/mocher01/lowebi-sub005/internal/deploy"
	"github.com/mocher01/lowebi-sub005/internal/lifecycle"
	"github.com/mocher01/lowebi-sub005/internal/logger"
	"github.com/mocher01/lowebi-sub005/internal/migrate"
	"github.com/mocher01/lowebi-sub005/internal/patch"
	"github.com/mocher01/lowebi-sub005/internal/store"
)

var version = "dev" // set by the linker

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lowebi",
		Short: "Lowebi control plane: tenant/site lifecycle and hot patching",
		Long: `lowebi is the control plane of the Lowebi website-generation
platform.  It tracks which customer owns which generated site, enforces
per-customer quotas, records the deployment lifecycle, and applies
categorized hot patches with backup-before-mutate and rollback-on-failure.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(
		newInitCmd(),
		newMigrateCmd(),
		newBackupCmd(),
		newPatchCmd(),
		newStatusCmd(),
		newServeCmd(),
	)
	return cmd
}

//
// app aggregate
//

// app bundles the wired components every command works with.
type app struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	db        *sqlx.DB
	store     *store.Store
	lifecycle *lifecycle.Manager
	backups   *backup.Manager
	engine    *patch.Engine
	migrator  *migrate.Migrator
}

// newApp loads configuration, starts the logger, connects the database,
// and wires the component graph.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Paths.Root, runningInTTY(), cfg.Debug)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	st := store.New(db)
	tree := artifact.NewTree(cfg.Paths.SitesDir)

	var syncer deploy.Syncer
	if cfg.Deploy.DryRun || cfg.Deploy.Target == "" {
		syncer = deploy.NewNopSyncer(log)
	} else {
		syncer = deploy.NewExecSyncer(cfg.Deploy.Target, cfg.Deploy.RestartCommand, log)
	}

	bm := backup.New(st, log)

	a := &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		store:     st,
		lifecycle: lifecycle.New(st, log),
		backups:   bm,
		engine:    patch.NewEngine(st, bm, syncer, tree, log),
	}
	if cfg.Paths.LegacyConfigDir != "" {
		a.migrator = migrate.New(st, cfg.Paths.LegacyConfigDir, log)
	}
	return a, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	_ = a.db.Close()
	_ = a.log.Sync()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
