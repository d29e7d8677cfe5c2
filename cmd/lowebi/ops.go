// cmd/lowebi/ops.go
//
// Operational subcommands: init, migrate, status, serve.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mocher01/lowebi-sub005/internal/api"
	"github.com/mocher01/lowebi-sub005/internal/migrate"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the control-plane schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.InitSchema(cmd.Context()); err != nil {
				return err
			}
			a.log.Infow("schema ready")
			fmt.Println("schema ready")
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [legacy-dir]",
		Short: "Import legacy per-directory site configurations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			mig := a.migrator
			if len(args) == 1 {
				mig = migrate.New(a.store, args[0], a.log)
			}
			if mig == nil {
				return fmt.Errorf("no legacy directory: pass one or set paths.legacy_config_dir")
			}

			sum, err := mig.Run(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(sum)
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show control-plane statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.store.CollectStats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(st)
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			srv := api.New(a.store, a.lifecycle, a.backups, a.engine, a.migrator, a.log)
			a.log.Infow("admin API listening", "addr", a.cfg.HTTP.ListenAddr)
			return http.ListenAndServe(a.cfg.HTTP.ListenAddr, srv.Router())
		},
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
