// cmd/lowebi/backup.go
//
// Backup subcommands: create, restore, list.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mocher01/lowebi-sub005/internal/store"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage site configuration snapshots",
	}
	cmd.AddCommand(newBackupCreateCmd(), newBackupRestoreCmd(), newBackupListCmd())
	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	var label, creator string

	cmd := &cobra.Command{
		Use:   "create <site-id>",
		Short: "Snapshot a site's stored configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			b, err := a.backups.Create(cmd.Context(), args[0], label, creator, store.BackupManual)
			if err != nil {
				return err
			}
			fmt.Printf("backup %s (%s) created for site %s\n", b.ID, b.Name, b.SiteID)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "snapshot label (default: backup-<timestamp>)")
	cmd.Flags().StringVar(&creator, "creator", "", "who requested the snapshot (default: system)")
	return cmd
}

func newBackupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Restore a site's configuration from a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			site, err := a.backups.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("site %s restored from backup %s\n", site.ID, args[0])
			return nil
		},
	}
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <site-id>",
		Short: "List a site's snapshots, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.backups.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, b := range rows {
				fmt.Printf("%s  %-24s  %-9s  %s  by %s\n",
					b.ID, b.Name, b.Type, b.CreatedAt.Format("2006-01-02 15:04:05"), b.CreatedBy)
			}
			return nil
		},
	}
}
