// cmd/lowebi/patch.go
//
// Patch subcommands: types, apply.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mocher01/lowebi-sub005/internal/patch"
)

func newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Apply hot patches to deployed sites",
	}
	cmd.AddCommand(newPatchTypesCmd(), newPatchApplyCmd())
	return cmd
}

func newPatchTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered patch types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			for _, t := range a.engine.Types() {
				fmt.Printf("%-10s %s\n", t, a.engine.Describe(t))
			}
			return nil
		},
	}
}

func newPatchApplyCmd() *cobra.Command {
	var optionsJSON string

	cmd := &cobra.Command{
		Use:   "apply <site-id> <type>",
		Short: "Apply one hot patch to a deployed site",
		Long: `Apply validates the site, snapshots its configuration, runs the
typed patch handler, and publishes the result.  On handler or publish
failure the snapshot is restored automatically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var opts patch.Options
			if optionsJSON != "" {
				if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
					return fmt.Errorf("parse --options: %w", err)
				}
			}

			res, err := a.engine.Apply(cmd.Context(), args[0], patch.Type(args[1]), opts)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVarP(&optionsJSON, "options", "o", "", "patch options as a JSON object")
	return cmd
}
