package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kettlebent/tagforge/internal/anvil"
	"github.com/kettlebent/tagforge/internal/ops"
)

func newLintCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Validate the project manifest without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mergedOptions(cmd)
			if err != nil {
				return err
			}

			target := file
			if target == "" {
				target = filepath.Join(opts.BinDir, anvil.DefaultFileName)
			}

			if err := anvil.Lint(target); err != nil {
				return ops.Classify(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Manifest path (defaults to <dir>/forge.lock)")

	return cmd
}
