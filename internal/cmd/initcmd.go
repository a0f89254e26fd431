package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kettlebent/tagforge/internal/invoke"
	"github.com/kettlebent/tagforge/internal/ops"
	"github.com/kettlebent/tagforge/internal/scaffold"
)

func newInitCmd() *cobra.Command {
	var (
		force  bool
		noRepo bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a new project with a seed manifest and source tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mergedOptions(cmd)
			if err != nil {
				return err
			}

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve project dir: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create project dir: %w", err)
			}

			mode, err := parseMode(opts.Mode)
			if err != nil {
				return err
			}

			err = scaffold.Generate(cmd.Context(), scaffold.Options{
				Dir:      abs,
				Force:    force,
				InitRepo: mode == ops.GitMode && !noRepo,
				Runner:   &invoke.Exec{},
				ConfirmWrite: func(path string) error {
					return confirmWrite(cmd, opts.DangerousInline || force, path)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized project in %s\n", abs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reinitialize over an existing project")
	cmd.Flags().BoolVar(&noRepo, "no-repo", false, "Skip git init")

	return cmd
}
