package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var (
		makeTarget    string
		noRebuild     bool
		force         bool
		compiler      string
		configureArgs string
	)

	cmd := &cobra.Command{
		Use:   "build [tag]",
		Short: "Build a version's artifact (latest when no tag is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mergedOptions(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("make-target") {
				opts.MakeTarget = &makeTarget
			}
			if noRebuild {
				incremental := ""
				opts.MakeTarget = &incremental
			}
			if cmd.Flags().Changed("compiler") {
				opts.Compiler = compiler
			}
			if cmd.Flags().Changed("configure-args") {
				opts.ConfigureArgs = configureArgs
			}

			orch, err := newOrchestrator(cmd, opts)
			if err != nil {
				return err
			}
			orch.Opts.Force = force

			tag := tagArg(args)
			if err := orch.Build(cmd.Context(), tag); err != nil {
				return err
			}
			rep, err := orch.Query(cmd.Context(), tag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %s: %s\n", rep.Entry.Label, rep.ArtifactPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&makeTarget, "make-target", "", "Make target override for make-era versions")
	cmd.Flags().BoolVar(&noRebuild, "no-rebuild", false, "Use a plain incremental make instead of the full-rebuild target")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when the artifact already exists")
	cmd.Flags().StringVar(&compiler, "compiler", "", "C compiler for versions without a build system")
	cmd.Flags().StringVar(&configureArgs, "configure-args", "", "Extra arguments for ./configure")

	return cmd
}
