package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kettlebent/tagforge/internal/ops"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [tag]",
		Short: "Show a version's build state, or list all versions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runQuery,
	}

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	opts, err := mergedOptions(cmd)
	if err != nil {
		return err
	}
	orch, err := newOrchestrator(cmd, opts)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		reports, err := orch.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, rep := range reports {
			printReport(cmd, rep)
		}
		return nil
	}

	rep, err := orch.Query(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printReport(cmd, rep)
	return nil
}

func printReport(cmd *cobra.Command, rep ops.QueryReport) {
	state := "not built"
	if rep.Built {
		state = "built"
	}
	if rep.Stale {
		state += " (manifest flag is stale)"
	}

	marks := ""
	if rep.IsLatest {
		marks += " latest"
	}
	if rep.Entry.BaseOnly {
		marks += " base-only"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s%s\n",
		rep.Entry.Label, rep.Entry.Kind, state, rep.Entry.Desc, marks)
}
