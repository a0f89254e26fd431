package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kettlebent/tagforge/internal/testrunner"
)

func newTestCmd() *cobra.Command {
	var (
		record bool
		all    bool
		suite  bool
	)

	cmd := &cobra.Command{
		Use:   "test [tag]",
		Short: "Check a version's output against its recorded golden",
		Long: `Check a version's artifact output against the golden files recorded
next to it. Without a tag the latest version is tested. --all sweeps every
test-capable version; --suite runs the standalone suite executables from the
project's tests directory instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mergedOptions(cmd)
			if err != nil {
				return err
			}
			orch, err := newOrchestrator(cmd, opts)
			if err != nil {
				return err
			}

			switch {
			case suite:
				sum, err := orch.Suite(cmd.Context(), record)
				printSummary(cmd, sum)
				return err
			case all:
				sum, err := orch.TestAll(cmd.Context(), record)
				printSummary(cmd, sum)
				return err
			default:
				out, err := orch.Test(cmd.Context(), tagArg(args), record)
				if out.Label != "" {
					printOutcome(cmd, out)
				}
				return err
			}
		},
	}

	cmd.Flags().BoolVarP(&record, "record", "b", false, "Rewrite the golden files instead of comparing")
	cmd.Flags().BoolVar(&all, "all", false, "Test every test-capable version, oldest first")
	cmd.Flags().BoolVar(&suite, "suite", false, "Run the project's standalone test suites")
	cmd.MarkFlagsMutuallyExclusive("all", "suite")

	return cmd
}

func printOutcome(cmd *cobra.Command, o testrunner.Outcome) {
	if o.Reason != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", o.Label, o.Status, o.Reason)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", o.Label, o.Status)
}

func printSummary(cmd *cobra.Command, sum testrunner.Summary) {
	for _, o := range sum.Outcomes {
		printOutcome(cmd, o)
	}
	if len(sum.Outcomes) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "passed %d, failed %d, recorded %d\n",
			sum.Passed(), sum.Failed(), sum.Recorded())
	}
}
