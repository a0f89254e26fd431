package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// childExitError forwards the executed artifact's exit status through the
// CLI's exit protocol.
type childExitError struct {
	code int
}

func (e *childExitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *childExitError) ExitCode() int { return e.code }

func newRunCmd() *cobra.Command {
	var noBuild bool

	cmd := &cobra.Command{
		Use:   "run [tag] [-- args...]",
		Short: "Run a version's artifact, building it first when needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mergedOptions(cmd)
			if err != nil {
				return err
			}
			orch, err := newOrchestrator(cmd, opts)
			if err != nil {
				return err
			}
			orch.Opts.NoBuild = noBuild

			tag := ""
			var childArgs []string
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				tag = tagArg(args[:dash])
				childArgs = args[dash:]
			} else {
				tag = tagArg(args)
				if len(args) > 1 {
					childArgs = args[1:]
				}
			}

			code, err := orch.Run(cmd.Context(), tag, childArgs)
			if err != nil {
				return err
			}
			if code != 0 {
				return &childExitError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBuild, "no-build", false, "Fail instead of building a missing artifact")

	return cmd
}
