package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a version's built artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mergedOptions(cmd)
			if err != nil {
				return err
			}
			orch, err := newOrchestrator(cmd, opts)
			if err != nil {
				return err
			}

			if err := orch.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	return cmd
}

func newPurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every built artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mergedOptions(cmd)
			if err != nil {
				return err
			}
			orch, err := newOrchestrator(cmd, opts)
			if err != nil {
				return err
			}

			removed, err := orch.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d artifact(s)\n", removed)
			return nil
		},
	}

	return cmd
}
