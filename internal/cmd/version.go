package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newVersionCmd(version, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), formatVersion(version, buildDate))
		},
	}
}

// formatVersion normalizes the ldflags-injected values: a stripped leading
// "v", "DEV" when nothing was stamped, the build date in parentheses when
// one was.
func formatVersion(version, buildDate string) string {
	v := strings.TrimPrefix(strings.TrimSpace(version), "v")
	if v == "" {
		v = "DEV"
	}
	out := "tagforge version " + v
	if d := strings.TrimSpace(buildDate); d != "" {
		out += " (" + d + ")"
	}
	return out
}
