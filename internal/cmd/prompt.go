package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// confirmWrite asks before clobbering an existing file. Writes to paths
// that do not exist yet never prompt.
func confirmWrite(cmd *cobra.Command, dangerousInline bool, target string) error {
	if dangerousInline {
		return nil
	}

	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check write target %s: %w", target, err)
	}
	if info.IsDir() {
		return fmt.Errorf("write target is a directory: %s", target)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Overwrite %s? [y/N]: ", target)

	input, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && len(input) == 0 {
		return fmt.Errorf("write aborted for %s (no confirmation provided; use --dangerous-inline to skip prompts)", target)
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return nil
	}
	return fmt.Errorf("write aborted for %s", target)
}
