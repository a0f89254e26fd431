package kern

import (
	"context"
	"fmt"

	"github.com/kettlebent/tagforge/internal/invoke"
	"github.com/kettlebent/tagforge/internal/versions"
)

// DefaultAnvilPyBuilder builds interpreted anvilPy projects when the
// manifest does not name a builder of its own.
const DefaultAnvilPyBuilder = "python3 -m build"

// CustomStrategy runs the manifest-declared build command through the
// shell. It covers every non-native kern.
type CustomStrategy struct {
	Runner invoke.Runner
	Kern   string
}

func (s *CustomStrategy) Name() string { return "custom" }

func (s *CustomStrategy) Build(ctx context.Context, t Target) error {
	cmd := t.BuilderCommand
	if cmd == "" {
		if s.Kern != versions.KernAnvilPy {
			return fmt.Errorf("kern %q declares no build command", s.Kern)
		}
		cmd = DefaultAnvilPyBuilder
	}
	res, err := invoke.Shell(ctx, s.Runner, t.Dir, cmd)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &ToolError{Tool: cmd, Code: res.ExitCode, Stderr: res.Stderr}
	}
	return nil
}
