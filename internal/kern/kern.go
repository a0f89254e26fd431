// Package kern holds the build strategies. Each strategy turns a checked-out
// source tree into the version's binary artifact; selecting between them is
// the version table's job, not theirs.
package kern

import (
	"context"
	"fmt"
	"strings"

	"github.com/kettlebent/tagforge/internal/invoke"
	"github.com/kettlebent/tagforge/internal/versions"
)

// Target describes one build: where to run and what to produce. Dir is the
// version directory in base mode, or the repository worktree in git mode.
type Target struct {
	Dir     string
	Source  string
	BinName string

	// MakeTarget is the make goal; empty means a plain incremental make.
	MakeTarget    string
	ConfigureArgs []string

	// BuilderCommand is the full command line for the custom strategy.
	BuilderCommand string
	// Compiler overrides the default C compiler.
	Compiler string
}

// Strategy builds a target. The artifact must exist at Dir/BinName on
// success; a tool failure comes back as a ToolError.
type Strategy interface {
	Name() string
	Build(ctx context.Context, t Target) error
}

// ToolError is a build tool that ran and failed.
type ToolError struct {
	Tool   string
	Code   int
	Stderr string
}

func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s failed with exit %d", e.Tool, e.Code)
	}
	return fmt.Sprintf("%s failed with exit %d: %s", e.Tool, e.Code, msg)
}

func run(ctx context.Context, r invoke.Runner, dir, name string, args ...string) error {
	res, err := r.Run(ctx, dir, name, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &ToolError{Tool: name, Code: res.ExitCode, Stderr: res.Stderr}
	}
	return nil
}

// For selects the strategy matching a resolved build kind. The custom
// strategy serves both the explicit custom kern and the anvilPy kern, which
// only differ in their default builder command.
func For(kind versions.BuildKind, kernName string, r invoke.Runner) Strategy {
	switch kind {
	case versions.Make:
		return &MakeStrategy{Runner: r}
	case versions.Automake:
		return &AutomakeStrategy{Runner: r}
	case versions.Custom:
		return &CustomStrategy{Runner: r, Kern: kernName}
	}
	return &BasicStrategy{Runner: r}
}
