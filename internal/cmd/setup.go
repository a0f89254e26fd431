package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kettlebent/tagforge/internal/anvil"
	"github.com/kettlebent/tagforge/internal/invoke"
	"github.com/kettlebent/tagforge/internal/ops"
	"github.com/kettlebent/tagforge/internal/vcs"
)

// newOrchestrator loads the manifest under the resolved builds directory
// and wires a ready-to-use orchestrator for the invoking command.
func newOrchestrator(cmd *cobra.Command, opts runtimeOptions) (*ops.Orchestrator, error) {
	mode, err := parseMode(opts.Mode)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get cwd: %w", err)
	}
	binDir := opts.BinDir
	if !filepath.IsAbs(binDir) {
		binDir = filepath.Join(cwd, binDir)
	}

	manifest, err := anvil.Load(filepath.Join(binDir, anvil.DefaultFileName))
	if err != nil {
		return nil, ops.Classify(err)
	}

	// strict mode never grants capabilities on unset thresholds
	unsetGrantsAll := opts.UnsetGrantsAll && !opts.Strict
	table, th, err := manifest.Table(unsetGrantsAll)
	if err != nil {
		return nil, ops.Classify(err)
	}

	runner := &invoke.Exec{}
	return &ops.Orchestrator{
		Manifest:   manifest,
		Table:      table,
		Th:         th,
		Runner:     runner,
		VCS:        vcs.New(cwd, runner),
		Log:        slog.Default(),
		Mode:       mode,
		ProjectDir: cwd,
		BinDir:     binDir,
		Opts: ops.Options{
			MakeTarget:    opts.MakeTarget,
			ConfigureArgs: splitArgs(opts.ConfigureArgs),
			Compiler:      opts.Compiler,
			Strict:        opts.Strict,
		},
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	}, nil
}

func parseMode(raw string) (ops.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "git":
		return ops.GitMode, nil
	case "base":
		return ops.BaseMode, nil
	}
	return 0, fmt.Errorf("unknown mode %q: want git or base", raw)
}

func splitArgs(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func tagArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
