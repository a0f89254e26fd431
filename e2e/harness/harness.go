// Package harness drives the full cobra pipeline the way a user would,
// against an isolated filesystem.
package harness

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kettlebent/tagforge/internal/cmd"
	"github.com/kettlebent/tagforge/internal/testenv"
)

// Harness provides an isolated filesystem environment for integration tests.
type Harness struct {
	T *testing.T
}

// RunResult holds the outcome of a CLI command execution.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// SetupResult holds the resolved paths from NewIsolatedFS.
type SetupResult struct {
	BaseDir    string
	ProjectDir string
	CacheDir   string
}

// FSOptions allows overriding the project directory name.
type FSOptions struct {
	ProjectDir string // subdirectory name under base (default: "testproject")
}

// NewIsolatedFS creates an isolated test environment: temp dirs via
// testenv.New, a project directory, and a chdir into it (restored on
// cleanup).
func (h *Harness) NewIsolatedFS(opts *FSOptions) *SetupResult {
	h.T.Helper()

	if opts == nil {
		opts = &FSOptions{}
	}
	if opts.ProjectDir == "" {
		opts.ProjectDir = "testproject"
	}

	env := testenv.New(h.T)

	projectDir := filepath.Join(env.Dirs.Base, opts.ProjectDir)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		h.T.Fatalf("harness: creating project dir %s: %v", projectDir, err)
	}

	prevDir, err := os.Getwd()
	if err != nil {
		h.T.Fatalf("harness: getting cwd: %v", err)
	}
	if err := os.Chdir(projectDir); err != nil {
		h.T.Fatalf("harness: chdir to project dir: %v", err)
	}
	h.T.Cleanup(func() {
		_ = os.Chdir(prevDir)
	})

	return &SetupResult{
		BaseDir:    env.Dirs.Base,
		ProjectDir: projectDir,
		CacheDir:   env.Dirs.Cache,
	}
}

// Run executes a CLI command through the full cmd.NewRootCmd cobra
// pipeline, capturing output and mapping the error onto the exit code the
// binary would return.
func (h *Harness) Run(args ...string) *RunResult {
	h.T.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd := cmd.NewRootCmd("test", "test")
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return &RunResult{
		ExitCode: exitCode(err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
	}
}

type exitCoder interface {
	ExitCode() int
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded exitCoder
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return 1
}
