// Package invoke runs external tools. Everything that shells out goes
// through the Runner interface so the orchestrator and strategies can be
// exercised without a toolchain installed.
package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Result carries what a finished child process left behind.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes one command in a working directory and waits for it.
// A non-zero child exit is not an error at this layer: it comes back in
// Result.ExitCode so the caller decides what it means. The returned error
// covers failures to start or to wait.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// Exec is the production Runner on top of os/exec.
type Exec struct {
	// Env entries are appended to the inherited environment.
	Env []string
}

func (x *Exec) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(x.Env) > 0 {
		cmd.Env = append(os.Environ(), x.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", name, err)
	}
	return res, nil
}

// Shell runs a full command line through sh -c, for manifest-declared
// build commands that may carry their own arguments and shell syntax.
func Shell(ctx context.Context, r Runner, dir, commandLine string) (Result, error) {
	if strings.TrimSpace(commandLine) == "" {
		return Result{}, fmt.Errorf("empty command line")
	}
	return r.Run(ctx, dir, "sh", "-c", commandLine)
}
