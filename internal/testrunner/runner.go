// Package testrunner executes a project's test executables and checks their
// output against recorded golden files. Each test is a standalone executable
// in the tests directory; its goldens sit next to it with a double
// extension, <name>.k.stdout and <name>.k.stderr.
package testrunner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kettlebent/tagforge/internal/invoke"
)

// Mode selects between checking goldens and rewriting them.
type Mode int

const (
	Compare Mode = iota
	Record
)

// Status of one executed test case.
type Status int

const (
	Passed Status = iota
	Failed
	Recorded
)

func (s Status) String() string {
	switch s {
	case Passed:
		return "pass"
	case Failed:
		return "fail"
	case Recorded:
		return "recorded"
	}
	return "unknown"
}

// Outcome is the result of one test executable.
type Outcome struct {
	Label  string
	Status Status
	Reason string
}

// Summary aggregates a whole run.
type Summary struct {
	Outcomes []Outcome
}

func (s *Summary) Passed() int   { return s.count(Passed) }
func (s *Summary) Failed() int   { return s.count(Failed) }
func (s *Summary) Recorded() int { return s.count(Recorded) }

func (s *Summary) count(st Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == st {
			n++
		}
	}
	return n
}

// OK reports whether no test failed.
func (s *Summary) OK() bool { return s.Failed() == 0 }

const (
	stdoutGoldenExt = ".k.stdout"
	stderrGoldenExt = ".k.stderr"
	goldenMarker    = ".k."
)

// Runner executes test cases through an invoke.Runner.
type Runner struct {
	Exec invoke.Runner
}

// Discover lists the test executables in dir, in name order. Golden files
// and non-executable entries are skipped. A missing directory is an empty
// run, not an error: manifests may declare a tests dir that a given
// checkout does not have yet.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tests dir %s: %w", dir, err)
	}

	var cases []string
	for _, e := range entries {
		if e.IsDir() || strings.Contains(e.Name(), goldenMarker) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		if info.Mode()&0o111 == 0 {
			continue
		}
		cases = append(cases, filepath.Join(dir, e.Name()))
	}
	sort.Strings(cases)
	return cases, nil
}

// RunDir executes every test found in dir under the given mode.
func (r *Runner) RunDir(ctx context.Context, dir string, mode Mode) (Summary, error) {
	cases, err := Discover(dir)
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	for _, c := range cases {
		out, err := r.Run(ctx, c, mode)
		if err != nil {
			return sum, err
		}
		sum.Outcomes = append(sum.Outcomes, out)
	}
	return sum, nil
}

// Run executes one test executable and checks or records its goldens. The
// returned error covers harness problems only; a test mismatch is an
// Outcome with Status Failed.
func (r *Runner) Run(ctx context.Context, exe string, mode Mode) (Outcome, error) {
	label := filepath.Base(exe)
	res, err := r.Exec.Run(ctx, filepath.Dir(exe), "./"+label)
	if err != nil {
		return Outcome{}, fmt.Errorf("run test %s: %w", label, err)
	}

	if mode == Record {
		if err := os.WriteFile(exe+stdoutGoldenExt, []byte(res.Stdout), 0o644); err != nil {
			return Outcome{}, fmt.Errorf("record golden for %s: %w", label, err)
		}
		if err := os.WriteFile(exe+stderrGoldenExt, []byte(res.Stderr), 0o644); err != nil {
			return Outcome{}, fmt.Errorf("record golden for %s: %w", label, err)
		}
		return Outcome{Label: label, Status: Recorded}, nil
	}

	wantOut, err := os.ReadFile(exe + stdoutGoldenExt)
	if errors.Is(err, os.ErrNotExist) {
		// an unrecorded test can never pass; fail it with a reason that
		// points at the fix rather than a spurious diff
		return Outcome{Label: label, Status: Failed, Reason: "no recorded stdout golden; run with record mode first"}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("read golden for %s: %w", label, err)
	}
	if res.Stdout != string(wantOut) {
		return Outcome{Label: label, Status: Failed, Reason: "stdout differs from golden"}, nil
	}

	// the stderr golden is optional: compare only when recorded
	wantErr, err := os.ReadFile(exe + stderrGoldenExt)
	if err == nil && res.Stderr != string(wantErr) {
		return Outcome{Label: label, Status: Failed, Reason: "stderr differs from golden"}, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Outcome{}, fmt.Errorf("read golden for %s: %w", label, err)
	}

	return Outcome{Label: label, Status: Passed}, nil
}
