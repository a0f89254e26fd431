package ops

import (
	"errors"
	"fmt"

	"github.com/kettlebent/tagforge/internal/anvil"
	"github.com/kettlebent/tagforge/internal/kern"
	"github.com/kettlebent/tagforge/internal/semver"
	"github.com/kettlebent/tagforge/internal/versions"
)

// Category buckets every operation failure onto a stable exit code, so
// scripts wrapping the CLI can branch on what went wrong.
type Category int

const (
	Generic    Category = iota // 1: anything unclassified
	Config                     // 2: bad manifest or configuration
	Resolution                 // 3: unknown version or capability mismatch
	Execution                  // 4: a build or run tool failed
	State                      // 5: artifact state out of step (not built, persist failure)
	TestFail                   // 6: recorded-output tests failed
)

func (c Category) ExitCode() int {
	switch c {
	case Config:
		return 2
	case Resolution:
		return 3
	case Execution:
		return 4
	case State:
		return 5
	case TestFail:
		return 6
	}
	return 1
}

func (c Category) String() string {
	switch c {
	case Config:
		return "config"
	case Resolution:
		return "resolution"
	case Execution:
		return "execution"
	case State:
		return "state"
	case TestFail:
		return "test"
	}
	return "generic"
}

// Error ties a failure to its category. ExitCode makes it satisfy the exit
// protocol main checks for.
type Error struct {
	Category Category
	Err      error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
func (e *Error) ExitCode() int { return e.Category.ExitCode() }

// NotReadyError is an operation that needs a built artifact which is not
// there.
type NotReadyError struct {
	Label string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("version %q is not built", e.Label)
}

// CapabilityError is a request a version cannot honor: testing below the
// tests threshold, or a git-mode build of a base-only entry.
type CapabilityError struct {
	Label      string
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("version %q does not support %s", e.Label, e.Capability)
}

// TestFailureError summarizes a test run with at least one failure.
type TestFailureError struct {
	Failed int
	Total  int
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("%d of %d tests failed", e.Failed, e.Total)
}

// Classify wraps err with the category its type implies, for callers that
// produce manifest or table errors outside an orchestrator operation.
func Classify(err error) error { return classify(err) }

// classify wraps err with the category its type implies. Already-classified
// errors pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return err
	}
	return &Error{Category: categoryOf(err), Err: err}
}

func categoryOf(err error) Category {
	var (
		configErr  *anvil.ConfigError
		dupErr     *versions.DuplicateVersionError
		invalidErr *semver.InvalidVersionError
		unknownErr *versions.UnknownVersionError
		capErr     *CapabilityError
		toolErr    *kern.ToolError
		readyErr   *NotReadyError
		persistErr *versions.PersistError
		testErr    *TestFailureError
	)
	switch {
	case errors.As(err, &configErr),
		errors.As(err, &dupErr),
		errors.As(err, &invalidErr),
		errors.Is(err, versions.ErrEmptyTable):
		return Config
	case errors.As(err, &unknownErr), errors.As(err, &capErr):
		return Resolution
	case errors.As(err, &toolErr):
		return Execution
	case errors.As(err, &readyErr), errors.As(err, &persistErr):
		return State
	case errors.As(err, &testErr):
		return TestFail
	}
	return Generic
}
