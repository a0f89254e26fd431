// Package ops is the orchestrator: it ties the manifest, the version table,
// the build strategies and the VCS together into the operations the CLI
// exposes. Every public operation validates, resolves, then executes, and
// classifies its failure onto a stable exit code.
package ops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kettlebent/tagforge/internal/anvil"
	"github.com/kettlebent/tagforge/internal/invoke"
	"github.com/kettlebent/tagforge/internal/kern"
	"github.com/kettlebent/tagforge/internal/testrunner"
	"github.com/kettlebent/tagforge/internal/vcs"
	"github.com/kettlebent/tagforge/internal/versions"
)

// Mode selects where builds happen.
type Mode int

const (
	// BaseMode builds each version from its own directory under the builds
	// tree; no repository needed.
	BaseMode Mode = iota
	// GitMode checks the version's tag out of the repository and builds
	// there.
	GitMode
)

func (m Mode) String() string {
	if m == GitMode {
		return "git"
	}
	return "base"
}

// Phase tracks where an operation is in its lifecycle. Transitions only
// move forward; a new operation resets to validating.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseResolving
	PhaseExecuting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseResolving:
		return "resolving"
	case PhaseExecuting:
		return "executing"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "idle"
}

// Options are the per-invocation knobs shared by the operations.
type Options struct {
	// MakeTarget overrides the manifest's default make goal; nil keeps the
	// default, a pointer to "" forces a plain incremental make.
	MakeTarget    *string
	ConfigureArgs []string
	Compiler      string

	// Strict disables every convenience fallback: no auto-build on run, no
	// unset-grants-all threshold policy.
	Strict bool
	// Force rebuilds even when the artifact already exists.
	Force bool
	// NoBuild makes run fail instead of building a missing artifact.
	NoBuild bool
}

// Orchestrator executes operations against one loaded project.
type Orchestrator struct {
	Manifest *anvil.Manifest
	Table    *versions.Table
	Th       versions.Thresholds
	Runner   invoke.Runner
	VCS      vcs.Client
	Log      *slog.Logger

	Mode Mode
	// ProjectDir is the repository root; BinDir the builds tree holding the
	// manifest and one directory per version.
	ProjectDir string
	BinDir     string

	Opts Options

	// Out and ErrOut receive the output of a run artifact.
	Out    io.Writer
	ErrOut io.Writer

	phase Phase
}

// Phase reports the current lifecycle phase, mostly for logging and tests.
func (o *Orchestrator) Phase() Phase { return o.phase }

func (o *Orchestrator) step(p Phase) {
	o.phase = p
	o.logger().Debug("phase", "phase", p.String())
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Log == nil {
		return slog.Default()
	}
	return o.Log
}

func (o *Orchestrator) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o *Orchestrator) errOut() io.Writer {
	if o.ErrOut == nil {
		return os.Stderr
	}
	return o.ErrOut
}

func (o *Orchestrator) finish(err error) error {
	if err != nil {
		o.step(PhaseFailed)
		return classify(err)
	}
	o.step(PhaseSucceeded)
	return nil
}

func (o *Orchestrator) resolve(tag string) (versions.ResolvedTarget, error) {
	o.step(PhaseResolving)
	return versions.Resolve(o.Table, o.Th, versions.QueryFor(tag))
}

// VersionDir is the per-version directory under the builds tree. Every
// entry gets a v-prefixed canonical name regardless of its manifest label.
func (o *Orchestrator) VersionDir(e *versions.Entry) string {
	return filepath.Join(o.BinDir, "v"+e.Version.String())
}

// ArtifactPath is where the built binary for e lives.
func (o *Orchestrator) ArtifactPath(e *versions.Entry) string {
	return filepath.Join(o.VersionDir(e), o.Manifest.Build.Bin)
}

func (o *Orchestrator) artifactExists(e *versions.Entry) bool {
	info, err := os.Stat(o.ArtifactPath(e))
	return err == nil && info.Mode().IsRegular()
}

// QueryReport is what query returns for one version: the table entry plus
// the on-disk truth about its artifact.
type QueryReport struct {
	Entry        *versions.Entry
	IsLatest     bool
	ArtifactPath string
	Built        bool
	// Stale means the manifest's readiness flag disagrees with the disk.
	Stale bool
}

// Query resolves a tag and cross-checks the readiness flag against the
// filesystem. It never mutates: a stale flag is reported, not repaired.
func (o *Orchestrator) Query(ctx context.Context, tag string) (QueryReport, error) {
	o.step(PhaseValidating)
	rt, err := o.resolve(tag)
	if err != nil {
		return QueryReport{}, o.finish(err)
	}
	o.step(PhaseExecuting)
	rep := o.report(rt.Entry, rt.IsLatest)
	return rep, o.finish(nil)
}

// List reports every table entry in ascending order.
func (o *Orchestrator) List(ctx context.Context) ([]QueryReport, error) {
	o.step(PhaseValidating)
	latest, err := o.Table.Latest()
	if err != nil {
		return nil, o.finish(err)
	}
	o.step(PhaseExecuting)
	var out []QueryReport
	for e := range o.Table.All() {
		out = append(out, o.report(e, e.Version.Equal(latest.Version)))
	}
	return out, o.finish(nil)
}

func (o *Orchestrator) report(e *versions.Entry, isLatest bool) QueryReport {
	built := o.artifactExists(e)
	return QueryReport{
		Entry:        e,
		IsLatest:     isLatest,
		ArtifactPath: o.ArtifactPath(e),
		Built:        built,
		Stale:        built != e.Ready,
	}
}

// Build produces the artifact for tag. Building an already-built version is
// a no-op unless Force is set.
func (o *Orchestrator) Build(ctx context.Context, tag string) error {
	o.step(PhaseValidating)
	rt, err := o.resolve(tag)
	if err != nil {
		return o.finish(err)
	}
	e := rt.Entry

	if o.Mode == GitMode && e.BaseOnly {
		return o.finish(&CapabilityError{Label: e.Label, Capability: "git-mode builds"})
	}

	o.step(PhaseExecuting)
	if o.artifactExists(e) && !o.Opts.Force {
		o.logger().Info("already built", "version", e.Version.String())
		if !e.Ready {
			// repair the flag to match the disk
			if err := o.Table.MarkReady(e.Version, true); err != nil {
				return o.finish(err)
			}
		}
		return o.finish(nil)
	}

	if err := os.MkdirAll(o.VersionDir(e), 0o755); err != nil {
		return o.finish(err)
	}

	strategy := kern.For(rt.Kind, o.Th.Kern, o.Runner)
	o.logger().Info("building", "version", e.Version.String(), "strategy", strategy.Name(), "mode", o.Mode.String())

	if o.Mode == GitMode {
		err = o.withCheckout(ctx, e.Label, func() error {
			return o.buildIn(ctx, strategy, o.ProjectDir, e)
		})
	} else {
		err = o.buildIn(ctx, strategy, o.VersionDir(e), e)
	}
	if err != nil {
		return o.finish(err)
	}

	if !o.artifactExists(e) {
		return o.finish(&kern.ToolError{
			Tool:   strategy.Name(),
			Code:   -1,
			Stderr: fmt.Sprintf("build finished but %s was not produced", o.ArtifactPath(e)),
		})
	}
	return o.finish(o.Table.MarkReady(e.Version, true))
}

func (o *Orchestrator) buildIn(ctx context.Context, s kern.Strategy, dir string, e *versions.Entry) error {
	t := kern.Target{
		Dir:            dir,
		Source:         o.Manifest.Build.Source,
		BinName:        o.Manifest.Build.Bin,
		MakeTarget:     o.makeTarget(),
		ConfigureArgs:  o.Opts.ConfigureArgs,
		BuilderCommand: o.Manifest.Anvil.CustomBuilder,
		Compiler:       o.Opts.Compiler,
	}
	if err := s.Build(ctx, t); err != nil {
		return err
	}
	if dir == o.VersionDir(e) {
		return nil
	}
	// git mode: move the artifact out of the worktree before the ref is
	// restored, or the checkout switch would discard it
	return os.Rename(filepath.Join(dir, t.BinName), o.ArtifactPath(e))
}

func (o *Orchestrator) makeTarget() string {
	if o.Opts.MakeTarget != nil {
		return *o.Opts.MakeTarget
	}
	return o.Manifest.DefaultMakeTarget()
}

// withCheckout runs fn with the worktree switched to ref, restoring the
// previous ref afterwards even when fn fails. It refuses to touch a dirty
// worktree.
func (o *Orchestrator) withCheckout(ctx context.Context, ref string, fn func() error) error {
	clean, err := o.VCS.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return &Error{Category: State, Err: errors.New("worktree has uncommitted changes; commit or stash them first")}
	}

	prev, err := o.VCS.CurrentRef(ctx)
	if err != nil {
		return err
	}
	if err := o.VCS.Checkout(ctx, ref); err != nil {
		return err
	}
	defer func() {
		if rerr := o.VCS.Checkout(ctx, prev); rerr != nil {
			o.logger().Error("restore checkout failed", "ref", prev, "err", rerr)
		}
	}()

	if err := o.VCS.SyncSubmodules(ctx); err != nil {
		return err
	}
	return fn()
}

// Run executes the artifact for tag, building it first when needed, and
// passes the child's exit status through. Strict or NoBuild turn the
// missing-artifact fallback into a hard failure.
func (o *Orchestrator) Run(ctx context.Context, tag string, args []string) (int, error) {
	o.step(PhaseValidating)
	rt, err := o.resolve(tag)
	if err != nil {
		return 0, o.finish(err)
	}
	e := rt.Entry

	if !o.artifactExists(e) {
		if o.Opts.NoBuild || o.Opts.Strict {
			return 0, o.finish(&NotReadyError{Label: e.Label})
		}
		if err := o.Build(ctx, tag); err != nil {
			return 0, err
		}
	}

	o.step(PhaseExecuting)
	res, err := o.Runner.Run(ctx, o.VersionDir(e), "./"+o.Manifest.Build.Bin, args...)
	if err != nil {
		return 0, o.finish(err)
	}
	io.WriteString(o.out(), res.Stdout)
	io.WriteString(o.errOut(), res.Stderr)
	return res.ExitCode, o.finish(nil)
}

// Delete removes the artifact for tag and clears its readiness flag.
// Deleting a version that is not built is an error, not a no-op, so typos
// do not silently succeed.
func (o *Orchestrator) Delete(ctx context.Context, tag string) error {
	o.step(PhaseValidating)
	rt, err := o.resolve(tag)
	if err != nil {
		return o.finish(err)
	}
	e := rt.Entry

	o.step(PhaseExecuting)
	if !o.artifactExists(e) {
		return o.finish(&NotReadyError{Label: e.Label})
	}
	if err := os.Remove(o.ArtifactPath(e)); err != nil {
		return o.finish(err)
	}
	return o.finish(o.Table.MarkReady(e.Version, false))
}

// Purge sweeps every built artifact. Best effort: one failure does not stop
// the sweep, and versions that were never built are skipped silently.
func (o *Orchestrator) Purge(ctx context.Context) (removed int, err error) {
	o.step(PhaseValidating)
	o.step(PhaseExecuting)
	var errs []error
	for e := range o.Table.All() {
		if !o.artifactExists(e) {
			continue
		}
		if rmErr := os.Remove(o.ArtifactPath(e)); rmErr != nil {
			errs = append(errs, rmErr)
			continue
		}
		removed++
		if markErr := o.Table.MarkReady(e.Version, false); markErr != nil {
			errs = append(errs, markErr)
		}
	}
	return removed, o.finish(errors.Join(errs...))
}

func testMode(record bool) testrunner.Mode {
	if record {
		return testrunner.Record
	}
	return testrunner.Compare
}

// Test checks one version's artifact output against its recorded golden,
// or rewrites the golden in record mode. The goldens live next to the
// artifact, so they are versioned with it.
func (o *Orchestrator) Test(ctx context.Context, tag string, record bool) (testrunner.Outcome, error) {
	o.step(PhaseValidating)
	rt, err := o.resolve(tag)
	if err != nil {
		return testrunner.Outcome{}, o.finish(err)
	}
	e := rt.Entry
	if !e.SupportsTests {
		return testrunner.Outcome{}, o.finish(&CapabilityError{Label: e.Label, Capability: "tests"})
	}
	if !o.artifactExists(e) {
		return testrunner.Outcome{}, o.finish(&NotReadyError{Label: e.Label})
	}

	o.step(PhaseExecuting)
	runner := &testrunner.Runner{Exec: o.Runner}
	out, err := runner.Run(ctx, o.ArtifactPath(e), testMode(record))
	if err != nil {
		return testrunner.Outcome{}, o.finish(err)
	}
	out.Label = e.Label

	if !record && out.Status == testrunner.Failed {
		return out, o.finish(&TestFailureError{Failed: 1, Total: 1})
	}
	return out, o.finish(nil)
}

// TestAll sweeps every test-capable version in ascending order. A single
// failing version does not abort the sweep; the aggregate decides the exit.
// Versions without a built artifact fail their slot instead of stopping
// everything.
func (o *Orchestrator) TestAll(ctx context.Context, record bool) (testrunner.Summary, error) {
	o.step(PhaseValidating)
	if o.Table.Len() == 0 {
		return testrunner.Summary{}, o.finish(versions.ErrEmptyTable)
	}

	o.step(PhaseExecuting)
	runner := &testrunner.Runner{Exec: o.Runner}
	var sum testrunner.Summary
	for e := range o.Table.All() {
		if !e.SupportsTests {
			continue
		}
		if !o.artifactExists(e) {
			sum.Outcomes = append(sum.Outcomes, testrunner.Outcome{
				Label:  e.Label,
				Status: testrunner.Failed,
				Reason: "artifact not built",
			})
			continue
		}
		out, err := runner.Run(ctx, o.ArtifactPath(e), testMode(record))
		if err != nil {
			return sum, o.finish(err)
		}
		out.Label = e.Label
		sum.Outcomes = append(sum.Outcomes, out)
	}

	if !record && !sum.OK() {
		return sum, o.finish(&TestFailureError{Failed: sum.Failed(), Total: len(sum.Outcomes)})
	}
	return sum, o.finish(nil)
}

// Suite runs the project-level test suites declared in the manifest's
// tests directory (the ok suite, then the error suite). These are
// standalone executables independent of any one version.
func (o *Orchestrator) Suite(ctx context.Context, record bool) (testrunner.Summary, error) {
	o.step(PhaseValidating)
	latest, err := o.Table.Latest()
	if err != nil {
		return testrunner.Summary{}, o.finish(err)
	}
	if !latest.SupportsTests {
		return testrunner.Summary{}, o.finish(&CapabilityError{Label: latest.Label, Capability: "tests"})
	}

	o.step(PhaseExecuting)
	runner := &testrunner.Runner{Exec: o.Runner}
	var sum testrunner.Summary
	for _, dir := range o.testDirs() {
		part, err := runner.RunDir(ctx, dir, testMode(record))
		if err != nil {
			return sum, o.finish(err)
		}
		sum.Outcomes = append(sum.Outcomes, part.Outcomes...)
	}

	if !record && !sum.OK() {
		return sum, o.finish(&TestFailureError{Failed: sum.Failed(), Total: len(sum.Outcomes)})
	}
	return sum, o.finish(nil)
}

// testDirs lists the suite directories in run order: the ok suite first,
// then the error suite when one is declared.
func (o *Orchestrator) testDirs() []string {
	base := filepath.Join(o.ProjectDir, o.Manifest.Build.TestsDir)
	ok := base
	if o.Manifest.Tests.OKDir != "" {
		ok = filepath.Join(base, o.Manifest.Tests.OKDir)
	}
	dirs := []string{ok}
	if o.Manifest.Tests.ErrorDir != "" {
		dirs = append(dirs, filepath.Join(base, o.Manifest.Tests.ErrorDir))
	}
	return dirs
}
