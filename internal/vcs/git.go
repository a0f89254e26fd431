// Package vcs wraps the git operations needed for tag-based builds:
// cleanliness checks, checkouts, and submodule sync. The Client interface
// exists so the orchestrator can be tested without a repository.
package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/kettlebent/tagforge/internal/invoke"
)

// Client is the minimal VCS surface the build pipeline needs.
type Client interface {
	// IsClean reports whether the worktree has no uncommitted changes.
	IsClean(ctx context.Context) (bool, error)
	// CurrentRef names the checked-out branch, or the commit hash when
	// detached. Used to restore the worktree after a tag build.
	CurrentRef(ctx context.Context) (string, error)
	// Checkout switches the worktree to ref.
	Checkout(ctx context.Context, ref string) error
	// SyncSubmodules brings submodules in line with the checked-out ref.
	SyncSubmodules(ctx context.Context) error
}

// Git is the production Client, shelling out through a Runner.
type Git struct {
	Dir    string
	Runner invoke.Runner
}

func New(dir string, r invoke.Runner) *Git {
	return &Git{Dir: dir, Runner: r}
}

func (g *Git) git(ctx context.Context, args ...string) (invoke.Result, error) {
	res, err := g.Runner.Run(ctx, g.Dir, "git", args...)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, fmt.Errorf("git %s: exit %d: %s",
			strings.Join(args, " "), res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return res, nil
}

func (g *Git) IsClean(ctx context.Context) (bool, error) {
	res, err := g.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) == "", nil
}

func (g *Git) CurrentRef(ctx context.Context) (string, error) {
	// symbolic-ref fails on a detached HEAD; fall back to the hash so the
	// restore after a tag build still has somewhere to go.
	res, err := g.Runner.Run(ctx, g.Dir, "git", "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", err
	}
	if res.ExitCode == 0 {
		return strings.TrimSpace(res.Stdout), nil
	}
	res, err = g.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (g *Git) Checkout(ctx context.Context, ref string) error {
	_, err := g.git(ctx, "checkout", ref)
	return err
}

func (g *Git) SyncSubmodules(ctx context.Context) error {
	_, err := g.git(ctx, "submodule", "update", "--init", "--recursive")
	return err
}

// Init creates a fresh repository at dir, for project scaffolding.
func Init(ctx context.Context, r invoke.Runner, dir string) error {
	res, err := r.Run(ctx, dir, "git", "init")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("git init: exit %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
