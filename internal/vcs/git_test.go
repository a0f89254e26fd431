package vcs

import (
	"context"
	"strings"
	"testing"

	"github.com/kettlebent/tagforge/internal/invoke"
)

// fakeRunner scripts git responses per subcommand.
type fakeRunner struct {
	results map[string]invoke.Result
	calls   []string
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (invoke.Result, error) {
	key := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if res, ok := f.results[key]; ok {
		return res, nil
	}
	return invoke.Result{}, nil
}

func TestIsClean(t *testing.T) {
	fr := &fakeRunner{results: map[string]invoke.Result{
		"git status --porcelain": {Stdout: " M main.c\n"},
	}}
	g := New(".", fr)
	clean, err := g.IsClean(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if clean {
		t.Error("dirty worktree reported clean")
	}

	fr.results["git status --porcelain"] = invoke.Result{Stdout: "\n"}
	clean, err = g.IsClean(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !clean {
		t.Error("clean worktree reported dirty")
	}
}

func TestIsCleanSurfacesGitFailure(t *testing.T) {
	fr := &fakeRunner{results: map[string]invoke.Result{
		"git status --porcelain": {ExitCode: 128, Stderr: "not a git repository"},
	}}
	if _, err := New(".", fr).IsClean(context.Background()); err == nil {
		t.Fatal("IsClean() outside a repo should error")
	}
}

func TestCurrentRefPrefersBranch(t *testing.T) {
	fr := &fakeRunner{results: map[string]invoke.Result{
		"git symbolic-ref --short -q HEAD": {Stdout: "main\n"},
	}}
	ref, err := New(".", fr).CurrentRef(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ref != "main" {
		t.Errorf("CurrentRef() = %q, want main", ref)
	}
}

func TestCurrentRefFallsBackToHashWhenDetached(t *testing.T) {
	fr := &fakeRunner{results: map[string]invoke.Result{
		"git symbolic-ref --short -q HEAD": {ExitCode: 1},
		"git rev-parse HEAD":               {Stdout: "abc123\n"},
	}}
	ref, err := New(".", fr).CurrentRef(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ref != "abc123" {
		t.Errorf("CurrentRef() = %q, want abc123", ref)
	}
}

func TestCheckoutAndSubmodules(t *testing.T) {
	fr := &fakeRunner{results: map[string]invoke.Result{}}
	g := New(".", fr)
	if err := g.Checkout(context.Background(), "0.2.0"); err != nil {
		t.Fatal(err)
	}
	if err := g.SyncSubmodules(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"git checkout 0.2.0",
		"git submodule update --init --recursive",
	}
	for i, w := range want {
		if fr.calls[i] != w {
			t.Errorf("call %d = %q, want %q", i, fr.calls[i], w)
		}
	}
}
