package kern

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kettlebent/tagforge/internal/invoke"
)

// AutomakeStrategy bootstraps an autotools tree, then hands over to make.
// Bootstrapping only happens when the tree has no Makefile yet, so repeated
// builds of the same checkout skip straight to make.
type AutomakeStrategy struct {
	Runner invoke.Runner
}

func (s *AutomakeStrategy) Name() string { return "automake" }

func (s *AutomakeStrategy) Build(ctx context.Context, t Target) error {
	if !hasMakefile(t.Dir) {
		if err := s.bootstrap(ctx, t); err != nil {
			return err
		}
	}
	make := MakeStrategy{Runner: s.Runner}
	return make.Build(ctx, t)
}

func (s *AutomakeStrategy) bootstrap(ctx context.Context, t Target) error {
	steps := [][]string{
		{"aclocal"},
		{"autoconf"},
		{"automake", "--add-missing"},
	}
	for _, step := range steps {
		if err := run(ctx, s.Runner, t.Dir, step[0], step[1:]...); err != nil {
			return err
		}
	}
	return run(ctx, s.Runner, t.Dir, "./configure", t.ConfigureArgs...)
}

func hasMakefile(dir string) bool {
	for _, name := range []string{"Makefile", "makefile", "GNUmakefile"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
