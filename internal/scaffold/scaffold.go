// Package scaffold lays down a new project skeleton: a seed manifest, a
// hello-world source tree, autotools stubs and the test suite directories,
// ready for the first build.
package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kettlebent/tagforge/internal/anvil"
	"github.com/kettlebent/tagforge/internal/invoke"
	"github.com/kettlebent/tagforge/internal/vcs"
)

// SeedVersion is the single version a fresh project starts with.
const SeedVersion = "0.1.0"

type Options struct {
	// Dir is the project root to scaffold into.
	Dir string
	// Name becomes the binary name in the seed manifest; defaults to the
	// base name of Dir.
	Name string
	// Force overwrites an existing project.
	Force bool
	// InitRepo runs git init after scaffolding.
	InitRepo bool
	Runner   invoke.Runner

	// ConfirmWrite is asked before each file write; nil writes without
	// asking.
	ConfirmWrite func(path string) error
}

// Generate creates the project skeleton. It refuses to touch a directory
// that already holds a manifest unless Force is set.
func Generate(ctx context.Context, opts Options) error {
	if opts.Dir == "" {
		return fmt.Errorf("project directory is required")
	}
	name := opts.Name
	if name == "" {
		name = filepath.Base(opts.Dir)
	}

	manifestPath := filepath.Join(opts.Dir, "bin", anvil.DefaultFileName)
	if _, err := os.Stat(manifestPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists; use --force to reinitialize", manifestPath)
	}

	dirs := []string{
		filepath.Join(opts.Dir, "src"),
		filepath.Join(opts.Dir, "bin", "v"+SeedVersion),
		filepath.Join(opts.Dir, "tests", "ok"),
		filepath.Join(opts.Dir, "tests", "errors"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	files := map[string]string{
		filepath.Join(opts.Dir, "src", "main.c"):                  mainSource(name),
		filepath.Join(opts.Dir, "bin", "v"+SeedVersion, "main.c"): mainSource(name),
		filepath.Join(opts.Dir, "Makefile.am"):                    makefileAM(name),
		filepath.Join(opts.Dir, "configure.ac"):                   configureAC(name),
		filepath.Join(opts.Dir, ".gitignore"):                     gitignore(name),
	}
	for path, content := range files {
		if err := writeFile(path, content, opts); err != nil {
			return err
		}
	}

	seed := &anvil.Manifest{
		Anvil: anvil.AnvilSection{Version: anvil.FormatLevel},
		Build: anvil.BuildSection{
			Source:    "main.c",
			Bin:       name,
			TestsVers: SeedVersion,
			TestsDir:  "tests",
		},
		Tests:    anvil.TestsSection{OKDir: "ok", ErrorDir: "errors"},
		Versions: map[string]string{SeedVersion: "initial version"},
	}
	if err := anvil.WriteNew(manifestPath, seed); err != nil {
		return err
	}

	if opts.InitRepo {
		if err := vcs.Init(ctx, opts.Runner, opts.Dir); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path, content string, opts Options) error {
	if opts.ConfirmWrite != nil {
		if err := opts.ConfirmWrite(path); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func mainSource(name string) string {
	return fmt.Sprintf(`#include <stdio.h>

int main(void) {
    printf("%s, version %s\n");
    return 0;
}
`, name, SeedVersion)
}

func makefileAM(name string) string {
	return fmt.Sprintf(`AUTOMAKE_OPTIONS = foreign
bin_PROGRAMS = %s
%s_SOURCES = src/main.c

rebuild: clean all
.PHONY: rebuild
`, name, name)
}

func configureAC(name string) string {
	return fmt.Sprintf(`AC_INIT([%s], [%s])
AM_INIT_AUTOMAKE([foreign])
AC_PROG_CC
AC_CONFIG_FILES([Makefile])
AC_OUTPUT
`, name, SeedVersion)
}

func gitignore(name string) string {
	return fmt.Sprintf(`# build artifacts
bin/v*/%s
*.o

# autotools droppings
autom4te.cache/
aclocal.m4
configure
Makefile.in
Makefile
config.log
config.status
`, name)
}
