package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kettlebent/tagforge/internal/anvil"
)

func TestGenerateLaysDownSkeleton(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "myproj")
	if err := Generate(context.Background(), Options{Dir: dir}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, rel := range []string{
		"src/main.c",
		"bin/v" + SeedVersion + "/main.c",
		"Makefile.am",
		"configure.ac",
		".gitignore",
		"bin/" + anvil.DefaultFileName,
		"tests/ok",
		"tests/errors",
	} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	m, err := anvil.Load(filepath.Join(dir, "bin", anvil.DefaultFileName))
	if err != nil {
		t.Fatalf("seed manifest does not load: %v", err)
	}
	if m.Legacy() {
		t.Error("seed manifest should carry the current format stamp")
	}
	if m.Build.Bin != "myproj" {
		t.Errorf("seed bin = %q, want project name", m.Build.Bin)
	}
	if _, ok := m.Versions[SeedVersion]; !ok {
		t.Errorf("seed versions = %v, want %s", m.Versions, SeedVersion)
	}

	src, err := os.ReadFile(filepath.Join(dir, "src", "main.c"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(src), "myproj") {
		t.Errorf("seed source does not mention the project: %s", src)
	}
}

func TestGenerateRefusesExistingProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "twice")
	if err := Generate(context.Background(), Options{Dir: dir}); err != nil {
		t.Fatal(err)
	}
	if err := Generate(context.Background(), Options{Dir: dir}); err == nil {
		t.Fatal("second Generate() without Force should fail")
	}
	if err := Generate(context.Background(), Options{Dir: dir, Force: true}); err != nil {
		t.Errorf("Generate() with Force error = %v", err)
	}
}

func TestGenerateHonorsConfirmHook(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "asked")
	var asked []string
	err := Generate(context.Background(), Options{
		Dir: dir,
		ConfirmWrite: func(path string) error {
			asked = append(asked, filepath.Base(path))
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(asked) == 0 {
		t.Error("confirm hook never consulted")
	}
}
