package e2e

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kettlebent/tagforge/e2e/harness"
)

// initProject scaffolds a fresh project under the isolated FS and returns
// its builds directory.
func initProject(t *testing.T, h *harness.Harness) string {
	t.Helper()
	res := h.Run("init", "proj", "--no-repo", "--dangerous-inline")
	if res.ExitCode != 0 {
		t.Fatalf("init failed: exit %d, err %v, stderr %s", res.ExitCode, res.Err, res.Stderr)
	}
	return filepath.Join("proj", "bin")
}

func TestInitThenQueryListsSeedVersion(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)

	res := h.Run("query", "-D", binDir, "--mode", "base")
	if res.ExitCode != 0 {
		t.Fatalf("query failed: exit %d, err %v", res.ExitCode, res.Err)
	}
	if !strings.Contains(res.Stdout, "0.1.0") {
		t.Errorf("query output missing seed version: %q", res.Stdout)
	}
	if !strings.Contains(res.Stdout, "not built") {
		t.Errorf("fresh project should report not built: %q", res.Stdout)
	}
	if !strings.Contains(res.Stdout, "latest") {
		t.Errorf("single version should be latest: %q", res.Stdout)
	}
}

func TestLintAcceptsScaffoldedManifest(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)

	res := h.Run("lint", "-D", binDir)
	if res.ExitCode != 0 {
		t.Fatalf("lint failed: exit %d, err %v", res.ExitCode, res.Err)
	}
	if !strings.Contains(res.Stdout, "is valid") {
		t.Errorf("lint output = %q", res.Stdout)
	}
}

func TestLintRejectsBrokenManifest(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	if err := os.MkdirAll("bin", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("bin", "forge.lock"), []byte("[build\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := h.Run("lint", "-D", "bin")
	if res.ExitCode != 2 {
		t.Fatalf("lint of broken manifest: exit %d, want 2 (err %v)", res.ExitCode, res.Err)
	}
}

func TestMissingManifestIsConfigError(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)

	res := h.Run("query", "-D", "nowhere")
	if res.ExitCode != 2 {
		t.Fatalf("query without manifest: exit %d, want 2 (err %v)", res.ExitCode, res.Err)
	}
}

func TestQueryUnknownTagExitsResolution(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)

	res := h.Run("query", "9.9.9", "-D", binDir, "--mode", "base")
	if res.ExitCode != 3 {
		t.Fatalf("query of unknown tag: exit %d, want 3 (err %v)", res.ExitCode, res.Err)
	}
}

func TestDeleteUnbuiltExitsState(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)

	res := h.Run("delete", "0.1.0", "-D", binDir, "--mode", "base")
	if res.ExitCode != 5 {
		t.Fatalf("delete of unbuilt version: exit %d, want 5 (err %v)", res.ExitCode, res.Err)
	}
}

func TestPurgeWithNothingBuilt(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)

	res := h.Run("purge", "-D", binDir, "--mode", "base")
	if res.ExitCode != 0 {
		t.Fatalf("purge: exit %d, err %v", res.ExitCode, res.Err)
	}
	if !strings.Contains(res.Stdout, "Purged 0") {
		t.Errorf("purge output = %q", res.Stdout)
	}
}

// placeArtifact drops an executable shell script where the built binary for
// the seed version would live, standing in for a real compile.
func placeArtifact(t *testing.T, binDir, name, body string) {
	t.Helper()
	dir := filepath.Join(binDir, "v0.1.0")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestRunExecutesExistingArtifact(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)
	placeArtifact(t, binDir, "proj", "echo from-artifact")

	res := h.Run("run", "0.1.0", "-D", binDir, "--mode", "base")
	if res.ExitCode != 0 {
		t.Fatalf("run: exit %d, err %v, stderr %s", res.ExitCode, res.Err, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "from-artifact") {
		t.Errorf("run stdout = %q", res.Stdout)
	}
}

func TestRunPassesChildExitStatusThrough(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)
	placeArtifact(t, binDir, "proj", "exit 3")

	res := h.Run("run", "0.1.0", "-D", binDir, "--mode", "base")
	if res.ExitCode != 3 {
		t.Fatalf("run of failing artifact: exit %d, want 3 (err %v)", res.ExitCode, res.Err)
	}
}

func TestRunNoBuildRefusesMissingArtifact(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)

	res := h.Run("run", "0.1.0", "--no-build", "-D", binDir, "--mode", "base")
	if res.ExitCode != 5 {
		t.Fatalf("run --no-build without artifact: exit %d, want 5 (err %v)", res.ExitCode, res.Err)
	}
}

func TestDeleteBuiltArtifact(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)
	placeArtifact(t, binDir, "proj", "true")

	res := h.Run("delete", "0.1.0", "-D", binDir, "--mode", "base")
	if res.ExitCode != 0 {
		t.Fatalf("delete: exit %d, err %v", res.ExitCode, res.Err)
	}
	if _, err := os.Stat(filepath.Join(binDir, "v0.1.0", "proj")); !os.IsNotExist(err) {
		t.Errorf("artifact still present after delete: %v", err)
	}
}

func TestTestRecordThenCompare(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)
	placeArtifact(t, binDir, "proj", "echo stable-output")

	// compare before recording fails with the test exit code
	res := h.Run("test", "0.1.0", "-D", binDir, "--mode", "base")
	if res.ExitCode != 6 {
		t.Fatalf("unrecorded compare: exit %d, want 6 (err %v)", res.ExitCode, res.Err)
	}

	res = h.Run("test", "0.1.0", "--record", "-D", binDir, "--mode", "base")
	if res.ExitCode != 0 {
		t.Fatalf("record: exit %d, err %v, stderr %s", res.ExitCode, res.Err, res.Stderr)
	}
	golden := filepath.Join(binDir, "v0.1.0", "proj.k.stdout")
	if _, err := os.Stat(golden); err != nil {
		t.Fatalf("golden not written: %v", err)
	}

	res = h.Run("test", "0.1.0", "-D", binDir, "--mode", "base")
	if res.ExitCode != 0 {
		t.Fatalf("compare after record: exit %d, err %v, stdout %s", res.ExitCode, res.Err, res.Stdout)
	}
	if !strings.Contains(res.Stdout, "pass") {
		t.Errorf("compare output = %q", res.Stdout)
	}

	// --all sweeps the same single test-capable version
	res = h.Run("test", "--all", "-D", binDir, "--mode", "base")
	if res.ExitCode != 0 {
		t.Fatalf("test --all: exit %d, err %v", res.ExitCode, res.Err)
	}
	if !strings.Contains(res.Stdout, "passed 1") {
		t.Errorf("sweep output = %q", res.Stdout)
	}
}

func TestTestUnbuiltVersionExitsState(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)
	binDir := initProject(t, h)

	res := h.Run("test", "0.1.0", "-D", binDir, "--mode", "base")
	if res.ExitCode != 5 {
		t.Fatalf("test of unbuilt version: exit %d, want 5 (err %v)", res.ExitCode, res.Err)
	}
}

func TestConfigInitWritesTemplate(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)

	res := h.Run("config", "init", "--file", "tagforge.yaml")
	if res.ExitCode != 0 {
		t.Fatalf("config init: exit %d, err %v", res.ExitCode, res.Err)
	}
	raw, err := os.ReadFile("tagforge.yaml")
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if !strings.Contains(string(raw), "TAGFORGE_") {
		t.Errorf("template missing env prefix documentation")
	}
}

func TestConfigInitRefusesOverwriteWithoutForce(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)

	res := h.Run("config", "init", "--file", "tagforge.yaml")
	if res.ExitCode != 0 {
		t.Fatalf("config init: exit %d, err %v", res.ExitCode, res.Err)
	}

	res = h.Run("config", "init", "--file", "tagforge.yaml")
	if res.ExitCode == 0 {
		t.Fatal("second config init should refuse the existing file")
	}

	res = h.Run("config", "init", "--file", "tagforge.yaml", "--force")
	if res.ExitCode != 0 {
		t.Fatalf("config init --force: exit %d, err %v", res.ExitCode, res.Err)
	}
}

func TestVersionCommand(t *testing.T) {
	h := &harness.Harness{T: t}
	h.NewIsolatedFS(nil)

	res := h.Run("version")
	if res.ExitCode != 0 {
		t.Fatalf("version: exit %d, err %v", res.ExitCode, res.Err)
	}
	if !strings.Contains(res.Stdout, "tagforge version") {
		t.Errorf("version output = %q", res.Stdout)
	}
}
