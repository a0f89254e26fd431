// Package anvil reads and writes the project manifest (forge.lock), the
// anvil-format source of truth for the version table: capability thresholds,
// kern selection, declared versions and their readiness flags.
package anvil

import (
	"fmt"
	"sort"

	"github.com/kettlebent/tagforge/internal/semver"
	"github.com/kettlebent/tagforge/internal/versions"
)

// DefaultFileName is the manifest name inside the builds directory.
const DefaultFileName = "forge.lock"

// FormatLevel is the newest schema level this tool writes. Manifests
// stamped below major 2 take the legacy parse path.
const FormatLevel = "2.1.0"

// Manifest mirrors the forge.lock schema. The legacy revisions are a strict
// subset: they lack the [anvil] and [ready] tables, so one decode shape
// covers every revision and the declared stamp, never the content shape,
// selects the interpretation.
type Manifest struct {
	Anvil    AnvilSection      `toml:"anvil,omitempty"`
	Build    BuildSection      `toml:"build"`
	Tests    TestsSection      `toml:"tests,omitempty"`
	Versions map[string]string `toml:"versions"`
	Ready    map[string]bool   `toml:"ready,omitempty"`

	path string
}

// AnvilSection is the format stamp and kern selector, absent in legacy
// manifests.
type AnvilSection struct {
	Version string `toml:"version,omitempty"`
	Kern    string `toml:"kern,omitempty"`
	// CustomBuilder is the build command used by non-default kerns.
	CustomBuilder string `toml:"custombuilder,omitempty"`
}

// BuildSection names the source file, the target binary, and the capability
// thresholds.
type BuildSection struct {
	Source       string `toml:"source"`
	Bin          string `toml:"bin"`
	MakeVers     string `toml:"makevers,omitempty"`
	AutomakeVers string `toml:"automakevers,omitempty"`
	TestsVers    string `toml:"testsvers,omitempty"`
	TestsDir     string `toml:"tests,omitempty"`
}

// TestsSection names the subdirectories holding ok-tests and error-tests.
type TestsSection struct {
	OKDir    string `toml:"testsdir,omitempty"`
	ErrorDir string `toml:"errortestsdir,omitempty"`
}

// ConfigError is any malformed or contradictory manifest content. Always
// fatal, detected before any mutation.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("manifest: %v", e.Err)
	}
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (m *Manifest) configErr(format string, args ...any) error {
	return &ConfigError{Path: m.path, Err: fmt.Errorf(format, args...)}
}

// Path returns where the manifest was loaded from.
func (m *Manifest) Path() string { return m.path }

// FormatStamp parses the declared compatibility level. A missing [anvil]
// table means the oldest revision, 1.0.0.
func (m *Manifest) FormatStamp() (semver.Version, error) {
	if m.Anvil.Version == "" {
		return semver.MustParse("1.0.0"), nil
	}
	v, err := semver.Parse(m.Anvil.Version)
	if err != nil {
		return semver.Version{}, m.configErr("anvil.version: %w", err)
	}
	return v, nil
}

// Legacy reports whether the manifest predates the format-2 schema.
func (m *Manifest) Legacy() bool {
	stamp, err := m.FormatStamp()
	if err != nil {
		return false
	}
	return stamp.Major() < 2
}

// Kern returns the declared strategy family, defaulting to amboso-C.
func (m *Manifest) Kern() string {
	if m.Anvil.Kern == "" {
		return versions.KernAmbosoC
	}
	return m.Anvil.Kern
}

// DefaultMakeTarget is the make target invoked when no override is given.
// Format 2 changed the default from the incremental target (plain make) to
// the full-rebuild target; this difference must survive legacy manifests,
// so it hangs off the stamp rather than a constant.
func (m *Manifest) DefaultMakeTarget() string {
	if m.Legacy() {
		return ""
	}
	return "rebuild"
}

func (m *Manifest) validate() error {
	if m.Build.Source == "" {
		return m.configErr("missing build.source")
	}
	if m.Build.Bin == "" {
		return m.configErr("missing build.bin")
	}
	if len(m.Versions) == 0 {
		return m.configErr("%w", versions.ErrEmptyTable)
	}
	switch k := m.Kern(); k {
	case versions.KernAmbosoC, versions.KernAnvilPy, versions.KernCustom:
	default:
		return m.configErr("unknown kern %q", k)
	}
	if m.Kern() == versions.KernCustom && m.Anvil.CustomBuilder == "" {
		return m.configErr("kern %q needs anvil.custombuilder", versions.KernCustom)
	}
	if m.Legacy() && len(m.Ready) > 0 {
		return m.configErr("legacy manifest carries a [ready] table")
	}
	return nil
}

func (m *Manifest) threshold(field, raw string) (*semver.Version, error) {
	if raw == "" {
		return nil, nil
	}
	_, bare := semver.StripTagPrefix(raw)
	v, err := semver.Parse(bare)
	if err != nil {
		return nil, m.configErr("%s: %w", field, err)
	}
	return &v, nil
}

// Thresholds derives the capability configuration. The unset-threshold
// policy is caller-supplied: the manifest alone does not decide it.
func (m *Manifest) Thresholds(unsetGrantsAll bool) (versions.Thresholds, error) {
	stamp, err := m.FormatStamp()
	if err != nil {
		return versions.Thresholds{}, err
	}
	th := versions.Thresholds{
		Kern:           m.Kern(),
		FormatLevel:    stamp,
		UnsetGrantsAll: unsetGrantsAll,
	}
	if th.Make, err = m.threshold("build.makevers", m.Build.MakeVers); err != nil {
		return versions.Thresholds{}, err
	}
	if th.Automake, err = m.threshold("build.automakevers", m.Build.AutomakeVers); err != nil {
		return versions.Thresholds{}, err
	}
	if th.Test, err = m.threshold("build.testsvers", m.Build.TestsVers); err != nil {
		return versions.Thresholds{}, err
	}
	return th, nil
}

// Specs lists the declared versions in a stable order, with readiness
// folded in from the [ready] table.
func (m *Manifest) Specs() []versions.EntrySpec {
	labels := make([]string, 0, len(m.Versions))
	for label := range m.Versions {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]versions.EntrySpec, 0, len(labels))
	for _, label := range labels {
		out = append(out, versions.EntrySpec{
			Label: label,
			Desc:  m.Versions[label],
			Ready: m.Ready[label],
		})
	}
	return out
}

// Table builds the version table and wires MarkReady persistence back into
// this manifest, so a readiness flip rewrites forge.lock before returning.
// Legacy manifests have no [ready] table to rewrite: their readiness flips
// stay in memory and the next load re-derives state from the filesystem.
func (m *Manifest) Table(unsetGrantsAll bool) (*versions.Table, versions.Thresholds, error) {
	th, err := m.Thresholds(unsetGrantsAll)
	if err != nil {
		return nil, versions.Thresholds{}, err
	}
	table, err := versions.Build(m.Specs(), th)
	if err != nil {
		return nil, versions.Thresholds{}, &ConfigError{Path: m.path, Err: err}
	}
	table.SetPersist(func(e *versions.Entry) error {
		if m.Legacy() {
			return nil
		}
		m.setReady(e.Label, e.Ready)
		return m.Save()
	})
	return table, th, nil
}

func (m *Manifest) setReady(label string, ready bool) {
	if !ready {
		delete(m.Ready, label)
		return
	}
	if m.Ready == nil {
		m.Ready = make(map[string]bool)
	}
	m.Ready[label] = true
}
