// Package versions holds the version table and the resolver that classifies
// a requested tag into a build strategy.
package versions

import (
	"errors"
	"fmt"
	"iter"
	"sort"

	"github.com/kettlebent/tagforge/internal/semver"
)

// ErrEmptyTable means the manifest declared no versions at all.
var ErrEmptyTable = errors.New("no versions declared")

// DuplicateVersionError reports two labels parsing to the same version.
type DuplicateVersionError struct {
	Version string
	First   string
	Second  string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("duplicate version %s: labels %q and %q", e.Version, e.First, e.Second)
}

// UnknownVersionError reports a query that matched no table entry.
type UnknownVersionError struct {
	Query string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown version %q", e.Query)
}

// PersistError reports a readiness flag that flipped in memory but could not
// be written back to the manifest. The artifact on disk may still be
// correct; callers must surface this distinctly from a build failure.
type PersistError struct {
	Label string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist readiness for %q: %v", e.Label, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Table is the ordered mapping from parsed version to entry. It is built
// once per invocation and immutable afterwards except for MarkReady.
type Table struct {
	entries map[string]*Entry
	order   []string
	persist func(*Entry) error
}

// Build constructs the table from raw manifest specs. A single bad label
// fails the whole build; there are no partial tables. Capability flags are
// derived from the thresholds: every entry at or above a threshold gets the
// capability, no entry below it ever does.
func Build(specs []EntrySpec, th Thresholds) (*Table, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{entries: make(map[string]*Entry, len(specs))}
	for _, s := range specs {
		marker, bare := semver.StripTagPrefix(s.Label)
		v, err := semver.Parse(bare)
		if err != nil {
			return nil, fmt.Errorf("version table: %w", err)
		}

		key := v.String()
		if prev, ok := t.entries[key]; ok {
			return nil, &DuplicateVersionError{Version: key, First: prev.Label, Second: s.Label}
		}

		e := &Entry{
			Version:  v,
			Label:    s.Label,
			Desc:     s.Desc,
			Ready:    s.Ready,
			BaseOnly: marker == '-',
		}
		e.SupportsMake = th.grants(th.Make, v)
		e.SupportsAutomake = th.grants(th.Automake, v)
		e.SupportsTests = th.grants(th.Test, v)
		e.Kind = kindFor(e, th)

		t.entries[key] = e
		t.order = append(t.order, key)
	}

	sort.Slice(t.order, func(i, j int) bool {
		return t.entries[t.order[i]].Version.Less(t.entries[t.order[j]].Version)
	})

	return t, nil
}

func kindFor(e *Entry, th Thresholds) BuildKind {
	if th.Kern != "" && th.Kern != KernAmbosoC {
		return Custom
	}
	switch {
	case e.SupportsAutomake:
		return Automake
	case e.SupportsMake:
		return Make
	}
	return Basic
}

// SetPersist installs the write-back hook used by MarkReady.
func (t *Table) SetPersist(fn func(*Entry) error) { t.persist = fn }

func (t *Table) Len() int { return len(t.order) }

// Latest returns the entry with the highest version.
func (t *Table) Latest() (*Entry, error) {
	if len(t.order) == 0 {
		return nil, ErrEmptyTable
	}
	return t.entries[t.order[len(t.order)-1]], nil
}

// Lookup finds an entry by label or bare version, tolerating a tag prefix.
func (t *Table) Lookup(q string) (*Entry, bool) {
	_, bare := semver.StripTagPrefix(q)
	if v, err := semver.Parse(bare); err == nil {
		e, ok := t.entries[v.String()]
		return e, ok
	}
	for _, key := range t.order {
		if t.entries[key].Label == q {
			return t.entries[key], true
		}
	}
	return nil, false
}

// All iterates entries in ascending version order. The sequence is finite
// and restartable: ranging over it again starts from the lowest version.
func (t *Table) All() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, key := range t.order {
			if !yield(t.entries[key]) {
				return
			}
		}
	}
}

// MarkReady flips the readiness flag, the only mutation allowed after
// construction, and persists it synchronously before returning so that a
// crash right after a successful build cannot lose the fact. The in-memory
// flag keeps the new value even when persistence fails: the artifact state
// on disk is what the flag describes.
func (t *Table) MarkReady(v semver.Version, ready bool) error {
	e, ok := t.entries[v.String()]
	if !ok {
		return &UnknownVersionError{Query: v.String()}
	}
	e.Ready = ready
	if t.persist == nil {
		return nil
	}
	if err := t.persist(e); err != nil {
		return &PersistError{Label: e.Label, Err: err}
	}
	return nil
}
