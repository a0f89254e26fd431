// Package semver parses and orders the plain MAJOR.MINOR.PATCH triples used
// as version tags. It is deliberately stricter than the SemVer spec:
// prerelease and build-metadata suffixes are a hard parse failure, never a
// lower-precedence version, because existing manifests only carry plain
// triples and a truncating parse would silently reorder them.
package semver

import (
	"fmt"

	masterminds "github.com/Masterminds/semver/v3"
)

// Version is an ordered (major, minor, patch) triple. The zero value is not
// a valid version; obtain one through Parse.
type Version struct {
	v *masterminds.Version
}

// InvalidVersionError reports a label that is not a plain semver triple.
type InvalidVersionError struct {
	Input string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version format %q: want MAJOR.MINOR.PATCH with no suffix", e.Input)
}

// Parse accepts exactly <uint>.<uint>.<uint>. Empty components, non-numeric
// components, and any -prerelease or +build suffix fail with
// InvalidVersionError naming the offending input.
func Parse(raw string) (Version, error) {
	if !isPlainTriple(raw) {
		return Version{}, &InvalidVersionError{Input: raw}
	}
	v, err := masterminds.NewVersion(raw)
	if err != nil {
		return Version{}, &InvalidVersionError{Input: raw}
	}
	return Version{v: v}, nil
}

// MustParse is Parse for trusted literals in tests and defaults.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func isPlainTriple(raw string) bool {
	dots := 0
	digits := 0
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			if digits == 0 {
				return false
			}
			dots++
			digits = 0
		default:
			return false
		}
	}
	return dots == 2 && digits > 0
}

// Compare orders by major, then minor, then patch, numerically. Returns
// -1, 0 or +1.
func (v Version) Compare(o Version) int {
	return v.v.Compare(o.v)
}

func (v Version) Less(o Version) bool  { return v.Compare(o) < 0 }
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// IsZero reports whether v is the zero value rather than a parsed version.
func (v Version) IsZero() bool { return v.v == nil }

func (v Version) Major() uint64 { return v.v.Major() }
func (v Version) Minor() uint64 { return v.v.Minor() }
func (v Version) Patch() uint64 { return v.v.Patch() }

// String renders the canonical M.m.p form, which doubles as the table key:
// equal triples always render identically even if the source labels differ.
func (v Version) String() string {
	if v.v == nil {
		return "0.0.0"
	}
	return fmt.Sprintf("%d.%d.%d", v.v.Major(), v.v.Minor(), v.v.Patch())
}

// StripTagPrefix splits a version label into its marker and the bare triple.
// A leading 'v' is the VCS-tag prefix; a leading '-' is the legacy base-only
// marker. Neither is part of the version itself.
func StripTagPrefix(label string) (marker byte, bare string) {
	if label == "" {
		return 0, label
	}
	switch label[0] {
	case 'v', '-':
		return label[0], label[1:]
	}
	return 0, label
}
