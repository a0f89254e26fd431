package versions

import (
	"github.com/kettlebent/tagforge/internal/semver"
)

// BuildKind selects the build strategy for one resolved version.
type BuildKind int

const (
	Basic BuildKind = iota
	Make
	Automake
	Custom
)

func (k BuildKind) String() string {
	switch k {
	case Basic:
		return "basic"
	case Make:
		return "make"
	case Automake:
		return "automake"
	case Custom:
		return "custom"
	}
	return "unknown"
}

// Kern families. AmbosoC is the native-compiled default; anything else
// routes every version through the Custom strategy.
const (
	KernAmbosoC = "amboso-C"
	KernAnvilPy = "anvilPy"
	KernCustom  = "custom"
)

// Entry is one version known to the table.
type Entry struct {
	Version semver.Version
	// Label is the tag exactly as it appears in the manifest, marker
	// included.
	Label string
	Desc  string
	Kind  BuildKind

	SupportsMake     bool
	SupportsAutomake bool
	SupportsTests    bool

	// Ready means the build artifact exists and is tracked as built.
	Ready bool
	// BaseOnly marks entries carrying the legacy '-' prefix: they have no
	// VCS tag and can only be built in base mode.
	BaseOnly bool
}

// Thresholds is the read-only capability configuration, constructed once at
// startup. A nil threshold means unset; whether that grants the capability
// to every version or to none is the UnsetGrantsAll policy, kept explicit
// because legacy manifests disagree on the default.
type Thresholds struct {
	Make     *semver.Version
	Automake *semver.Version
	Test     *semver.Version

	// Kern selects the build-strategy family; non-AmbosoC kerns override
	// the numeric thresholds entirely.
	Kern string

	// FormatLevel is the manifest's declared compatibility stamp.
	FormatLevel semver.Version

	UnsetGrantsAll bool
}

func (th Thresholds) grants(min *semver.Version, v semver.Version) bool {
	if min == nil {
		return th.UnsetGrantsAll
	}
	return v.Compare(*min) >= 0
}

// EntrySpec is the raw manifest input for one version.
type EntrySpec struct {
	Label string
	Desc  string
	Ready bool
}

// ResolvedTarget is the product of resolving one query. It is transient:
// never cache it across operations, since readiness may change between a
// build and the run that follows it.
type ResolvedTarget struct {
	Entry    *Entry
	Kind     BuildKind
	IsLatest bool
}

// Query names either an explicit tag or the latest table entry.
type Query struct {
	Tag    string
	Latest bool
}

// QueryFor treats an empty or literal "latest" tag as a latest query.
func QueryFor(tag string) Query {
	if tag == "" || tag == "latest" {
		return Query{Latest: true}
	}
	return Query{Tag: tag}
}
