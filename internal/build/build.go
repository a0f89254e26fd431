package build

import "runtime/debug"

// Version and Date are injected via ldflags by the release pipeline. The
// defaults cover development builds (go run / go build without flags).
var (
	Version = "DEV"
	Date    = "" // YYYY-MM-DD, empty for dev builds
)

func init() {
	if Version == "DEV" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
}
