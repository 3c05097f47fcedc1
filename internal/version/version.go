// Package version holds the build version, set with:
//
//	go build -ldflags "-X github.com/ramonehamilton/Riftbound-Companion/internal/version.Version=v1.2.3"
package version

import "runtime/debug"

// Version is the release tag. It defaults to "dev".
var Version = "dev"

// GetVersion returns the release tag, falling back to the module version
// recorded by `go install` when no tag was linked in.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
