// Package version holds build metadata injected at link time.
package version

import "runtime"

// Set via -ldflags at build time, e.g.:
//
//	go build -ldflags "-X github.com/byte-squad-abac/bookreader/version.GitRelease=v0.1.0"
var (
	// GitRelease is the tagged release, or "dev" for local builds.
	GitRelease = "dev"
	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the commit date of GitCommit.
	GitCommitDate = "unknown"
)

// GoInfo is the Go runtime version the binary was built with.
var GoInfo = runtime.Version()
