// Package version provides build version information embedding for
// fogsched binaries.
//
// Version, git commit, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X fogsched/version.Version=1.0.0"
package version
