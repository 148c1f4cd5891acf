// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Short returns the version string used in window titles.
func Short() string {
	return "v" + Version
}

// Long returns the full version line for logs and the about dialog.
func Long() string {
	return fmt.Sprintf("v%s (%s, built %s)", Version, GitCommit, BuildTime)
}
