// Package version holds build metadata injected at link time.
package version

// Set via -ldflags "-X github.com/filescope/filescope/pkg/version.Version=...".
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)
