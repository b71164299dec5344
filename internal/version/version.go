// Package version reports build metadata injected with -ldflags.
package version

import "fmt"

// These variables are set at build time via ldflags, e.g.
// -X github.com/example/permitdesk/internal/version.Version=v0.3.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version line shown by `permitdesk --version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, shortCommit(), BuildTime)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
