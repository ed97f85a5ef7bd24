// Package version holds build metadata injected at link time.
package version

import "fmt"

// Set via -ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns the human-readable version line.
func String() string {
	return fmt.Sprintf("mdserve %s (commit %s, built %s)", Version, Commit, Date)
}
