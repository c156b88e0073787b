// Package version provides build-time version information.
package version

import (
	"fmt"
	"log/slog"
)

// Set at build time with
// -ldflags "-X map-editor/internal/version.Version=... -X ...BuildTime=... -X ...GitCommit=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the build information on one line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

// Attr returns the build information as a log attribute group.
func Attr() slog.Attr {
	return slog.Group("build",
		slog.String("version", Version),
		slog.String("commit", GitCommit),
		slog.String("time", BuildTime),
	)
}
