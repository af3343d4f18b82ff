package app

import "fmt"

// Build metadata, overridden with ldflags:
// go build -ldflags "-X github.com/jaqb8/lingocheck/internal/app.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion is the single string reported at startup and on /health.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
