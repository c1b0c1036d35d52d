// Package build holds build-time information, values are set by ldflags.
package build

// nolint: gochecknoglobals
var (
	BuildVersion = "dev"
	GitCommit    = "-"
	BuildDate    = "-"
)
