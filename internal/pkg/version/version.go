// Package version renders the build information printed by the --version flag.
package version

import (
	"fmt"
	"runtime"

	"github.com/bluecarto/geoloader/internal/pkg/build"
)

func Version() string {
	return fmt.Sprintf(
		"Version:    %s\nGit commit: %s\nBuild date: %s\nGo version: %s\nOs/Arch:    %s/%s\n",
		build.BuildVersion,
		build.GitCommit,
		build.BuildDate,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
	)
}
