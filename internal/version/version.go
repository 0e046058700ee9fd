// Package version holds the build information. Version and GitCommit are overridden at link
// time with -ldflags "-X".
package version

import (
	"fmt"
	"runtime"
)

const (
	AppName     = "maelstorm"
	Description = "embeddable asynchronous HTTP/1.x server"
)

var (
	Version   = "0.1.0"
	GitCommit = ""
	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// String renders the full version line.
func String() string {
	s := fmt.Sprintf("%s version %s (%s, %s)", AppName, Version, GoVersion, Platform)
	if len(GitCommit) > 0 {
		s += " commit " + GitCommit
	}

	return s
}
