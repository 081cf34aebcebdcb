package version

import "fmt"

// Version is set at link time:
// go build -ldflags "-X git.home.luguber.info/inful/sitegen/internal/version.Version=v1.0.0".
var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the value printed by --version.
func String() string {
	return fmt.Sprintf("sitegen %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
