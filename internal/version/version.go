// Package version exposes build metadata injected at link time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3 ..."
package version

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit, and build date.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}
