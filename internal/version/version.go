package version

import "runtime/debug"

// Set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/xbusd/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/xbusd/internal/version.Commit=abc123"
var (
	// Version is the release version of xbusd
	Version = ""
	// Commit is the git commit hash
	Commit = ""
)

func init() {
	if Commit == "" {
		Commit = commitFromBuildInfo()
	}
	if Commit == "" {
		Commit = "unknown"
	}
	if Version == "" {
		Version = "dev"
	}
}

// commitFromBuildInfo reads the VCS revision embedded by the Go
// toolchain when building inside a git checkout.
func commitFromBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			rev := setting.Value
			if len(rev) > 7 {
				rev = rev[:7]
			}
			return rev
		}
	}
	return ""
}
