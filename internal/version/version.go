/*
Package version provides build information for tool-hub-search.

Values are set via ldflags during build:

	go build -ldflags "-X github.com/khanglvm/tool-hub-search/internal/version.Version=v0.3.0 \
	  -X github.com/khanglvm/tool-hub-search/internal/version.Commit=$(git rev-parse --short HEAD) \
	  -X github.com/khanglvm/tool-hub-search/internal/version.Date=$(date -u +%Y-%m-%d)"

Unset values mean a "dev" build.
*/
package version

import "runtime"

// Name is reported as the MCP server name and in CLI output.
const Name = "tool-hub-search"

var (
	// Version is the release tag (e.g., v0.3.0)
	Version = "dev"
	// Commit is the git commit hash (short form)
	Commit = "none"
	// Date is the build date in UTC (YYYY-MM-DD)
	Date = "unknown"
)

// Info is the machine-readable build description.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
}

// IsDev reports whether the binary was built without release ldflags.
func (i Info) IsDev() bool { return i.Version == "dev" }

// String formats the build information for display.
func (i Info) String() string {
	return FormatVersion(i.Version, i.Commit, i.Date)
}

// GetVersion returns version information as a formatted string
func GetVersion() string {
	return Get().String()
}

// FormatVersion formats version components into a display string
func FormatVersion(version, commit, date string) string {
	if version == "dev" {
		return version + " (development build)"
	}
	return version + " (commit: " + commit + ", built: " + date + ")"
}
