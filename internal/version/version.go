/*
Package version holds the build identity of tingle-radar.

The variables are set with ldflags:

	go build -ldflags "-X github.com/tingleradar/tingle-radar/internal/version.Version=v0.3.0 \
	  -X github.com/tingleradar/tingle-radar/internal/version.Commit=$(git rev-parse --short HEAD) \
	  -X github.com/tingleradar/tingle-radar/internal/version.Date=$(date -u +%F)"

An unstamped binary reports "dev".
*/
package version

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build identity as reported by 'tingle-radar version --json'
// and the MCP initialize handshake.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the stamped build identity.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// IsDev reports whether the binary was built without a version stamp.
func (i Info) IsDev() bool {
	return i.Version == "dev"
}

// String formats the identity for --version output.
func (i Info) String() string {
	if i.IsDev() {
		return i.Version + " (development build)"
	}
	return i.Version + " (commit: " + i.Commit + ", built: " + i.Date + ")"
}
