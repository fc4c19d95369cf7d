// Package buildinfo identifies the swapsort build. The short form is printed
// by --version and stamped into session manifests, so a resumed run can tell
// which build started it.
//
// Variables are set via ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/swapsort/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/swapsort/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/swapsort/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const shortCommit = 7

// Short returns Version followed by the abbreviated commit, e.g.
// "v0.3.0 (1a2b3c4)". Without a commit it returns Version alone.
func Short() string {
	if Commit == "" || Commit == "none" {
		return Version
	}
	c := Commit
	if len(c) > shortCommit {
		c = c[:shortCommit]
	}
	return fmt.Sprintf("%s (%s)", Version, c)
}

// Template returns the version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\nbuilt: %s\n", Short(), Date)
}
