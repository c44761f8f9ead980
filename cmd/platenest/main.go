// platenest — flat-pattern part aggregation and sheet nesting
//
// Build:
//   go build -o platenest ./cmd/platenest
package main

import (
	"os"

	"github.com/msepahkar/platenest/internal/cli"
)

// Populated via ldflags at release build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
