package main

import (
	"os"

	"github.com/journeykit/journeymap/internal/cli"
	"github.com/journeykit/journeymap/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
