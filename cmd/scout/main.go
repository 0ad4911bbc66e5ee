// Package main is the entry point for the Scout CLI.
package main

import (
	"os"

	"github.com/mrz1836/scout/internal/cli"
)

// Set by ldflags at build time.
//
//nolint:gochecknoglobals // Build metadata injected via -ldflags
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	cli.SetBuildInfo(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
