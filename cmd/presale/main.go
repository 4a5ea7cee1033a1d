// Package main is the entry point for the presale dashboard CLI.
package main

import (
	"os"

	"github.com/mrz1836/presale/internal/cli"
)

// Set by the linker: -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
//
//nolint:gochecknoglobals // build metadata
var (
	version string
	commit  string
	date    string
)

func main() {
	err := cli.Execute(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCode(err))
}
