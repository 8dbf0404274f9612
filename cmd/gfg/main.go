// Package main implements the go-flow-graph CLI (gfg). It provides
// commands for building control flow graphs from Python source files.
package main

import (
	"os"

	"github.com/l3aro/go-flow-graph/cmd/gfg/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
