// Package commands provides the CLI commands for the go-flow-graph tool.
package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gfg",
	Short: "go-flow-graph - Control flow graphs for Python functions",
	Long: `go-flow-graph builds control flow graphs (CFGs) from Python source.

Commands:
  cfg         Build the CFG for one function in a file
  functions   List the functions discovered in a file
  batch       Build CFGs for every function under a directory
  init        Create a gfg configuration interactively

Use "gfg [command] --help" for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}
