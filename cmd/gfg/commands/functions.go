package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-flow-graph/pkg/parser"
)

// functionsCmd represents the functions command
var functionsCmd = &cobra.Command{
	Use:   "functions <file>",
	Short: "List the functions discovered in a Python file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		if !strings.HasSuffix(filePath, ".py") {
			return fmt.Errorf("unsupported file type: %s (only .py files supported)", filePath)
		}

		module, err := parser.ParseFile(filePath)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			type entry struct {
				Name string `json:"name"`
				Line int    `json:"line"`
			}
			entries := make([]entry, 0, len(module.Functions))
			for _, fn := range module.Functions {
				entries = append(entries, entry{Name: fn.Name, Line: fn.Line})
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		for _, fn := range module.Functions {
			if fn.Err != "" {
				fmt.Printf("%s (line %d) [%s]\n", fn.Name, fn.Line, fn.Err)
				continue
			}
			fmt.Printf("%s (line %d)\n", fn.Name, fn.Line)
		}
		return nil
	},
}

func init() {
	functionsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(functionsCmd)
}
