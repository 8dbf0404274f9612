package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-flow-graph/pkg/cfg"
	"github.com/l3aro/go-flow-graph/pkg/parser"
	"github.com/l3aro/go-flow-graph/pkg/stmt"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> <function>",
	Short: "Build the control flow graph for a function",
	Long: `Builds the Control Flow Graph (CFG) for a specific function in a Python
file. Class methods are addressed as Class.method. Outputs nodes and
labeled edges, as JSON with --json.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		functionName := args[1]

		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", filePath)
		}
		if !strings.HasSuffix(filePath, ".py") {
			return fmt.Errorf("unsupported file type: %s (only .py files supported)", filePath)
		}

		module, err := parser.ParseFile(filePath)
		if err != nil {
			return err
		}

		fn := findFunction(module, functionName)
		if fn == nil {
			if suggestion := closestFunction(module, functionName); suggestion != "" {
				return fmt.Errorf("function %q not found in %s\nDid you mean: %s?", functionName, filePath, suggestion)
			}
			return fmt.Errorf("function %q not found in %s", functionName, filePath)
		}

		graph, err := cfg.Build(fn)
		if err != nil {
			var inputErr *cfg.InputError
			if errors.As(err, &inputErr) {
				return fmt.Errorf("building CFG: %s", inputErr.Msg)
			}
			return fmt.Errorf("building CFG: %w", err)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(graph.Serializable(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printGraph(graph)
		return nil
	},
}

// findFunction returns the module's function with the exact name, or nil.
func findFunction(m *stmt.Module, name string) *stmt.Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// closestFunction suggests a function whose name contains (or is contained
// by) the requested one, for friendlier not-found errors.
func closestFunction(m *stmt.Module, name string) string {
	lower := strings.ToLower(name)
	for _, fn := range m.Functions {
		fnLower := strings.ToLower(fn.Name)
		if strings.Contains(fnLower, lower) || strings.Contains(lower, fnLower) {
			return fn.Name
		}
	}
	return ""
}

// printGraph prints a graph in human-readable form.
func printGraph(g *cfg.Graph) {
	fmt.Printf("=== CFG for function: %s ===\n", g.Function)

	nodes := g.Nodes()
	fmt.Printf("\nNodes (%d):\n", len(nodes))
	for _, n := range nodes {
		if n.Line > 0 {
			fmt.Printf("  [%d] %s (%s, line %d)\n", n.ID, n.Label, n.Kind, n.Line)
		} else {
			fmt.Printf("  [%d] %s (%s)\n", n.ID, n.Label, n.Kind)
		}
	}

	edges := g.Edges()
	fmt.Printf("\nEdges (%d):\n", len(edges))
	for _, e := range edges {
		if e.Label != "" {
			fmt.Printf("  %d --%s--> %d\n", e.From, e.Label, e.To)
		} else {
			fmt.Printf("  %d --> %d\n", e.From, e.To)
		}
	}
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(cfgCmd)
}
