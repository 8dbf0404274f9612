package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-flow-graph/internal/config"
	"github.com/l3aro/go-flow-graph/internal/log"
	"github.com/l3aro/go-flow-graph/internal/scanner"
	"github.com/l3aro/go-flow-graph/pkg/cache"
	"github.com/l3aro/go-flow-graph/pkg/cfg"
	"github.com/l3aro/go-flow-graph/pkg/parser"
)

// FunctionResult is one function's build outcome within a batch.
type FunctionResult struct {
	Function string                 `json:"function"`
	Graph    *cfg.SerializableGraph `json:"graph,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// FileResult groups the function results of one source file.
type FileResult struct {
	File      string           `json:"file"`
	Functions []FunctionResult `json:"functions"`
}

// BatchResult is the JSON document batch writes.
type BatchResult struct {
	Root  string       `json:"root"`
	Files []FileResult `json:"files"`
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Build CFGs for every function under a directory",
	Long: `Scans a directory tree for Python files and builds the control flow
graph of every function found, one file per goroutine. Results are cached
on disk keyed by file content, so unchanged files are not rebuilt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		return runBatch(args[0], output, noCache)
	},
}

func runBatch(root, output string, noCache bool) error {
	cfgFile, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.Default()
	if cfgFile.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	logger.SetJSONOutput(cfgFile.JSONLogs)

	files, err := scanner.New(scanner.Options{
		SkipHidden:  true,
		ExcludeDirs: cfgFile.ExcludeDirs,
	}).Scan(root)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", root, err)
	}
	logger.Debug("scan complete", "root", root, "files", len(files))

	useCache := cfgFile.CacheEnabled && !noCache
	graphCache := cache.New(cache.Options{MaxSize: cfgFile.MaxCachedGraphs})
	if useCache {
		if err := graphCache.LoadFile(cfgFile.CacheFilePath()); err != nil {
			logger.Warn("cache unreadable, starting empty", "error", err)
			graphCache.Clear()
		}
	}

	spinner := log.NewProgressSpinner(fmt.Sprintf("Building CFGs for %d files...", len(files)))
	spinner.Start()

	// One goroutine per file; each build owns its graph and target stacks,
	// so no synchronization is needed beyond the result slots and cache.
	results := make([]FileResult, len(files))
	var wg sync.WaitGroup
	var mu sync.Mutex // guards logger-visible counters and cache writes below

	hits, misses := 0, 0
	for i, file := range files {
		wg.Add(1)
		go func(i int, file scanner.FileInfo) {
			defer wg.Done()

			res := FileResult{File: file.Path, Functions: []FunctionResult{}}
			defer func() {
				results[i] = res
			}()

			content, err := os.ReadFile(file.FullPath)
			if err != nil {
				logger.Warn("skipping unreadable file", "file", file.Path, "error", err)
				return
			}

			module := parser.Parse(content, file.Path)
			for _, fn := range module.Functions {
				key := cache.Key(file.Path, content, fn.Name)

				if useCache {
					if cached, found := graphCache.Get(key); found {
						res.Functions = append(res.Functions, FunctionResult{
							Function: fn.Name,
							Graph:    cached,
						})
						mu.Lock()
						hits++
						mu.Unlock()
						continue
					}
				}

				graph, err := cfg.Build(fn)
				if err != nil {
					res.Functions = append(res.Functions, FunctionResult{
						Function: fn.Name,
						Error:    err.Error(),
					})
					continue
				}

				serialized := graph.Serializable()
				res.Functions = append(res.Functions, FunctionResult{
					Function: fn.Name,
					Graph:    serialized,
				})
				if useCache {
					graphCache.Set(key, serialized)
				}
				mu.Lock()
				misses++
				mu.Unlock()
			}
		}(i, file)
	}
	wg.Wait()
	spinner.Stop()

	logger.Info("batch complete", "files", len(files), "cached", hits, "built", misses)

	if useCache {
		if err := graphCache.SaveFile(cfgFile.CacheFilePath()); err != nil {
			logger.Warn("saving cache failed", "error", err)
		}
	}

	doc := BatchResult{Root: root, Files: results}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	logger.Info("results written", "output", output)
	return nil
}

func init() {
	batchCmd.Flags().StringP("output", "o", "", "Write results to a file instead of stdout")
	batchCmd.Flags().Bool("no-cache", false, "Bypass the graph cache")
	RootCmd.AddCommand(batchCmd)
}
