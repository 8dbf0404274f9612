package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-flow-graph/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gfg configuration interactively",
	Long: `Guides you through setting up gfg configuration step by step.
Creates a config file with cache and logging settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetBool("project")
		return runInit(project)
	},
}

func runInit(project bool) error {
	cfg := config.DefaultConfig()

	cacheEnabled := cfg.CacheEnabled
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable the graph cache?").
				Description("Caches built CFGs on disk so unchanged files are not rebuilt").
				Value(&cacheEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.CacheEnabled = cacheEnabled

	if cacheEnabled {
		cacheDir := cfg.CacheDir
		maxGraphs := strconv.Itoa(cfg.MaxCachedGraphs)
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cache directory").
					Placeholder(cfg.CacheDir).
					Value(&cacheDir),
				huh.NewInput().
					Title("Maximum cached graphs (0 = unlimited)").
					Placeholder("5000").
					Validate(func(s string) error {
						n, err := strconv.Atoi(s)
						if err != nil || n < 0 {
							return fmt.Errorf("enter a non-negative number")
						}
						return nil
					}).
					Value(&maxGraphs),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		cfg.CacheDir = cacheDir
		cfg.MaxCachedGraphs, _ = strconv.Atoi(maxGraphs)
	}

	verbose := cfg.Verbose
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable verbose logging?").
				Value(&verbose),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.Verbose = verbose

	path := config.GlobalPath()
	if project {
		path = ".gfg/config.yaml"
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("Configuration saved to %s\n", path)
	return nil
}

func init() {
	initCmd.Flags().Bool("project", false, "Write a project-level config (./.gfg/config.yaml)")
	RootCmd.AddCommand(initCmd)
}
