package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/hostbridge/internal/config"
)

var validateCmd = &cli.Command{
	Name:    "validate",
	Aliases: []string{"lint"},
	Usage:   "Validate a configuration file",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "tree",
			Aliases: []string{"t"},
			Usage:   "Show detailed tree view of the validated configuration",
		},
	},
	ArgsUsage: "[config file]",
	Action:    validateAction,
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.Args().First()
	if configPath == "" {
		configPath = cmd.String("config")
	}
	if configPath == "" {
		return fmt.Errorf(
			"config file path required (use the --config flag, or provide the config file as positional argument)",
		)
	}

	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "Configuration file %s is valid\n", configPath)
	if cmd.Bool("tree") {
		fmt.Fprintln(w, cfg)
		return nil
	}
	fmt.Fprintln(w, renderConfigSummary(configPath, cfg))
	return nil
}

// renderConfigSummary creates a formatted summary string for the configuration
func renderConfigSummary(path string, cfg *config.Config) string {
	var summary strings.Builder

	summary.WriteString("\nConfig Summary:\n")
	summary.WriteString(fmt.Sprintf("- Path: %s\n", path))
	summary.WriteString(fmt.Sprintf("- Version: %s\n", cfg.Version))
	summary.WriteString(fmt.Sprintf("- Engine settings: %d\n", len(cfg.Engines)))
	summary.WriteString(fmt.Sprintf("- Globals: %d\n", len(cfg.Globals)))
	summary.WriteString(fmt.Sprintf("- Injectors: %d\n", len(cfg.Injectors(Version))))
	summary.WriteString("\nUse --tree for a more detailed view of the config.")

	return summary.String()
}
