package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/hostbridge/internal/engines/polyscript"
	"github.com/atlanticdynamic/hostbridge/internal/fancy"
	"github.com/atlanticdynamic/hostbridge/internal/hostinfo"
)

// extensions maps script file extensions to MIME types.
var extensions = map[string]string{
	".risor":    polyscript.RisorMIMETypes[0],
	".rsr":      polyscript.RisorMIMETypes[0],
	".star":     polyscript.StarlarkMIMETypes[0],
	".starlark": polyscript.StarlarkMIMETypes[0],
	".sky":      polyscript.StarlarkMIMETypes[0],
}

var runCmd = &cli.Command{
	Name:      "run",
	Usage:     "Evaluate a script with the configured globals and the sample host objects",
	ArgsUsage: "<script>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "mime",
			Aliases: []string{"m"},
			Usage:   "MIME type of the script; defaults to one derived from the file extension",
		},
		&cli.BoolFlag{
			Name:  "no-samples",
			Usage: "Do not expose the sample host objects",
		},
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "Print the collected metrics after the run",
		},
	},
	Action: runAction,
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("script path required")
	}
	mimeType := cmd.String("mime")
	if mimeType == "" {
		mt, ok := extensions[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return fmt.Errorf("cannot derive a MIME type from %s, use --mime", path)
		}
		mimeType = mt
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	cfg := configFrom(ctx)
	b, err := newBridge(cfg, bridgeOptions{})
	if err != nil {
		return err
	}
	stop := b.follow(ctx)
	defer stop()

	eng, err := b.engine(ctx, mimeType)
	if err != nil {
		return err
	}

	if !cmd.Bool("no-samples") {
		samples := hostinfo.Samples(cfg.Globals)
		for _, name := range slices.Sorted(maps.Keys(samples)) {
			if err := eng.Expose(name, samples[name]); err != nil {
				return err
			}
		}
	}

	b.logger.Debug("Running script", "path", path, "mime", mimeType, "engine_id", eng.ID())
	result, err := eng.Exec(ctx, string(source))
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	fmt.Fprintln(w, result)

	if cmd.Bool("metrics") {
		families, err := b.prom.Gather()
		if err != nil {
			return fmt.Errorf("failed to gather metrics: %w", err)
		}
		fmt.Fprintln(w, fancy.MetricsTree(families))
	}
	return nil
}
