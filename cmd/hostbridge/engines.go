package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/hostbridge/internal/fancy"
)

var enginesCmd = &cli.Command{
	Name:  "engines",
	Usage: "List the registered script engines and their MIME types",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		b, err := newBridge(configFrom(ctx), bridgeOptions{})
		if err != nil {
			return err
		}

		byEngine := make(map[string][]string)
		for _, mt := range b.registry.MIMETypes() {
			f, ok := b.registry.Factory(mt)
			if !ok {
				continue
			}
			byEngine[f.Name()] = append(byEngine[f.Name()], mt)
		}

		w := cmd.Root().Writer
		fmt.Fprintln(w, fancy.EngineTree(byEngine, slices.Sorted(maps.Keys(byEngine))))
		return nil
	},
}
