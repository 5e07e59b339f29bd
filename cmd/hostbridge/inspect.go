package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/fancy"
	"github.com/atlanticdynamic/hostbridge/internal/hostinfo"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

var inspectCmd = &cli.Command{
	Name:  "inspect",
	Usage: "Resolve the sample host types and print their script members",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "mime",
			Aliases: []string{"m"},
			Value:   "application/x-risor",
			Usage:   "MIME type of the engine to resolve for",
		},
		&cli.BoolFlag{
			Name:  "allow-all",
			Usage: "Grant every exported member, ignoring the allow-list",
		},
		&cli.BoolFlag{
			Name:    "watch",
			Aliases: []string{"w"},
			Usage:   "Print again whenever the allow-list file changes",
		},
	},
	Action: inspectAction,
}

func inspectAction(ctx context.Context, cmd *cli.Command) error {
	reloaded := make(chan struct{}, 1)
	b, err := newBridge(configFrom(ctx), bridgeOptions{
		allowAll: cmd.Bool("allow-all"),
		onReload: func(*shutter.AllowList) {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		return err
	}

	eng, err := b.engine(ctx, cmd.String("mime"))
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if err := printMembers(w, b, eng); err != nil {
		return err
	}
	if !cmd.Bool("watch") {
		return nil
	}
	if b.watcher == nil {
		return fmt.Errorf("--watch needs an allowlist in the config file")
	}

	// drain the notification from the initial load
	select {
	case <-reloaded:
	default:
	}

	stop := b.follow(ctx)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reloaded:
			fmt.Fprintln(w, fancy.SummaryText("allow-list reloaded"))
			if err := printMembers(w, b, eng); err != nil {
				return err
			}
		}
	}
}

func printMembers(w io.Writer, b *bridge, eng engines.Engine) error {
	res := b.resolverFor(eng)
	fmt.Fprintf(w, "Engine %s (%s)\n", eng.Name(), fancy.MIMEText(eng.MIMEType()))
	for _, typ := range hostinfo.Types() {
		set, err := res.Resolve(typ)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", typ, err)
		}
		fmt.Fprintln(w, fancy.MemberTree(set))
	}
	return nil
}
