package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/hostbridge/internal/config"
	"github.com/atlanticdynamic/hostbridge/internal/logging"
)

type configKey struct{}

// setup loads the config file, if any, and installs the default logger. Flags override the
// config file's logging section.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg := &config.Config{}
	if path := cmd.String("config"); path != "" {
		loaded, err := config.NewConfig(path)
		if err != nil {
			return ctx, err
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return ctx, err
	}

	opts := cfg.Logging.Options()
	if v := cmd.String("log-level"); v != "" {
		opts.Level = v
	}
	if v := cmd.String("log-format"); v != "" {
		opts.Format = v
	}
	if v := cmd.String("log-output"); v != "" {
		opts.Output = v
	}
	if _, err := logging.SetupLogger(opts); err != nil {
		return ctx, fmt.Errorf("failed to set up logging: %w", err)
	}

	return context.WithValue(ctx, configKey{}, cfg), nil
}

// configFrom returns the config loaded by setup, or an empty one.
func configFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	cfg := &config.Config{}
	_ = cfg.Validate()
	return cfg
}
