package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/palmdb/internal/config"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFrom returns the config loaded by the root command, or a zero Config.
func configFrom(ctx context.Context) config.Config {
	cfg, _ := ctx.Value(configKey{}).(config.Config)
	return cfg
}

// applyConfig applies config file defaults to the logging flags that were
// not set explicitly.
func (s *logSettings) applyConfig(c *cli.Command, cfg config.Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		s.level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		s.format = cfg.LogFormat
	}
}

// applyConfig applies config file codec defaults to flags that were not set
// explicitly.
func (s *codecSettings) applyConfig(c *cli.Command, cfg config.Config) {
	if cfg.UnixEpoch != nil && !c.IsSet("unix-epoch") {
		s.unixEpoch = *cfg.UnixEpoch
	}
	if cfg.Strict != nil && !c.IsSet("strict") {
		s.strict = *cfg.Strict
	}
	if cfg.Location != "" && !c.IsSet("location") {
		s.location = cfg.Location
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg config.Config, addr *string, maxUpload *int64) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxUploadBytes != nil && !c.IsSet("max-upload") {
		*maxUpload = *cfg.MaxUploadBytes
	}
}
