package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/palmdb/internal/config"
	"github.com/samcharles93/palmdb/internal/logger"
	"github.com/samcharles93/palmdb/pkg/pdb"
)

// logSettings backs the global logging flags.
type logSettings struct {
	level  string
	format string
	debug  bool
}

func (s *logSettings) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &s.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &s.format,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &s.debug,
		},
	}
}

// setup loads the config file, applies it under the flags and stores the
// resulting logger and config in ctx.
func (s *logSettings) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, err
	}
	s.applyConfig(cmd, cfg)

	level, err := logger.ParseLevel(s.level)
	if err != nil {
		return ctx, err
	}
	if s.debug {
		level = slog.LevelDebug
	}
	format, err := logger.ParseFormat(s.format)
	if err != nil {
		return ctx, err
	}

	log := logger.New(os.Stderr, format, level)
	ctx = logger.WithContext(ctx, log)
	return withConfig(ctx, cfg), nil
}

// codecSettings backs the flags shared by commands that decode or encode.
type codecSettings struct {
	unixEpoch bool
	strict    bool
	location  string
}

func (s *codecSettings) readFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "fail instead of skipping regions that have no decoder",
			Destination: &s.strict,
		},
		&cli.StringFlag{
			Name:        "location",
			Usage:       "time zone epoch bases are computed in (IANA name, Local or UTC)",
			Value:       "Local",
			Destination: &s.location,
		},
	}
}

func (s *codecSettings) writeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "unix-epoch",
			Usage:       "write timestamps relative to 1970 instead of 1904",
			Destination: &s.unixEpoch,
		},
	}
}

func (s *codecSettings) loc() (*time.Location, error) {
	return config.ParseLocation(s.location)
}

func (s *codecSettings) readOptions(log pdb.Logger) (pdb.ReadOptions[pdb.GenericRecord, pdb.GenericBlock, pdb.GenericBlock], error) {
	opts := pdb.GenericReadOptions()
	loc, err := s.loc()
	if err != nil {
		return opts, err
	}
	opts.Strict = s.strict
	opts.Location = loc
	opts.Logger = log
	return opts, nil
}

func (s *codecSettings) writeOptions() (pdb.WriteOptions, error) {
	loc, err := s.loc()
	if err != nil {
		return pdb.WriteOptions{}, err
	}
	return pdb.WriteOptions{UnixEpoch: s.unixEpoch, Location: loc}, nil
}

// stdout is where commands print results.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
