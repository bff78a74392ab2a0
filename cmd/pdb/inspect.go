package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/palmdb/internal/logger"
	"github.com/samcharles93/palmdb/internal/report"
)

func inspectCmd() *cli.Command {
	var (
		filePath    string
		asJSON      bool
		showRecords bool
		limit       int
		codec       codecSettings
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print the header, layout and records of a .pdb file",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to .pdb file",
				Destination: &filePath,
				Required:    true,
			},
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "records", Usage: "list records", Destination: &showRecords},
			&cli.IntFlag{Name: "limit", Usage: "limit record listing (0 = no limit)", Value: 50, Destination: &limit},
		}, codec.readFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			codec.applyConfig(cmd, configFrom(ctx))

			loc, err := codec.loc()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			data, err := os.ReadFile(filePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: read %q: %v", filePath, err), 1)
			}

			r, err := report.Build(data, report.Options{
				File:     filePath,
				Records:  showRecords,
				Limit:    limit,
				Strict:   codec.strict,
				Location: loc,
				Logger:   log,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: inspect %q: %v", filePath, err), 1)
			}

			if asJSON {
				return r.WriteJSON(stdout(cmd))
			}
			return r.WriteText(stdout(cmd))
		},
	}
}
