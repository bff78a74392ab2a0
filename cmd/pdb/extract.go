package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/palmdb/internal/archive"
	"github.com/samcharles93/palmdb/internal/logger"
	"github.com/samcharles93/palmdb/pkg/pdb"
)

func extractCmd() *cli.Command {
	var (
		filePath string
		outDir   string
		codec    codecSettings
	)

	return &cli.Command{
		Name:  "extract",
		Usage: "Unpack a .pdb file into payload files and a manifest.yaml",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to .pdb file",
				Destination: &filePath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output directory",
				Destination: &outDir,
				Required:    true,
			},
		}, codec.readFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			codec.applyConfig(cmd, configFrom(ctx))

			opts, err := codec.readOptions(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			db, diags, err := pdb.ReadFile(filePath, opts)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: read %q: %v", filePath, err), 1)
			}
			m, err := archive.Extract(db, outDir)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}

			log.Info("extracted database",
				"name", db.Name,
				"records", len(m.Records),
				"app_info", m.AppInfo != "",
				"sort_info", m.SortInfo != "",
				"dir", outDir,
			)
			if err := diags.Err(); err != nil {
				log.Warn("some regions were not extracted", "error", err)
			}
			_, err = fmt.Fprintf(stdout(cmd), "%s: %d records -> %s\n", db.Name, len(m.Records), outDir)
			return err
		},
	}
}
