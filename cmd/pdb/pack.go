package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/palmdb/internal/archive"
	"github.com/samcharles93/palmdb/internal/logger"
	"github.com/samcharles93/palmdb/pkg/pdb"
)

func packCmd() *cli.Command {
	var (
		inDir   string
		outPath string
		codec   codecSettings
	)

	return &cli.Command{
		Name:  "pack",
		Usage: "Build a .pdb file from an extracted directory",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"input", "in"},
				Usage:       "directory containing manifest.yaml",
				Destination: &inDir,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"output", "o"},
				Usage:       "output .pdb path",
				Destination: &outPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "location",
				Usage:       "time zone epoch bases are computed in (IANA name, Local or UTC)",
				Value:       "Local",
				Destination: &codec.location,
			},
		}, codec.writeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			codec.applyConfig(cmd, configFrom(ctx))

			opts, err := codec.writeOptions()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			db, err := archive.Pack(inDir)
			if err != nil {
				return fmt.Errorf("pack: %w", err)
			}
			if err := pdb.WriteFile(outPath, db, opts); err != nil {
				return fmt.Errorf("pack: %w", err)
			}

			log.Info("packed database", "name", db.Name, "records", db.NumRecords(), "out", outPath)
			return nil
		},
	}
}

func repackCmd() *cli.Command {
	var (
		filePath string
		outPath  string
		codec    codecSettings
	)

	return &cli.Command{
		Name:  "repack",
		Usage: "Decode a .pdb file and write it back with recomputed offsets",
		Flags: append(append([]cli.Flag{
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
				Usage:       "output .pdb path (may equal --file)",
				Destination: &outPath,
				Required:    true,
			},
		}, codec.readFlags()...), codec.writeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			codec.applyConfig(cmd, configFrom(ctx))

			ropts, err := codec.readOptions(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			wopts, err := codec.writeOptions()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			db, diags, err := pdb.ReadFile(filePath, ropts)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: read %q: %v", filePath, err), 1)
			}
			if len(diags) > 0 {
				return cli.Exit(fmt.Sprintf("error: %q has regions without decoders: %v", filePath, diags.Err()), 1)
			}
			if err := pdb.WriteFile(outPath, db, wopts); err != nil {
				return fmt.Errorf("repack: %w", err)
			}

			log.Info("repacked database", "name", db.Name, "records", db.NumRecords(), "out", outPath)
			return nil
		},
	}
}
