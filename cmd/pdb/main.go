package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	var logs logSettings

	return &cli.Command{
		Name:  "pdb",
		Usage: "Inspect, extract and rebuild Palm OS PDB databases",
		Flags: logs.flags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return logs.setup(ctx, cmd)
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			inspectCmd(),
			extractCmd(),
			packCmd(),
			repackCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}
