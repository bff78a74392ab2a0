package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/palmdb/internal/api"
	"github.com/samcharles93/palmdb/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		maxUpload   int64
		readTimeout time.Duration
		codec       codecSettings
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the database inspection API",
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.Int64Flag{
				Name:        "max-upload",
				Usage:       "largest accepted upload in bytes",
				Value:       api.DefaultMaxUploadBytes,
				Destination: &maxUpload,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		}, codec.readFlags()...), codec.writeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFrom(ctx)
			codec.applyConfig(cmd, cfg)
			applyServeConfig(cmd, cfg, &addr, &maxUpload)

			loc, err := codec.loc()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			server := api.NewServer(api.NewDatabaseStore(), api.NewMetrics(), api.Config{
				MaxUploadBytes: maxUpload,
				Strict:         codec.strict,
				UnixEpoch:      codec.unixEpoch,
				Location:       loc,
				Logger:         log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "max_upload", maxUpload)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
