package main

import (
	"context"

	"github.com/tunesift/tunesift/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve starts the JSON recommendation API.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		r.logger.Warn("serving without personalization", "error", err)
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port != 0 {
		cfg.Port = port
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestIDMiddleware(), server.LoggingMiddleware(r.logger))
	router.Handler(server.NewAPI(r.engine, r.favorites, r.feedback, r.history, r.logger))

	return server.Serve(cfg, router, r.logger)
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve recommendations over HTTP (GET /api/recommend?q=...)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind address (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Bind port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}
