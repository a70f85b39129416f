package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"shopstream/internal/app/bootstrap"
	"shopstream/internal/platform/config"
	"shopstream/internal/platform/db"
)

// Payments process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start the event consumer and HTTP server; stop on SIGINT/SIGTERM.
func main() {
	root := &cli.Command{
		Name:  "payments",
		Usage: "shopstream payments service",
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "run the payments HTTP server and event consumer",
				Action: func(ctx context.Context, _ *cli.Command) error {
					app, err := bootstrap.BuildPayments()
					if err != nil {
						return err
					}
					defer app.Close()
					return app.Run(ctx)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply pending database migrations",
				Action: func(_ context.Context, _ *cli.Command) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					return db.MigrateUp(cfg.PostgresDSN)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
