package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenauth/cmd/app/commands"
	"github.com/allisson/tokenauth/internal/app"
	"github.com/allisson/tokenauth/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Serve the API and, when enabled, the metrics endpoint",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply identity store migrations for DB_DRIVER",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "dir",
					Value: "migrations",
					Usage: "Directory containing the postgresql and mysql migration sets",
				},
				&cli.IntFlag{
					Name:  "steps",
					Usage: "Apply N migrations, or roll back N when negative (0 applies all pending)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), commands.MigrateParams{
					Driver:           cfg.DBDriver,
					ConnectionString: cfg.DBConnectionString,
					Dir:              cmd.String("dir"),
					Steps:            int(cmd.Int("steps")),
				})
			},
		},
	}
}
