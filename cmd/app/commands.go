package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/notehub/cmd/app/commands"
	"github.com/allisson/notehub/internal/app"
	"github.com/allisson/notehub/internal/config"
)

func getCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "bootstrap-admin",
			Usage: "Seed the admin identity when the store is empty",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "handle",
					Aliases: []string{"u"},
					Usage:   "Handle of the admin identity (defaults to ADMIN_HANDLE)",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Password of the admin identity (defaults to ADMIN_PASSWORD)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				identityUseCase, err := container.IdentityUseCase()
				if err != nil {
					return err
				}

				handle := cmd.String("handle")
				if handle == "" {
					handle = cfg.AdminHandle
				}
				password := cmd.String("password")
				if password == "" {
					password = cfg.AdminPassword
				}

				return commands.RunBootstrapAdmin(
					ctx,
					identityUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					handle,
					password,
				)
			},
		},
		{
			Name:  "clean-expired",
			Usage: "Delete expired sessions and verification tokens",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   0,
					Usage:   "Keep rows that expired within this many days",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "Report what would be deleted without removing anything",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				sessionUseCase, err := container.SessionUseCase()
				if err != nil {
					return err
				}

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanExpired(
					ctx,
					sessionUseCase,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.String("format"),
					cmd.Bool("dry-run"),
				)
			},
		},
	}
}
