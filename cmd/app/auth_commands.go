package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenauth/cmd/app/commands"
	"github.com/allisson/tokenauth/internal/app"
	"github.com/allisson/tokenauth/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-signing-secret",
			Usage: "Generate a random token signing secret for AUTH_SIGNING_SECRET",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "size",
					Aliases: []string{"s"},
					Value:   commands.DefaultSigningSecretSize,
					Usage:   "Secret size in bytes",
				},
				&cli.StringFlag{
					Name:    "kms-key-uri",
					Aliases: []string{"k"},
					Usage:   "Wrap the secret with this KMS keeper (e.g. base64key://..., gcpkms://...)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateSigningSecret(
					ctx,
					container.KMSService(),
					container.Logger(),
					int(cmd.Int("size")),
					cmd.String("kms-key-uri"),
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
		{
			Name:  "create-identity",
			Usage: "Create an identity with the given capability and print a token for it",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Identity email, also the token subject",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Identity password (omit to be prompted)",
				},
				&cli.StringFlag{
					Name:    "capability",
					Aliases: []string{"c"},
					Value:   "USER",
					Usage:   "Capability: 'USER' or 'ADMIN'",
				},
				&cli.StringFlag{
					Name:  "first-name",
					Usage: "First name",
				},
				&cli.StringFlag{
					Name:  "last-name",
					Usage: "Last name",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				authUseCase, err := container.AuthUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateIdentity(
					ctx,
					authUseCase,
					container.Logger(),
					commands.CreateIdentityParams{
						Email:      cmd.String("email"),
						Password:   cmd.String("password"),
						Capability: cmd.String("capability"),
						FirstName:  cmd.String("first-name"),
						LastName:   cmd.String("last-name"),
						Format:     cmd.String("format"),
					},
					commands.DefaultIO(),
				)
			},
		},
	}
}
