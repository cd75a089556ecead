package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/piivault/cmd/app/commands"
	"github.com/allisson/piivault/internal/app"
	"github.com/allisson/piivault/internal/config"
)

func getVaultCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "ingest",
			Usage: "Store a JSON token map in the vault",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "file",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Path to a JSON object of token to value, or '-' for stdin",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				vault, err := commands.OpenVault(ctx, container)
				if err != nil {
					return err
				}

				return commands.RunIngest(
					ctx,
					vault,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("file"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "detokenize",
			Usage: "Rewrite tokens read from stdin and write the result to stdout",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				if _, err := commands.OpenVault(ctx, container); err != nil {
					return err
				}

				d, err := container.Detokenizer()
				if err != nil {
					return err
				}

				return commands.RunDetokenize(ctx, d, cfg.StreamChunkSize, commands.DefaultIO())
			},
		},
		{
			Name:  "stats",
			Usage: "Show vault statistics",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				vault, err := container.VaultUseCase()
				if err != nil {
					return err
				}
				if _, err := container.OpenSessionFromConfig(ctx); err != nil {
					return err
				}

				return commands.RunStats(ctx, vault, commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
		{
			Name:  "wipe",
			Usage: "Delete every record in the vault namespace",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "yes",
					Aliases: []string{"y"},
					Usage:   "Skip the confirmation prompt",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				vault, err := container.VaultUseCase()
				if err != nil {
					return err
				}

				return commands.RunWipe(ctx, vault, container.Logger(), commands.DefaultIO(), cmd.Bool("yes"))
			},
		},
	}
}
