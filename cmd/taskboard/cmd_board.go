package main

import (
	"context"

	"github.com/nick-dorsch/taskboard/internal/client"
	"github.com/nick-dorsch/taskboard/internal/ui/board"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

func (a *App) boardCommand() *cli.Command {
	var serverURL string

	return &cli.Command{
		Name:      "board",
		Usage:     "Open the terminal kanban board",
		UsageText: "taskboard board [--server http://localhost:8080]",
		Description: `Without --server the board works on the configured store directly.
With --server it talks to a running 'taskboard serve'.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Usage:       "API base URL (overrides board.server)",
				Sources:     cli.EnvVars("TASKBOARD_SERVER"),
				Destination: &serverURL,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			b, err := a.boardBackend(ctx, serverURL)
			if err != nil {
				return err
			}

			// console logs would draw over the alt screen
			log := a.log
			if a.flags.LogFile == "" {
				log = zerolog.Nop()
			}
			return board.Run(ctx, b, a.cfg.Board.RefreshInterval, log)
		},
	}
}

func (a *App) boardBackend(ctx context.Context, serverURL string) (board.Board, error) {
	if serverURL == "" {
		serverURL = a.cfg.Board.Server
	}
	if serverURL != "" {
		a.log.Debug().Str("server", serverURL).Msg("using remote board")
		return client.New(serverURL), nil
	}
	svc, err := a.Service(ctx)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
