package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nick-dorsch/taskboard/internal/mcp"
	"github.com/nick-dorsch/taskboard/internal/server"
	"github.com/urfave/cli/v3"
)

func (a *App) serveCommand() *cli.Command {
	var addr string

	return &cli.Command{
		Name:      "serve",
		Usage:     "Run the JSON API",
		UsageText: "taskboard serve [--addr :8080]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides http.addr)",
				Sources:     cli.EnvVars("TASKBOARD_ADDR"),
				Destination: &addr,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			return a.serve(ctx, addr)
		},
	}
}

func (a *App) serve(ctx context.Context, addr string) error {
	svc, err := a.Service(ctx)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(svc, a.log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Description: `Exposes the task tools to MCP clients over stdin/stdout.

Logs go to stderr or --log-file so stdout stays reserved for the protocol.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			return mcp.Serve(mcp.NewServer(svc, version))
		},
	}
}
