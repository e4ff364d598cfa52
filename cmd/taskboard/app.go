package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/nick-dorsch/taskboard/internal/config"
	"github.com/nick-dorsch/taskboard/internal/generate"
	"github.com/nick-dorsch/taskboard/internal/service"
	"github.com/nick-dorsch/taskboard/internal/snapshot"
	"github.com/nick-dorsch/taskboard/internal/store"
	"github.com/nick-dorsch/taskboard/internal/ui"
	"github.com/nick-dorsch/taskboard/pkg/logutils"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	EnvFile    string
}

// App holds what the commands share. The store and service are opened on
// first use so that commands like `board --server` never touch a database.
type App struct {
	flags Flags
	out   io.Writer

	cfg       *config.Config
	log       zerolog.Logger
	logCloser func()

	store store.Store
	svc   *service.TaskService
}

func NewApp(out io.Writer) *App {
	return &App{out: out, log: zerolog.Nop()}
}

func (a *App) Command() *cli.Command {
	root := &cli.Command{
		Name:      "taskboard",
		Usage:     "A kanban board with AI task generation",
		UsageText: "taskboard [global options] command [command options]",
		Description: `Taskboard keeps tasks in three columns: To Do, In Progress and Done.

Run 'taskboard' with no arguments to pick a mode from the menu.
Run 'taskboard serve' to expose the JSON API, or 'taskboard board' for the terminal board.`,
		Version: build(),
		Writer:  a.out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKBOARD_CONFIG"),
				Value:       "taskboard.yaml",
				Destination: &a.flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("TASKBOARD_LOG_LEVEL"),
				Value:       "info",
				Destination: &a.flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "write JSON logs to this file instead of stderr",
				Sources:     cli.EnvVars("TASKBOARD_LOG_FILE"),
				Destination: &a.flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "dotenv file loaded before the config",
				Sources:     cli.EnvVars("TASKBOARD_ENV_FILE"),
				Value:       ".env",
				Destination: &a.flags.EnvFile,
			},
		},
		Before: a.before,
		After: func(ctx context.Context, c *cli.Command) error {
			return a.Close()
		},
		Commands: []*cli.Command{
			a.serveCommand(),
			a.mcpCommand(),
			a.boardCommand(),
			a.listCommand(),
			a.addCommand(),
			a.showCommand(),
			a.moveCommand(),
			a.rmCommand(),
			a.generateCommand(),
			a.statusCommand(),
			a.snapshotCommand(),
			a.exportCommand(),
		},
	}

	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'taskboard --help' for usage", c.Args().First())
		}

		selected, err := ui.RunMenu()
		if err != nil {
			return fmt.Errorf("run menu: %w", err)
		}
		if selected == "" {
			return nil
		}
		sub := c.Command(selected)
		if sub == nil {
			return fmt.Errorf("unknown command %q", selected)
		}
		return sub.Action(ctx, sub)
	}

	return root
}

func (a *App) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	if a.flags.EnvFile != "" {
		if err := godotenv.Load(a.flags.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ctx, fmt.Errorf("load env file: %w", err)
		}
	}

	logger, closer, err := logutils.New(a.flags.LogLevel, a.flags.LogFile)
	if err != nil {
		return ctx, fmt.Errorf("setup logger: %w", err)
	}
	a.log = logger
	a.logCloser = closer

	cfg, err := config.Load(a.flags.ConfigPath)
	if err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	return ctx, nil
}

// Store opens the configured backend once.
func (a *App) Store(ctx context.Context) (store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	st, err := store.Open(ctx, a.cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = st
	a.log.Debug().Str("driver", a.cfg.Store.Driver).Msg("store opened")
	return st, nil
}

// Service builds the task service on top of Store. Generation is only wired
// when an API key is configured.
func (a *App) Service(ctx context.Context) (*service.TaskService, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	st, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}

	var drafter service.Drafter
	if a.cfg.Gemini.APIKey != "" {
		model, err := generate.NewGemini(ctx, a.cfg.Gemini.APIKey, a.cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		drafter = generate.New(model, a.cfg.Gemini.MinTasks, a.cfg.Gemini.MaxTasks, a.log)
	} else {
		a.log.Debug().Msg("task generation disabled: no API key")
	}

	svc, err := service.New(st, drafter, a.log)
	if err != nil {
		return nil, err
	}

	if a.cfg.Snapshot.Auto {
		path := a.cfg.Snapshot.Path
		svc.SetOnChange(func(ctx context.Context) {
			if err := snapshot.ExportFile(ctx, st, path); err != nil {
				a.log.Error().Err(err).Str("path", path).Msg("auto snapshot failed")
			}
		})
	}

	a.svc = svc
	return svc, nil
}

func (a *App) Close() error {
	var err error
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			a.log.Error().Err(cerr).Msg("failed to close store")
			err = cerr
		}
		a.store = nil
		a.svc = nil
	}
	if a.logCloser != nil {
		a.logCloser()
		a.logCloser = nil
	}
	return err
}
