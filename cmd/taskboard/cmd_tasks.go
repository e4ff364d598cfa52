package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/nick-dorsch/taskboard/pkg/models"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

var errMissingArgs = errors.New("missing arguments")

func (a *App) listCommand() *cli.Command {
	var status string

	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "Print tasks column by column",
		UsageText: "taskboard list [--status todo|inprogress|done]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "only show one column",
				Destination: &status,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var filter *models.TaskStatus
			if status != "" {
				s, err := models.ParseTaskStatus(status)
				if err != nil {
					return err
				}
				filter = &s
			}

			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			tasks, err := svc.ListTasks(ctx, filter)
			if err != nil {
				return err
			}

			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(a.out, "No tasks")
				return nil
			}

			cols := models.Partition(tasks)
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCREATED")
			for _, s := range models.Statuses {
				for _, t := range cols.Column(s) {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.CreatedAt.Local().Format("2006-01-02 15:04"))
				}
			}
			return w.Flush()
		},
	}
}

func (a *App) addCommand() *cli.Command {
	var description string

	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task to To Do",
		UsageText: "taskboard add <title> [--description text]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description",
				Destination: &description,
			},
		},
		Description: `Without a title on an interactive terminal a form asks for the
title and description.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			title := strings.Join(c.Args().Slice(), " ")
			if title == "" {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return fmt.Errorf("%w: taskboard add <title>", errMissingArgs)
				}
				if err := runAddForm(ctx, &title, &description); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return fmt.Errorf("form: %w", err)
				}
			}

			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			t, err := svc.AddTask(ctx, title, description)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "Added %s: %s\n", t.ID, t.Title)
			return nil
		},
	}
}

func runAddForm(ctx context.Context, title, description *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return models.ErrEmptyTitle
					}
					return nil
				}).
				Value(title),
			huh.NewText().
				Title("Description").
				Description("Optional").
				Value(description),
		),
	).RunWithContext(ctx)
}

func (a *App) moveCommand() *cli.Command {
	return &cli.Command{
		Name:      "move",
		Aliases:   []string{"mv"},
		Usage:     "Move a task to another column",
		UsageText: "taskboard move <id> <todo|inprogress|done>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("%w: taskboard move <id> <status>", errMissingArgs)
			}
			status, err := models.ParseTaskStatus(c.Args().Get(1))
			if err != nil {
				return err
			}

			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			t, err := svc.UpdateTaskStatus(ctx, c.Args().First(), status)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "Moved %q to %s\n", t.Title, t.Status.Label())
			return nil
		},
	}
}

func (a *App) rmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a task",
		UsageText: "taskboard rm <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("%w: taskboard rm <id>", errMissingArgs)
			}

			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			if err := svc.DeleteTask(ctx, c.Args().First()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "Deleted %s\n", c.Args().First())
			return nil
		},
	}
}

func (a *App) generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Break a goal into tasks with Gemini",
		UsageText: "taskboard generate <goal>",
		Description: `Asks the model for a list of tasks and adds them to To Do.

Requires GEMINI_API_KEY (or gemini.api_key in the config file).`,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return fmt.Errorf("%w: taskboard generate <goal>", errMissingArgs)
			}

			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			res, err := svc.GenerateTasks(ctx, strings.Join(c.Args().Slice(), " "))
			if err != nil {
				return err
			}

			for _, t := range res.Created {
				_, _ = fmt.Fprintf(a.out, "+ %s\n", t.Title)
			}
			_, _ = fmt.Fprintf(a.out, "Created %d task(s)", len(res.Created))
			if res.Skipped > 0 {
				_, _ = fmt.Fprintf(a.out, ", skipped %d item(s) without a title", res.Skipped)
			}
			_, _ = fmt.Fprintln(a.out)
			return nil
		},
	}
}

const statusPreview = 5

func (a *App) statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show column counts and the newest To Do items",
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			cols, err := svc.Board(ctx)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(a.out, "Taskboard Status")
			_, _ = fmt.Fprintln(a.out, "================")
			for _, s := range models.Statuses {
				_, _ = fmt.Fprintf(a.out, "%-12s %d\n", s.Label()+":", len(cols.Column(s)))
			}
			_, _ = fmt.Fprintf(a.out, "%-12s %d\n", "Total:", cols.Len())

			if len(cols.Todo) == 0 {
				return nil
			}
			_, _ = fmt.Fprintln(a.out, "\nUp next:")
			for i, t := range cols.Todo {
				if i == statusPreview {
					_, _ = fmt.Fprintf(a.out, "  ... and %d more\n", len(cols.Todo)-statusPreview)
					break
				}
				_, _ = fmt.Fprintf(a.out, "  • %s\n", t.Title)
			}
			return nil
		},
	}
}
