package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/nick-dorsch/taskboard/pkg/models"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func (a *App) showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print one task with its description rendered as markdown",
		UsageText: "taskboard show <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("%w: taskboard show <id>", errMissingArgs)
			}

			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			t, err := svc.GetTask(ctx, c.Args().First())
			if err != nil {
				return err
			}

			body, err := renderTask(t, stdoutIsTerminal())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(a.out, body)
			return err
		},
	}
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func renderTask(t *models.Task, color bool) (string, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", t.Title)
	fmt.Fprintf(&md, "*%s* · created %s\n\n", t.Status.Label(), t.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(&md, "`%s`\n\n", t.ID)
	if t.Description != "" {
		md.WriteString(t.Description)
		md.WriteString("\n")
	}

	style := "notty"
	width := 80
	if color {
		style = "dark"
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			width = w - 4
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md.String())
	if err != nil {
		return "", fmt.Errorf("render task: %w", err)
	}
	return out, nil
}
