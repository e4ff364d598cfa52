package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/nick-dorsch/taskboard/internal/export"
	"github.com/nick-dorsch/taskboard/internal/snapshot"
	"github.com/urfave/cli/v3"
)

func (a *App) snapshotCommand() *cli.Command {
	var path string

	pathFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:        "path",
			Aliases:     []string{"p"},
			Usage:       "snapshot file (overrides snapshot.path)",
			Destination: &path,
		}
	}
	resolve := func() string {
		if path != "" {
			return path
		}
		return a.cfg.Snapshot.Path
	}

	return &cli.Command{
		Name:  "snapshot",
		Usage: "Export or import a JSONL snapshot of every task",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Write all tasks to the snapshot file",
				Flags: []cli.Flag{pathFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					st, err := a.Store(ctx)
					if err != nil {
						return err
					}
					p := resolve()
					if err := snapshot.ExportFile(ctx, st, p); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(a.out, "Exported snapshot to %s\n", p)
					return nil
				},
			},
			{
				Name:        "import",
				Usage:       "Load tasks from the snapshot file, overwriting tasks with the same id",
				Description: "--path may be a glob such as 'backups/**/*.jsonl'; matches are imported in order.",
				Flags:       []cli.Flag{pathFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					paths, err := expandSnapshotPaths(resolve())
					if err != nil {
						return err
					}

					st, err := a.Store(ctx)
					if err != nil {
						return err
					}
					for _, p := range paths {
						n, err := snapshot.ImportFile(ctx, st, p)
						if err != nil {
							return err
						}
						_, _ = fmt.Fprintf(a.out, "Imported %d task(s) from %s\n", n, p)
					}
					return nil
				},
			},
		},
	}
}

// expandSnapshotPaths resolves a glob. A pattern with no matches is returned
// as is so the import reports the missing file.
func expandSnapshotPaths(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad snapshot path %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return []string{pattern}, nil
	}
	sort.Strings(matches)
	return matches, nil
}

func (a *App) exportCommand() *cli.Command {
	var (
		format string
		out    string
	)

	return &cli.Command{
		Name:      "export",
		Usage:     "Render the board as JSON, CSV or PDF",
		UsageText: "taskboard export [--format " + strings.Join(export.Formats, "|") + "] [--out file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "report format: " + strings.Join(export.Formats, ", "),
				Value:       "json",
				Destination: &format,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file; stdout when empty",
				Destination: &out,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := export.CheckFormat(format); err != nil {
				return err
			}

			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}
			data, err := export.NewExporter(svc).Export(ctx, format)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err := a.out.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			_, _ = fmt.Fprintf(a.out, "Wrote %s export to %s\n", format, out)
			return nil
		},
	}
}
