package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/mooc-renderer/internal/db"
	"github.com/dtnitsch/mooc-renderer/internal/pages"
	"github.com/dtnitsch/mooc-renderer/internal/render"
	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/dtnitsch/mooc-renderer/pkg/help"
	"github.com/urfave/cli/v2"
)

// storeFlags override the store section of the config file.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "store",
			Usage: "Content store driver: sqlite, dir or http",
		},
		&cli.StringFlag{
			Name:  "store-path",
			Usage: "Database file (sqlite) or page directory (dir)",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "Wiki base URL for the http store",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of concurrent page loads and renders",
		},
		&cli.StringFlag{
			Name:  "language",
			Usage: "Output language (de, en) or auto",
		},
	}
}

func main() {
	app := &cli.App{
		Name:  "mooc-renderer",
		Usage: "Render MOOC course pages from structured page text to HTML",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: models.DefaultConfigFile,
				Usage: "Path to the YAML config file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Render a single course item",
				ArgsUsage: "[identifier]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "item",
						Aliases: []string{"i"},
						Usage:   "Identifier of the item, e.g. \"MOOC:Kurs/Woche 1\"",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: render.FormatHTML,
						Usage: "Output format: html or json",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
				}, storeFlags()...),
				Action: render.RenderAction,
			},
			{
				Name:      "render-all",
				Usage:     "Render every page of a course and write a manifest",
				ArgsUsage: "[root identifier]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "root",
						Usage: "Identifier of the course root",
					},
					&cli.StringFlag{
						Name:     "output-dir",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "Directory for rendered pages and manifest.json",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: render.FormatHTML,
						Usage: "Page format: html or json",
					},
				}, storeFlags()...),
				Action: render.RenderAllAction,
			},
			{
				Name:      "structure",
				Usage:     "Print the resolved course tree",
				ArgsUsage: "[identifier]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "item",
						Aliases: []string{"i"},
						Usage:   "Any identifier inside the course",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: render.FormatYAML,
						Usage: "Output format: yaml or json",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
				}, storeFlags()...),
				Action: render.StructureAction,
			},
			{
				Name:  "pages",
				Usage: "Manage pages in the sqlite store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "store-path",
						Usage: "Database file",
					},
				},
				Subcommands: []*cli.Command{
					{
						Name:  "import",
						Usage: "Import every page below a directory",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "dir",
								Required: true,
								Usage:    "Page directory (<dir>/<Namespace>/<Title>.yaml)",
							},
						},
						Action: pages.ImportAction,
					},
					{
						Name:  "list",
						Usage: "List stored pages",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "prefix",
								Usage: "Only titles starting with this prefix",
							},
						},
						Action: pages.ListAction,
					},
					{
						Name:      "get",
						Usage:     "Print the text of a page",
						ArgsUsage: "[identifier]",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "item",
								Aliases: []string{"i"},
								Usage:   "Page identifier",
							},
							&cli.Int64Flag{
								Name:  "rev",
								Usage: "Revision ID (default latest)",
							},
						},
						Action: pages.GetAction,
					},
					{
						Name:      "put",
						Usage:     "Store a file (or - for stdin) as a page",
						ArgsUsage: "<identifier> <file|->",
						Action:    pages.PutAction,
					},
				},
			},
			{
				Name:  "db",
				Usage: "Inspect recorded render runs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "store-path",
						Usage: "Database file",
					},
				},
				Subcommands: []*cli.Command{
					{
						Name:  "runs",
						Usage: "List recent render-all runs",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Value: 20,
								Usage: "Number of runs to show",
							},
						},
						Action: db.RunsAction,
					},
					{
						Name:      "run",
						Usage:     "Show the page results of a run (default latest)",
						ArgsUsage: "[run id]",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "failed",
								Usage: "Only show failed pages",
							},
						},
						Action: db.RunAction,
					},
					{
						Name:   "init",
						Usage:  "Create the database schema",
						Action: db.InitAction,
					},
				},
			},
			{
				Name:  "quickstart",
				Usage: "Print a quick start guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
