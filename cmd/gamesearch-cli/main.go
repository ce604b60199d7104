package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/gamesearch/internal/version"
	gamesearch "github.com/kailas-cloud/gamesearch/pkg/sdk"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "gamesearch",
		Usage:   "Search the game catalog in plain language",
		Version: version.String(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "gamesearch API base URL",
				Value:   "http://localhost:8000",
				EnvVars: []string{"GAMESEARCH_URL"},
			},
			&cli.StringFlag{
				Name:    "origin",
				Usage:   "Origin header sent with each request",
				Value:   "http://localhost:5173",
				EnvVars: []string{"GAMESEARCH_ORIGIN"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-request timeout",
				Value: 30 * time.Second,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a search and print the matching games",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "vector",
						Aliases: []string{"v"},
						Usage:   "Use semantic vector search instead of a compiled query",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page to start from",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Results per page",
						Value: 20,
					},
					&cli.IntFlag{
						Name:  "pages",
						Usage: "Number of pages to fetch, following the cursor (0 = all)",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print raw JSON pages",
					},
				},
			},
			{
				Name:   "health",
				Usage:  "Show server health",
				Action: healthCommand,
			},
		},
	}
}

func newClient(c *cli.Context) (*gamesearch.Client, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client, err := gamesearch.New(c.String("server"),
		gamesearch.WithOrigin(c.String("origin")),
		gamesearch.WithTimeout(c.Duration("timeout")),
		gamesearch.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return cli.Exit("a search query is required", 2)
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}

	pager := client.Pager(gamesearch.SearchRequest{
		Query:           query,
		UseVectorSearch: c.Bool("vector"),
		Page:            c.Int("page"),
		PageSize:        c.Int("page-size"),
	})

	limit := c.Int("pages")
	ctx := context.Background()
	out := c.App.Writer
	for fetched := 0; (limit <= 0 || fetched < limit) && pager.Next(ctx); fetched++ {
		if err := printPage(out, pager.Page(), c.Bool("json")); err != nil {
			return err
		}
	}

	if err := pager.Err(); err != nil {
		if gamesearch.IsRejected(err) {
			return cli.Exit(pager.Page().Error, 3)
		}
		return fmt.Errorf("search: %w", err)
	}
	return nil
}

func printPage(out io.Writer, page *gamesearch.SearchResponse, raw bool) error {
	if raw {
		if err := json.NewEncoder(out).Encode(page); err != nil {
			return fmt.Errorf("encode page: %w", err)
		}
		return nil
	}

	fmt.Fprintf(out, "page %d (%d results)\n", page.Page, len(page.Result))
	for _, g := range page.Result {
		line := "  " + g.Name
		if g.FirstReleaseDate != nil {
			line += fmt.Sprintf(" (%d)", g.FirstReleaseDate.Year())
		}
		if len(g.Genres) > 0 {
			line += " [" + strings.Join(g.Genres, ", ") + "]"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func healthCommand(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	status, err := client.Health(context.Background())
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}

	fmt.Fprintln(c.App.Writer, status.Status)
	for name, result := range status.Checks {
		fmt.Fprintf(c.App.Writer, "  %s: %s\n", name, result)
	}
	if status.Status != "healthy" {
		return cli.Exit("", 1)
	}
	return nil
}
