package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/inmemory"
	"github.com/letmevibethatforyou/globalsearch/internal/httpapi"
	"github.com/letmevibethatforyou/globalsearch/internal/sourceflags"
	"github.com/letmevibethatforyou/globalsearch/session"
	"github.com/urfave/cli/v2"
)

const defaultTimeout = 10 * time.Second

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Query string to search for; positional arg is a fallback",
		},
		&cli.IntFlag{
			Name:  "select",
			Usage: "1-based result to open after searching; 0 opens nothing",
		},
		&cli.StringSliceFlag{
			Name:  "category",
			Usage: "Restrict results to catalog_item, order or account; repeatable",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for loading records and searching",
			Value: defaultTimeout,
		},
	}
	flags = append(flags, sourceflags.Flags()...)
	flags = append(flags, sourceflags.SearchFlags()...)

	app := &cli.App{
		Name:   "query",
		Usage:  "Search catalog items, orders and accounts from the command line",
		Flags:  flags,
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(c.Args().First())
	}

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.WarnContext(c.Context, "timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}

	opts, err := sourceflags.SearchOptions(c)
	if err != nil {
		return err
	}
	categoryOpts, err := buildCategoryOptions(c.StringSlice("category"))
	if err != nil {
		return err
	}
	opts = append(opts, categoryOpts...)

	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()

	src, cleanup, err := sourceflags.FromContext(c).Build(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to build source")
	}
	defer cleanup()

	idx := inmemory.New()
	if err := session.NewLoader(src, idx).Load(ctx); err != nil {
		// Collections that loaded are still searched.
		slog.WarnContext(ctx, "some collections failed to load", "error", err)
	}

	navigator := globalsearch.NavigatorFunc(func(ctx context.Context, path string) error {
		fmt.Printf("navigate: %s\n", path)
		return nil
	})
	s := session.New(idx, navigator, session.WithSearchOptions(opts...))

	slog.InfoContext(ctx, "executing query", "query", query, "records", idx.Size(), "timeout", timeout)

	if err := s.SetQuery(ctx, query); err != nil {
		return errors.Wrap(err, "search failed")
	}
	state := s.State()
	if err := printState(state); err != nil {
		return err
	}

	n := c.Int("select")
	if n == 0 {
		return nil
	}
	if n < 0 || n > len(state.Results) {
		return errors.Newf("--select %d is out of range; %d results shown", n, len(state.Results))
	}
	if _, err := s.Select(ctx, state.Results[n-1].Entry); err != nil {
		return errors.Wrap(err, "failed to open result")
	}
	return printState(s.State())
}

func buildCategoryOptions(raw []string) ([]globalsearch.SearchOption, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	categories := make([]globalsearch.Category, 0, len(raw))
	for _, item := range raw {
		c, err := globalsearch.ParseCategory(strings.TrimSpace(item))
		if err != nil {
			return nil, errors.Wrap(err, "invalid --category")
		}
		categories = append(categories, c)
	}
	return []globalsearch.SearchOption{globalsearch.WithCategories(categories...)}, nil
}

func printState(state session.State) error {
	results := &globalsearch.Results{Items: state.Results, Query: state.Query}
	routed, err := httpapi.NewSearchResponse(results)
	if err != nil {
		return err
	}

	payload := struct {
		Query   string                 `json:"query"`
		Open    bool                   `json:"open"`
		Results []httpapi.SearchResult `json:"results"`
	}{
		Query:   state.Query,
		Open:    state.Open,
		Results: routed.Results,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}

	fmt.Println(string(data))
	return nil
}
