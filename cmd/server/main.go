package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch/inmemory"
	"github.com/letmevibethatforyou/globalsearch/internal/httpapi"
	"github.com/letmevibethatforyou/globalsearch/internal/sourceflags"
	"github.com/letmevibethatforyou/globalsearch/session"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "Address to listen on",
			EnvVars: []string{"ADDR"},
			Value:   ":8080",
		},
		&cli.DurationFlag{
			Name:    "refresh-interval",
			Usage:   "Reload every collection this often; 0 only loads at startup",
			EnvVars: []string{"REFRESH_INTERVAL"},
		},
	}
	flags = append(flags, sourceflags.Flags()...)
	flags = append(flags, sourceflags.SearchFlags()...)

	app := &cli.App{
		Name:   "server",
		Usage:  "Serve global search over catalog items, orders and accounts",
		Flags:  flags,
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := sourceflags.SearchOptions(c)
	if err != nil {
		return err
	}

	src, cleanup, err := sourceflags.FromContext(c).Build(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to build source")
	}
	defer cleanup()

	logger := slog.Default()
	idx := inmemory.New()
	loader := session.NewLoader(src, idx, session.WithLoaderLogger(logger))

	server := httpapi.NewServer(c.String("addr"), logger)
	httpapi.NewHandler(idx, loader, logger, opts...).Mount(server.Router())

	g, ctx := errgroup.WithContext(ctx)

	// Searches answer from whatever has loaded so far.
	g.Go(func() error {
		if err := loader.Load(ctx); err != nil {
			logger.WarnContext(ctx, "initial load incomplete", "error", err)
		}
		return nil
	})

	if interval := c.Duration("refresh-interval"); interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := loader.Load(ctx); err != nil {
						logger.WarnContext(ctx, "refresh incomplete", "error", err)
					}
				}
			}
		})
	}

	g.Go(server.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
