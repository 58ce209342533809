package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"headlines/internal/bridge"
	"headlines/internal/config"
	"headlines/internal/domain"
	"headlines/internal/handler"
	"headlines/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

var errArticleNotAvailable = errors.New("article not available")

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Fetch and list the top headlines, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			state, err := load(cmd.Context(), a)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d headlines\n\n", a.cfg.SourceName(a.store.Source()), len(state.Articles))
			return printList(cmd.OutOrStdout(), state.Articles)
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Fetch the headlines and print one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			article, err := lookup(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			printArticle(cmd.OutOrStdout(), article)
			return nil
		},
	}
}

func newTokenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "token <id>",
		Short: "Print the navigation token of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			article, err := lookup(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), bridge.Encode(article))
			return nil
		},
	}
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token>",
		Short: "Print the article carried by a navigation token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			article, ok := bridge.Decode(args[0])
			if !ok {
				return errArticleNotAvailable
			}
			printArticle(cmd.OutOrStdout(), article)
			return nil
		},
	}
}

func newSourcesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured news sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			current := cfg.Source
			if opts.source != "" {
				current = opts.source
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, id := range slices.Sorted(maps.Keys(cfg.Sources)) {
				marker := " "
				if id == current {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %s\t%s\n", marker, id, cfg.Sources[id])
			}
			return w.Flush()
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the headlines periodically and archive new articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			archive, closeArchive, err := a.newArchive(ctx)
			if err != nil {
				return err
			}
			defer closeArchive()

			a.logger.Info("starting headline watcher",
				"source", a.store.Source(),
				"interval", a.cfg.Refresh.Interval,
				"database", a.cfg.Database.Enabled,
				"rabbitmq", a.cfg.RabbitMQ.Enabled,
			)

			sched := scheduler.NewScheduler(archive, a.cfg.Refresh.Interval, a.cfg.Refresh.Timeout, a.logger)
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newServeCmd(opts *options) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the headline state over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if a.cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			h := handler.NewHeadlineHandler(a.store, a.sourceIDs(), a.logger)
			srv := &http.Server{
				Addr:    a.cfg.HTTP.Addr,
				Handler: handler.NewRouter(h, a.registry),
			}

			if watch {
				archive, closeArchive, err := a.newArchive(ctx)
				if err != nil {
					return err
				}
				defer closeArchive()

				sched := scheduler.NewScheduler(archive, a.cfg.Refresh.Interval, a.cfg.Refresh.Timeout, a.logger)
				go sched.Start(ctx)
			} else {
				go a.store.LoadHeadlines(ctx, "")
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("http server listening", "addr", srv.Addr, "source", a.store.Source())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("http server: %w", err)
			case <-ctx.Done():
			}

			a.logger.Info("shutting down http server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload periodically and archive new articles while serving")

	return cmd
}

// load runs one load of the current source and turns a failed snapshot into
// an error.
func load(ctx context.Context, a *app) (domain.NewsUIState, error) {
	state := a.store.LoadHeadlines(ctx, "")
	if state.Error != nil {
		return state, fmt.Errorf("load headlines: %s", *state.Error)
	}
	return state, nil
}

func lookup(ctx context.Context, opts *options, id string) (domain.Article, error) {
	a, err := newApp(opts)
	if err != nil {
		return domain.Article{}, err
	}
	if _, err := load(ctx, a); err != nil {
		return domain.Article{}, err
	}

	article, ok := a.store.GetArticleByID(id)
	if !ok {
		return domain.Article{}, fmt.Errorf("article %q not found in %s headlines", id, a.store.Source())
	}
	return article, nil
}

func printList(out io.Writer, articles []domain.Article) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PUBLISHED\tID\tTITLE")
	for _, a := range articles {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.PublishedInstant().Format("2006-01-02 15:04"), a.ID(), a.Title)
	}
	return w.Flush()
}

func printArticle(out io.Writer, a domain.Article) {
	fmt.Fprintf(out, "%s\n\n", a.Title)
	fmt.Fprintf(out, "Source:    %s\n", a.Source.Name)
	if a.Author != nil {
		fmt.Fprintf(out, "Author:    %s\n", *a.Author)
	}
	fmt.Fprintf(out, "Published: %s\n", a.PublishedAt)
	fmt.Fprintf(out, "URL:       %s\n", a.URL)
	if a.ImageURL != nil {
		fmt.Fprintf(out, "Image:     %s\n", *a.ImageURL)
	}
	if a.Description != nil {
		fmt.Fprintf(out, "\n%s\n", *a.Description)
	}
	if content := a.CleanContent(); content != "" {
		fmt.Fprintf(out, "\n%s\n", content)
	}
}
