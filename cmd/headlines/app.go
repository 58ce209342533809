package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"headlines/internal/config"
	"headlines/internal/metrics"
	"headlines/internal/publisher"
	"headlines/internal/repository"
	"headlines/internal/service"
	"headlines/internal/source/newsapi"
	"headlines/internal/storage/postgres"
	"headlines/internal/store"
)

// app is the wired object graph shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *store.Store
}

func newApp(opts *options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.source != "" {
		cfg.Source = opts.source
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := setupLogger(os.Stderr, cfg.LogLevel)
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	client := newsapi.New(newsapi.Config{
		BaseURL:   cfg.NewsAPI.BaseURL,
		Timeout:   cfg.NewsAPI.Timeout,
		RateLimit: cfg.NewsAPI.RateLimit,
		Burst:     cfg.NewsAPI.Burst,
	}, m, logger)

	repo := repository.New(client, cfg.NewsAPI.PageSize)

	st := store.New(repo, store.Config{
		APIKey:        cfg.NewsAPI.APIKey,
		DefaultSource: cfg.Source,
	}, m, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
		store:    st,
	}, nil
}

// newArchive wires the archive behind the store. Postgres and RabbitMQ are
// only dialed when enabled; the returned close func releases whatever was
// opened.
func (a *app) newArchive(ctx context.Context) (*service.Archive, func(), error) {
	var (
		articles  service.ArticleStore
		state     service.ArchiveStateStore
		txManager service.TransactionManager
		pub       service.Publisher
		closers   []func()
	)

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if a.cfg.Database.Enabled {
		db, err := sqlx.ConnectContext(ctx, "postgres", a.cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		closers = append(closers, func() { db.Close() })
		a.logger.Info("connected to database", "host", a.cfg.Database.Host, "dbname", a.cfg.Database.DBName)

		articles = postgres.NewArticleStore(db)
		state = postgres.NewArchiveStateStore(db)
		txManager = postgres.NewTransactionManager(db)
	}

	switch {
	case a.cfg.RabbitMQ.Enabled && articles == nil:
		a.logger.Warn("rabbitmq enabled without database, nothing will be published")
	case a.cfg.RabbitMQ.Enabled:
		rabbit, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        a.cfg.RabbitMQ.URL,
			Exchange:   a.cfg.RabbitMQ.Exchange,
			RoutingKey: a.cfg.RabbitMQ.RoutingKey,
			QueueName:  a.cfg.RabbitMQ.QueueName,
		}, a.logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { rabbit.Close() })
		pub = rabbit
	}

	archive := service.NewArchive(a.store, articles, state, txManager, pub, a.metrics, a.logger)
	return archive, closeAll, nil
}

// sourceIDs lists the configured sources plus the current one.
func (a *app) sourceIDs() []string {
	ids := slices.Sorted(maps.Keys(a.cfg.Sources))
	if !slices.Contains(ids, a.cfg.Source) {
		ids = append(ids, a.cfg.Source)
	}
	return ids
}

func setupLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}
