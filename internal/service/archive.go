package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"headlines/internal/domain"
	"headlines/internal/metrics"
)

// Archive reloads the current source through the headline store and copies
// every article it has not seen before into the archive. Nothing is ever read
// back from the archive into the store.
//
// The article and state stores are optional: without them a run only
// refreshes. The publisher is optional as well.
type Archive struct {
	loader    HeadlineLoader
	articles  ArticleStore
	state     ArchiveStateStore
	txManager TransactionManager
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewArchive(
	loader HeadlineLoader,
	articles ArticleStore,
	state ArchiveStateStore,
	txManager TransactionManager,
	publisher Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Archive {
	return &Archive{
		loader:    loader,
		articles:  articles,
		state:     state,
		txManager: txManager,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With("component", "archive"),
	}
}

func (a *Archive) Sync(ctx context.Context) (*domain.LoadStats, error) {
	startTime := time.Now()
	sourceID := a.loader.Source()
	logger := a.logger.With("source_id", sourceID)

	logger.Info("starting load")

	snapshot := a.loader.LoadHeadlines(ctx, sourceID)
	if snapshot.Error != nil {
		return nil, fmt.Errorf("load headlines: %s", *snapshot.Error)
	}

	stats := &domain.LoadStats{
		SourceID: sourceID,
		Fetched:  len(snapshot.Articles),
	}

	if a.articles == nil {
		stats.Duration = time.Since(startTime)
		logger.Info("load completed", "fetched", stats.Fetched, "duration", stats.Duration)
		return stats, nil
	}

	unseen, err := a.filterUnseen(ctx, sourceID, snapshot.Articles)
	if err != nil {
		return nil, fmt.Errorf("filter unseen: %w", err)
	}

	stats.New = len(unseen)
	stats.Seen = stats.Fetched - stats.New
	logger.Debug("articles to archive", "count", stats.New)

	for i := range unseen {
		article := &unseen[i]
		if err := a.save(ctx, sourceID, article); err != nil {
			stats.Errors++
			logger.Warn("archive article failed", "article_id", article.ID(), "error", err)
			continue
		}
		stats.Archived++

		if a.publisher != nil {
			if err := a.publisher.Publish(ctx, sourceID, article); err != nil {
				stats.Errors++
				logger.Warn("publish article failed", "article_id", article.ID(), "error", err)
			} else {
				stats.Published++
			}
		}
	}

	a.metrics.RecordArchived(sourceID, stats.Archived)

	if err := a.updateState(ctx, sourceID, snapshot.Articles, stats); err != nil {
		return stats, fmt.Errorf("update archive state: %w", err)
	}

	stats.Duration = time.Since(startTime)

	logger.Info("load completed",
		"fetched", stats.Fetched,
		"new", stats.New,
		"seen", stats.Seen,
		"archived", stats.Archived,
		"published", stats.Published,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

// filterUnseen returns the articles whose id is not archived yet, first
// occurrence only.
func (a *Archive) filterUnseen(ctx context.Context, sourceID string, articles []domain.Article) ([]domain.Article, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	ids := make([]string, len(articles))
	for i, article := range articles {
		ids[i] = article.ID()
	}

	existing, err := a.articles.GetExistingByIDs(ctx, sourceID, ids)
	if err != nil {
		return nil, err
	}

	var unseen []domain.Article
	picked := make(map[string]struct{}, len(articles))
	for i, article := range articles {
		if _, ok := existing[ids[i]]; ok {
			continue
		}
		if _, ok := picked[ids[i]]; ok {
			continue
		}
		picked[ids[i]] = struct{}{}
		unseen = append(unseen, article)
	}

	return unseen, nil
}

func (a *Archive) save(ctx context.Context, sourceID string, article *domain.Article) error {
	return a.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := a.articles.Upsert(txCtx, sourceID, article); err != nil {
			return fmt.Errorf("upsert article: %w", err)
		}
		return nil
	})
}

func (a *Archive) updateState(ctx context.Context, sourceID string, articles []domain.Article, stats *domain.LoadStats) error {
	state, err := a.state.Get(ctx, sourceID)
	if err != nil {
		return err
	}

	state.SourceID = sourceID
	state.LastLoadedAt = time.Now()
	if len(articles) > 0 {
		state.LastArticleID = articles[0].ID()
	}
	state.TotalArchived += int64(stats.Archived)

	return a.state.Update(ctx, state)
}
