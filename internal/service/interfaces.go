package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"headlines/internal/domain"
)

// HeadlineLoader is the part of the headline store the archive drives.
type HeadlineLoader interface {
	Source() string
	LoadHeadlines(ctx context.Context, sourceID string) domain.NewsUIState
}

type ArticleStore interface {
	Upsert(ctx context.Context, sourceID string, article *domain.Article) (int64, error)
	GetExistingByIDs(ctx context.Context, sourceID string, ids []string) (map[string]time.Time, error)
}

type ArchiveStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.ArchiveState, error)
	Update(ctx context.Context, state *domain.ArchiveState) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, sourceID string, article *domain.Article) error
	Close() error
}
