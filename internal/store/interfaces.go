package store

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"headlines/internal/domain"
)

type Repository interface {
	GetHeadlines(ctx context.Context, sourceID, apiKey string) ([]domain.Article, error)
}

// Listener is notified with every snapshot the store publishes.
type Listener interface {
	StateChanged(state domain.NewsUIState)
}
