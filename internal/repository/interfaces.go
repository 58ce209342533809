package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"headlines/internal/source/newsapi"
)

type Fetcher interface {
	FetchHeadlines(ctx context.Context, sourceID, apiKey string, pageSize int) (*newsapi.APIResponse, error)
}
