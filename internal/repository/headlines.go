package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"headlines/internal/domain"
	"headlines/internal/source/newsapi"
)

const defaultErrorMessage = "Failed to load news"

// RepositoryError carries a user-displayable message for a failed load.
type RepositoryError struct {
	SourceID string
	Message  string
	Err      error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("get headlines %s: %s", e.SourceID, e.Message)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Repository turns raw top-headlines responses into ordered articles.
// It keeps no state between calls.
type Repository struct {
	fetcher  Fetcher
	pageSize int
}

func New(fetcher Fetcher, pageSize int) *Repository {
	if pageSize <= 0 {
		pageSize = newsapi.DefaultPageSize
	}
	return &Repository{fetcher: fetcher, pageSize: pageSize}
}

// GetHeadlines fetches the source's headlines, newest first. Articles with
// the same publish instant keep the order the API returned them in.
func (r *Repository) GetHeadlines(ctx context.Context, sourceID, apiKey string) ([]domain.Article, error) {
	resp, err := r.fetcher.FetchHeadlines(ctx, sourceID, apiKey, r.pageSize)
	if err != nil {
		return nil, &RepositoryError{
			SourceID: sourceID,
			Message:  message(err),
			Err:      err,
		}
	}

	articles := make([]domain.Article, 0, len(resp.Articles))
	for _, raw := range resp.Articles {
		articles = append(articles, toArticle(raw))
	}

	slices.SortStableFunc(articles, func(a, b domain.Article) int {
		return b.PublishedInstant().Compare(a.PublishedInstant())
	})

	return articles, nil
}

func toArticle(raw newsapi.RawArticle) domain.Article {
	return domain.Article{
		Source: domain.Source{
			ID:   raw.Source.ID,
			Name: raw.Source.Name,
		},
		Author:      raw.Author,
		Title:       raw.Title,
		Description: raw.Description,
		URL:         raw.URL,
		ImageURL:    raw.URLToImage,
		PublishedAt: raw.PublishedAt,
		Content:     raw.Content,
	}
}

func message(err error) string {
	var te *newsapi.TransportError
	if errors.As(err, &te) {
		if d := te.Detail(); d != "" {
			return d
		}
		return defaultErrorMessage
	}
	if err.Error() != "" {
		return err.Error()
	}
	return defaultErrorMessage
}
