package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"headlines/internal/domain"
)

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// Upsert archives article under sourceID, keyed by its derived id.
func (s *ArticleStore) Upsert(ctx context.Context, sourceID string, article *domain.Article) (int64, error) {
	query := `
		INSERT INTO headlines (
			source_id, article_id, source_name, author, title, description,
			url, image_url, published_at, published_raw, content
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		ON CONFLICT (source_id, article_id) DO UPDATE SET
			author = EXCLUDED.author,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			content = EXCLUDED.content
		RETURNING id`

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		sourceID,
		article.ID(),
		article.Source.Name,
		article.Author,
		article.Title,
		article.Description,
		article.URL,
		article.ImageURL,
		article.PublishedInstant(),
		article.PublishedAt,
		article.Content,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetExistingByIDs returns the archive time of every id already stored for sourceID.
func (s *ArticleStore) GetExistingByIDs(ctx context.Context, sourceID string, ids []string) (map[string]time.Time, error) {
	if len(ids) == 0 {
		return make(map[string]time.Time), nil
	}

	query := `SELECT article_id, archived_at FROM headlines WHERE source_id = $1 AND article_id = ANY($2)`

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query, sourceID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]time.Time)
	for rows.Next() {
		var articleID string
		var archivedAt time.Time
		if err := rows.Scan(&articleID, &archivedAt); err != nil {
			return nil, err
		}
		result[articleID] = archivedAt
	}

	return result, rows.Err()
}
