package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"headlines/internal/domain"
)

type ArchiveStateStore struct {
	db *sqlx.DB
}

func NewArchiveStateStore(db *sqlx.DB) *ArchiveStateStore {
	return &ArchiveStateStore{db: db}
}

func (s *ArchiveStateStore) Get(ctx context.Context, sourceID string) (*domain.ArchiveState, error) {
	var state domain.ArchiveState
	query := `
		SELECT id, source_id, last_loaded_at, last_article_id, total_archived
		FROM archive_state
		WHERE source_id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &state, query, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		// Return empty state for new sources
		return &domain.ArchiveState{SourceID: sourceID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *ArchiveStateStore) Update(ctx context.Context, state *domain.ArchiveState) error {
	query := `
		INSERT INTO archive_state (source_id, last_loaded_at, last_article_id, total_archived)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_id) DO UPDATE SET
			last_loaded_at = EXCLUDED.last_loaded_at,
			last_article_id = EXCLUDED.last_article_id,
			total_archived = EXCLUDED.total_archived`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		state.SourceID,
		state.LastLoadedAt,
		state.LastArticleID,
		state.TotalArchived,
	)
	return err
}
