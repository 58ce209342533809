package domain

import "time"

// NewsUIState is the snapshot presented to UI consumers. A new value is
// produced for every transition; existing snapshots are never modified.
type NewsUIState struct {
	Articles  []Article `json:"articles"`
	IsLoading bool      `json:"isLoading"`
	Error     *string   `json:"error"`
}

// LoadStats holds statistics about one archive run.
type LoadStats struct {
	SourceID  string
	Fetched   int
	New       int
	Seen      int
	Archived  int
	Published int
	Errors    int
	Duration  time.Duration
}

type ArchiveState struct {
	ID            int64     `db:"id"`
	SourceID      string    `db:"source_id"`
	LastLoadedAt  time.Time `db:"last_loaded_at"`
	LastArticleID string    `db:"last_article_id"`
	TotalArchived int64     `db:"total_archived"`
}
