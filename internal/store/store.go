package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"

	"headlines/internal/domain"
	"headlines/internal/metrics"
	"headlines/internal/repository"
)

const defaultErrorMessage = "Failed to load news"

// Config holds the values a store needs to issue loads.
type Config struct {
	APIKey        string
	DefaultSource string
}

// snapshot is everything a reader can observe. It is replaced as a whole.
type snapshot struct {
	state  domain.NewsUIState
	byID   map[string]domain.Article
	source string
}

// Store owns the headline state shown to the user and the id lookup cache
// behind article detail views.
//
// Loads are not cancelled or de-duplicated: when two loads overlap, the one
// that completes last wins.
type Store struct {
	repo          Repository
	apiKey        string
	defaultSource string
	listeners     []Listener
	metrics       *metrics.Metrics
	logger        *slog.Logger

	current atomic.Pointer[snapshot]
}

func New(repo Repository, cfg Config, m *metrics.Metrics, logger *slog.Logger, listeners ...Listener) *Store {
	s := &Store{
		repo:          repo,
		apiKey:        cfg.APIKey,
		defaultSource: cfg.DefaultSource,
		listeners:     listeners,
		metrics:       m,
		logger:        logger.With("component", "store"),
	}
	s.current.Store(&snapshot{
		state: domain.NewsUIState{Articles: []domain.Article{}},
		byID:  map[string]domain.Article{},
	})
	return s
}

// State returns the current snapshot.
func (s *Store) State() domain.NewsUIState {
	return cloneState(s.current.Load().state)
}

// Source returns the source of the most recent load, or the default source.
func (s *Store) Source() string {
	if src := s.current.Load().source; src != "" {
		return src
	}
	return s.defaultSource
}

// LoadHeadlines fetches sourceID's headlines and publishes the outcome. On
// failure the previous articles and cache are kept and only the error is set.
// An empty sourceID loads the default source. The final snapshot is returned.
func (s *Store) LoadHeadlines(ctx context.Context, sourceID string) domain.NewsUIState {
	if sourceID == "" {
		sourceID = s.defaultSource
	}

	s.update(func(sn *snapshot) bool {
		sn.state = domain.NewsUIState{
			Articles:  sn.state.Articles,
			IsLoading: true,
		}
		sn.source = sourceID
		return true
	})

	articles, err := s.repo.GetHeadlines(ctx, sourceID, s.apiKey)
	if err != nil {
		msg := errorMessage(err)
		s.metrics.RecordLoad(sourceID, metrics.OutcomeFailure, 0)
		s.logger.Warn("load headlines failed", "source_id", sourceID, "error", err)

		return s.update(func(sn *snapshot) bool {
			sn.state = domain.NewsUIState{
				Articles: sn.state.Articles,
				Error:    &msg,
			}
			return true
		})
	}

	byID := make(map[string]domain.Article, len(articles))
	for _, a := range articles {
		byID[a.ID()] = a
	}

	s.metrics.RecordLoad(sourceID, metrics.OutcomeSuccess, len(articles))
	s.logger.Info("loaded headlines", "source_id", sourceID, "articles", len(articles))

	return s.update(func(sn *snapshot) bool {
		sn.state = domain.NewsUIState{Articles: articles}
		sn.byID = byID
		sn.source = sourceID
		return true
	})
}

// Refresh reloads the most recently used source, or the default source when
// nothing was loaded yet.
func (s *Store) Refresh(ctx context.Context) domain.NewsUIState {
	return s.LoadHeadlines(ctx, s.Source())
}

// GetArticleByID looks id up in the cache of the last successful load. It
// never fetches.
func (s *Store) GetArticleByID(id string) (domain.Article, bool) {
	a, ok := s.current.Load().byID[id]
	return a, ok
}

// ClearError drops the current error. It is a no-op when there is none.
func (s *Store) ClearError() {
	s.update(func(sn *snapshot) bool {
		if sn.state.Error == nil {
			return false
		}
		sn.state.Error = nil
		return true
	})
}

// update applies fn to a copy of the current snapshot and swaps it in. fn may
// run more than once under contention and must only touch the copy.
func (s *Store) update(fn func(sn *snapshot) bool) domain.NewsUIState {
	for {
		old := s.current.Load()
		next := *old
		if !fn(&next) {
			return cloneState(old.state)
		}
		if s.current.CompareAndSwap(old, &next) {
			s.notify(next.state)
			return cloneState(next.state)
		}
	}
}

func (s *Store) notify(state domain.NewsUIState) {
	for _, l := range s.listeners {
		l.StateChanged(cloneState(state))
	}
}

func cloneState(st domain.NewsUIState) domain.NewsUIState {
	st.Articles = slices.Clone(st.Articles)
	if st.Articles == nil {
		st.Articles = []domain.Article{}
	}
	return st
}

func errorMessage(err error) string {
	var re *repository.RepositoryError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultErrorMessage
}
