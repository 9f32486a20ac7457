// Package search implements full-text post search and title suggestions.
package search

import (
	"context"

	"github.com/inkwell-cms/core/internal/metrics"
	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/modules/content/hydrate"
	"github.com/inkwell-cms/core/internal/pkg/pagination"
	"github.com/inkwell-cms/core/internal/pkg/response"
	"github.com/inkwell-cms/core/internal/repository"
)

const (
	defaultSuggestLimit = 5
	maxSuggestLimit     = 20
)

type Service struct {
	posts    repository.PostRepository
	hydrator *hydrate.Hydrator
}

func NewService(posts repository.PostRepository, hydrator *hydrate.Hydrator) *Service {
	return &Service{posts: posts, hydrator: hydrator}
}

// Suggestion is a lightweight title match for typeahead.
type Suggestion struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Search runs a full-text query over published posts and returns a
// hydrated page. Structured list filters do not apply here; the search
// path always pins published, non-deleted posts.
func (s *Service) Search(ctx context.Context, query string, pq pagination.Query) ([]hydrate.Post, response.Pagination, error) {
	metrics.SearchQueriesTotal.Inc()
	filter := repository.PostFilter{
		Status: models.StatusPublished,
		Query:  query,
	}

	records, meta, err := pagination.Fetch(ctx, pq,
		func(ctx context.Context) (int64, error) {
			return s.posts.Count(ctx, filter)
		},
		func(ctx context.Context, offset, limit int) ([]models.PostModel, error) {
			return s.posts.Find(ctx, filter, offset, limit)
		},
	)
	if err != nil {
		return nil, response.Pagination{}, err
	}

	hydrated, err := s.hydrator.Batch(ctx, records, false)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return hydrated, meta, nil
}

// Suggest returns up to limit title matches for the query prefix UI.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	records, err := s.posts.Suggest(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(records))
	for _, r := range records {
		out = append(out, Suggestion{Title: r.Title, Slug: r.Slug})
	}
	return out, nil
}
