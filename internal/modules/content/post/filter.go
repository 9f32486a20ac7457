package post

import (
	"context"
	"errors"

	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/repository"
)

// ListQuery carries the user-facing list filters. Category and Tag are
// slugs, Author is a user id, Status is a post status and defaults to
// published; drafts are only listed when asked for explicitly.
type ListQuery struct {
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Author   string `form:"author"`
	Status   string `form:"status"`
}

// errEmptyResult signals that a filter references a slug with no backing
// entity, so the result set is empty without touching the posts table.
var errEmptyResult = errors.New("filter matches nothing")

// compileFilter resolves slug-based filters into a store-level PostFilter.
// An unknown category or tag slug short-circuits with errEmptyResult.
func (s *Service) compileFilter(ctx context.Context, q ListQuery) (repository.PostFilter, error) {
	status := q.Status
	if status == "" {
		status = models.StatusPublished
	}

	f := repository.PostFilter{
		Status:   status,
		AuthorID: q.Author,
	}

	if q.Category != "" {
		cat, err := s.categories.GetBySlug(ctx, q.Category)
		if err != nil {
			return f, err
		}
		if cat == nil {
			return f, errEmptyResult
		}
		f.CategoryID = cat.ID
	}

	if q.Tag != "" {
		tag, err := s.tags.GetBySlug(ctx, q.Tag)
		if err != nil {
			return f, err
		}
		if tag == nil {
			return f, errEmptyResult
		}
		f.TagID = tag.ID
	}

	return f, nil
}
