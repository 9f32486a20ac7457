// Package post implements post listing, retrieval and authoring.
package post

import (
	"context"
	"errors"
	"time"

	"github.com/inkwell-cms/core/internal/metrics"
	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/modules/content/hydrate"
	"github.com/inkwell-cms/core/internal/pkg/errs"
	"github.com/inkwell-cms/core/internal/pkg/pagination"
	"github.com/inkwell-cms/core/internal/pkg/response"
	"github.com/inkwell-cms/core/internal/pkg/slugify"
	"github.com/inkwell-cms/core/internal/repository"
	"go.uber.org/zap"
)

// Actor identifies the user performing a mutation.
type Actor struct {
	ID   string
	Role string
}

// canMutate reports whether the actor may edit or delete the post:
// the post's author, or any admin.
func canMutate(actor Actor, post *models.PostModel) bool {
	return actor.ID == post.AuthorID || actor.Role == models.RoleAdmin
}

type Service struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	hydrator   *hydrate.Hydrator
	logger     *zap.Logger
}

func NewService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	hydrator *hydrate.Hydrator,
	logger *zap.Logger,
) *Service {
	return &Service{
		posts:      posts,
		categories: categories,
		tags:       tags,
		hydrator:   hydrator,
		logger:     logger,
	}
}

// List returns a hydrated page of posts matching the query. Filters that
// name a nonexistent category or tag slug produce an empty page without
// querying the posts table.
func (s *Service) List(ctx context.Context, q ListQuery, pq pagination.Query) ([]hydrate.Post, response.Pagination, error) {
	filter, err := s.compileFilter(ctx, q)
	if err != nil {
		if errors.Is(err, errEmptyResult) {
			return []hydrate.Post{}, pagination.Meta(pq, 0), nil
		}
		return nil, response.Pagination{}, err
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

// GetBySlug returns a single hydrated post with full content and records
// the view. A non-published post is only visible to its author or an
// admin; everyone else gets NotFound, the same as a missing slug.
func (s *Service) GetBySlug(ctx context.Context, slug string, viewer *Actor) (*hydrate.Post, error) {
	record, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errs.ErrNotFound
	}
	if !record.IsPublished() && (viewer == nil || !canMutate(*viewer, record)) {
		return nil, errs.ErrNotFound
	}

	if err := s.posts.IncrementViewCount(ctx, record.ID); err != nil {
		return nil, err
	}
	record.ViewCount++
	metrics.PostViewsTotal.Inc()

	return s.hydrator.One(ctx, record, true)
}

// Create persists a new post authored by the actor. The slug is derived
// from the title with a random suffix.
func (s *Service) Create(ctx context.Context, actor Actor, req CreateRequest) (*hydrate.Post, error) {
	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}

	record := &models.PostModel{
		Title:      req.Title,
		Slug:       slugify.Make(req.Title),
		Content:    req.Content,
		Summary:    req.Summary,
		CoverImage: req.CoverImage,
		AuthorID:   actor.ID,
		CategoryID: req.CategoryID,
		TagIDs:     dedupe(req.TagIDs),
		Status:     status,
	}
	if status == models.StatusPublished {
		now := time.Now()
		record.PublishedAt = &now
	}

	if err := s.posts.Insert(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("post created",
		zap.String("id", record.ID),
		zap.String("slug", record.Slug),
		zap.String("author_id", actor.ID))

	return s.hydrator.One(ctx, record, true)
}

// Update applies a partial patch to the post with the given slug. Only
// the author or an admin may update. Changing the title regenerates the
// slug; the first transition to published stamps published_at, later
// ones do not.
func (s *Service) Update(ctx context.Context, actor Actor, slug string, req UpdateRequest) (*hydrate.Post, error) {
	record, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !canMutate(actor, record) {
		return nil, errs.ErrPermissionDenied
	}

	updates := map[string]interface{}{}
	if req.Title != nil && *req.Title != record.Title {
		record.Title = *req.Title
		record.Slug = slugify.Make(*req.Title)
		updates["title"] = record.Title
		updates["slug"] = record.Slug
	}
	if req.Content != nil {
		record.Content = *req.Content
		updates["content"] = record.Content
	}
	if req.Summary != nil {
		record.Summary = *req.Summary
		updates["summary"] = record.Summary
	}
	if req.CoverImage != nil {
		record.CoverImage = *req.CoverImage
		updates["cover_image"] = record.CoverImage
	}
	if req.CategoryID.Set {
		record.CategoryID = req.CategoryID.Value
		updates["category_id"] = req.CategoryID.Value
	}
	if req.TagIDs != nil {
		record.TagIDs = dedupe(req.TagIDs)
		updates["tag_ids"] = record.TagIDs
	}
	if req.Status != nil && *req.Status != record.Status {
		record.Status = *req.Status
		updates["status"] = record.Status
		if record.Status == models.StatusPublished && record.PublishedAt == nil {
			now := time.Now()
			record.PublishedAt = &now
			updates["published_at"] = record.PublishedAt
		}
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.posts.Update(ctx, record.ID, updates); err != nil {
			return nil, err
		}
	}

	return s.hydrator.One(ctx, record, true)
}

// Delete soft-deletes the post with the given slug. Only the author or
// an admin may delete.
func (s *Service) Delete(ctx context.Context, actor Actor, slug string) error {
	record, err := s.findBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if !canMutate(actor, record) {
		return errs.ErrPermissionDenied
	}

	return s.posts.Update(ctx, record.ID, map[string]interface{}{
		"is_deleted": true,
		"updated_at": time.Now(),
	})
}

func (s *Service) findBySlug(ctx context.Context, slug string) (*models.PostModel, error) {
	record, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errs.ErrNotFound
	}
	return record, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
