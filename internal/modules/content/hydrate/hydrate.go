// Package hydrate resolves the foreign ids embedded in post records
// (author, category, tags) into display-ready summaries.
package hydrate

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-cms/core/internal/models"
	"golang.org/x/sync/errgroup"
)

// AuthorSource, CategorySource and TagSource are the entity lookups behind
// hydration. The repository layer satisfies them.
type AuthorSource interface {
	GetByID(ctx context.Context, id string) (*models.UserModel, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.UserModel, error)
}

type CategorySource interface {
	GetByID(ctx context.Context, id string) (*models.CategoryModel, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.CategoryModel, error)
}

type TagSource interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.TagModel, error)
}

// Hydrator batch-resolves post relations with at most one lookup per
// entity kind, regardless of batch size.
type Hydrator struct {
	authors    AuthorSource
	categories CategorySource
	tags       TagSource
}

func New(authors AuthorSource, categories CategorySource, tags TagSource) *Hydrator {
	return &Hydrator{authors: authors, categories: categories, tags: tags}
}

// Author is the embedded author summary. A deleted author hydrates to the
// sentinel {id:"", username:"unknown"} instead of failing.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Category is the embedded category summary.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Tag is the embedded tag summary.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Post is the hydrated API representation of a post. Content is only set
// for single-post responses.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Author      Author     `json:"author"`
	Category    *Category  `json:"category"`
	Tags        []Tag      `json:"tags"`
	Status      string     `json:"status"`
	ViewCount   int64      `json:"view_count"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Batch hydrates an ordered batch of posts. The three entity-kind lookups
// are issued concurrently, one per kind with at least one reference.
// Output order matches input order exactly.
func (h *Hydrator) Batch(ctx context.Context, posts []models.PostModel, includeContent bool) ([]Post, error) {
	if len(posts) == 0 {
		return []Post{}, nil
	}

	authorIDs, categoryIDs, tagIDs := collectIDs(posts)

	var (
		authors    []models.UserModel
		categories []models.CategoryModel
		tags       []models.TagModel
	)

	g, gctx := errgroup.WithContext(ctx)
	if len(authorIDs) > 0 {
		g.Go(func() error {
			var err error
			if authors, err = h.authors.GetByIDs(gctx, authorIDs); err != nil {
				return fmt.Errorf("author lookup: %w", err)
			}
			return nil
		})
	}
	if len(categoryIDs) > 0 {
		g.Go(func() error {
			var err error
			if categories, err = h.categories.GetByIDs(gctx, categoryIDs); err != nil {
				return fmt.Errorf("category lookup: %w", err)
			}
			return nil
		})
	}
	if len(tagIDs) > 0 {
		g.Go(func() error {
			var err error
			if tags, err = h.tags.GetByIDs(gctx, tagIDs); err != nil {
				return fmt.Errorf("tag lookup: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	authorMap := make(map[string]models.UserModel, len(authors))
	for _, a := range authors {
		authorMap[a.ID] = a
	}
	categoryMap := make(map[string]models.CategoryModel, len(categories))
	for _, c := range categories {
		categoryMap[c.ID] = c
	}
	tagMap := make(map[string]models.TagModel, len(tags))
	for _, t := range tags {
		tagMap[t.ID] = t
	}

	out := make([]Post, 0, len(posts))
	for i := range posts {
		out = append(out, buildPost(&posts[i], authorMap, categoryMap, tagMap, includeContent))
	}
	return out, nil
}

// One hydrates a single post with direct point lookups, issued concurrently.
func (h *Hydrator) One(ctx context.Context, post *models.PostModel, includeContent bool) (*Post, error) {
	var (
		author *models.UserModel
		cat    *models.CategoryModel
		tags   []models.TagModel
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if author, err = h.authors.GetByID(gctx, post.AuthorID); err != nil {
			return fmt.Errorf("author lookup: %w", err)
		}
		return nil
	})
	if post.CategoryID != nil {
		g.Go(func() error {
			var err error
			if cat, err = h.categories.GetByID(gctx, *post.CategoryID); err != nil {
				return fmt.Errorf("category lookup: %w", err)
			}
			return nil
		})
	}
	if len(post.TagIDs) > 0 {
		g.Go(func() error {
			var err error
			if tags, err = h.tags.GetByIDs(gctx, post.TagIDs); err != nil {
				return fmt.Errorf("tag lookup: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	authorMap := map[string]models.UserModel{}
	if author != nil {
		authorMap[author.ID] = *author
	}
	categoryMap := map[string]models.CategoryModel{}
	if cat != nil {
		categoryMap[cat.ID] = *cat
	}
	tagMap := make(map[string]models.TagModel, len(tags))
	for _, t := range tags {
		tagMap[t.ID] = t
	}

	hydrated := buildPost(post, authorMap, categoryMap, tagMap, includeContent)
	return &hydrated, nil
}

// collectIDs gathers the distinct author, category and tag id sets across
// the batch.
func collectIDs(posts []models.PostModel) (authorIDs, categoryIDs, tagIDs []string) {
	authorSeen := map[string]struct{}{}
	categorySeen := map[string]struct{}{}
	tagSeen := map[string]struct{}{}

	for i := range posts {
		p := &posts[i]
		if _, ok := authorSeen[p.AuthorID]; !ok {
			authorSeen[p.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, p.AuthorID)
		}
		if p.CategoryID != nil {
			if _, ok := categorySeen[*p.CategoryID]; !ok {
				categorySeen[*p.CategoryID] = struct{}{}
				categoryIDs = append(categoryIDs, *p.CategoryID)
			}
		}
		for _, tid := range p.TagIDs {
			if _, ok := tagSeen[tid]; !ok {
				tagSeen[tid] = struct{}{}
				tagIDs = append(tagIDs, tid)
			}
		}
	}
	return authorIDs, categoryIDs, tagIDs
}

func buildPost(
	p *models.PostModel,
	authors map[string]models.UserModel,
	categories map[string]models.CategoryModel,
	tags map[string]models.TagModel,
	includeContent bool,
) Post {
	author := Author{Username: "unknown"}
	if a, ok := authors[p.AuthorID]; ok {
		author = Author{ID: a.ID, Username: a.Username, Avatar: a.Avatar}
	}

	var category *Category
	if p.CategoryID != nil {
		if c, ok := categories[*p.CategoryID]; ok {
			category = &Category{ID: c.ID, Name: c.Name, Slug: c.Slug}
		}
	}

	// dangling tag ids are dropped, not errors
	tagInfos := make([]Tag, 0, len(p.TagIDs))
	for _, tid := range p.TagIDs {
		if t, ok := tags[tid]; ok {
			tagInfos = append(tagInfos, Tag{ID: t.ID, Name: t.Name, Slug: t.Slug})
		}
	}

	out := Post{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Summary:     p.Summary,
		CoverImage:  p.CoverImage,
		Author:      author,
		Category:    category,
		Tags:        tagInfos,
		Status:      p.Status,
		ViewCount:   p.ViewCount,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if includeContent {
		out.Content = p.Content
	}
	return out
}
