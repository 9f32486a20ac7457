// Package repository is the data-access layer. Interfaces mirror the
// operations the services depend on: point lookup, id-set lookup,
// predicate count, predicate find with sort/skip/limit, atomic field
// increment, full-text predicate, substring predicate.
package repository

import (
	"context"

	"github.com/inkwell-cms/core/internal/models"
)

// PostFilter is a compiled store-level predicate for post queries.
// Zero values mean "no constraint"; soft-deleted posts are always excluded.
type PostFilter struct {
	Status     string
	AuthorID   string
	CategoryID string
	TagID      string
	Query      string // full-text match over title+content
}

// PostRepository provides access to stored posts.
type PostRepository interface {
	// Count returns the number of non-deleted posts matching the filter.
	Count(ctx context.Context, f PostFilter) (int64, error)
	// Find returns a window of non-deleted posts matching the filter,
	// newest first (created_at DESC, id DESC tiebreak).
	Find(ctx context.Context, f PostFilter, offset, limit int) ([]models.PostModel, error)
	// FindBySlug returns the non-deleted post with the given slug, or nil.
	// Reads and writes are both addressed by slug; ids stay internal.
	FindBySlug(ctx context.Context, slug string) (*models.PostModel, error)
	// Insert persists a new post.
	Insert(ctx context.Context, post *models.PostModel) error
	// Update applies a partial field patch to a post by id.
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	// IncrementViewCount adds exactly 1 to the stored view count as a
	// single store-level operation; concurrent increments are never lost.
	IncrementViewCount(ctx context.Context, id string) error
	// CountByCategory returns the number of non-deleted posts in a category.
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	// CountsByCategory returns non-deleted post counts grouped by category id.
	CountsByCategory(ctx context.Context) (map[string]int64, error)
	// Suggest returns published, non-deleted posts whose title contains the
	// query (case-insensitive), capped at limit. Only title and slug are
	// populated.
	Suggest(ctx context.Context, query string, limit int) ([]models.PostModel, error)
}

// UserRepository provides access to stored users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.UserModel, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.UserModel, error)
	GetByEmail(ctx context.Context, email string) (*models.UserModel, error)
	// ExistsUsername reports whether another user (excluding excludeID)
	// already owns the username.
	ExistsUsername(ctx context.Context, username, excludeID string) (bool, error)
	// ExistsEmailOrUsername reports whether any user owns the email or username.
	ExistsEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Insert(ctx context.Context, user *models.UserModel) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

// CategoryRepository provides access to stored categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.CategoryModel, error)
	GetByID(ctx context.Context, id string) (*models.CategoryModel, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.CategoryModel, error)
	GetBySlug(ctx context.Context, slug string) (*models.CategoryModel, error)
	ExistsName(ctx context.Context, name, excludeID string) (bool, error)
	Insert(ctx context.Context, cat *models.CategoryModel) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// TagRepository provides access to stored tags.
type TagRepository interface {
	List(ctx context.Context) ([]models.TagModel, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.TagModel, error)
	GetBySlug(ctx context.Context, slug string) (*models.TagModel, error)
	ExistsName(ctx context.Context, name string) (bool, error)
	Insert(ctx context.Context, tag *models.TagModel) error
	Delete(ctx context.Context, id string) error
}
