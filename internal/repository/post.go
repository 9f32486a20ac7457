package repository

import (
	"errors"
	"fmt"

	"context"

	"github.com/inkwell-cms/core/internal/models"
	"gorm.io/gorm"
)

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a MySQL-backed PostRepository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// scope builds the WHERE clause for a filter. Soft-deleted rows never match.
func (r *postRepository) scope(ctx context.Context, f PostFilter) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.PostModel{}).Where("is_deleted = ?", false)
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.AuthorID != "" {
		tx = tx.Where("author_id = ?", f.AuthorID)
	}
	if f.CategoryID != "" {
		tx = tx.Where("category_id = ?", f.CategoryID)
	}
	if f.TagID != "" {
		tx = tx.Where("JSON_CONTAINS(tag_ids, ?)", fmt.Sprintf("%q", f.TagID))
	}
	if f.Query != "" {
		tx = tx.Where("MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE)", f.Query)
	}
	return tx
}

func (r *postRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var total int64
	err := r.scope(ctx, f).Count(&total).Error
	return total, err
}

func (r *postRepository) Find(ctx context.Context, f PostFilter, offset, limit int) ([]models.PostModel, error) {
	var posts []models.PostModel
	err := r.scope(ctx, f).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) FindBySlug(ctx context.Context, slug string) (*models.PostModel, error) {
	var post models.PostModel
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_deleted = ?", slug, false).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Insert(ctx context.Context, post *models.PostModel) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.PostModel{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *postRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.PostModel{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *postRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.PostModel{}).
		Where("category_id = ? AND is_deleted = ?", categoryID, false).
		Count(&total).Error
	return total, err
}

func (r *postRepository) CountsByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		CategoryID string
		N          int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.PostModel{}).
		Select("category_id, COUNT(*) AS n").
		Where("is_deleted = ? AND category_id IS NOT NULL", false).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.N
	}
	return counts, nil
}

func (r *postRepository) Suggest(ctx context.Context, query string, limit int) ([]models.PostModel, error) {
	var posts []models.PostModel
	err := r.db.WithContext(ctx).
		Model(&models.PostModel{}).
		Select("title, slug").
		Where("is_deleted = ? AND status = ?", false, models.StatusPublished).
		Where("LOWER(title) LIKE LOWER(?)", "%"+query+"%").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
