package repository

import (
	"context"
	"errors"

	"github.com/inkwell-cms/core/internal/models"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns a MySQL-backed CategoryRepository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	return cats, r.db.WithContext(ctx).Order("created_at ASC").Find(&cats).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := r.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *categoryRepository) GetByIDs(ctx context.Context, ids []string) ([]models.CategoryModel, error) {
	if len(ids) == 0 {
		return []models.CategoryModel{}, nil
	}
	var cats []models.CategoryModel
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cats).Error
	return cats, err
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := r.db.WithContext(ctx).First(&cat, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *categoryRepository) ExistsName(ctx context.Context, name, excludeID string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("name = ?", name)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	err := tx.Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) Insert(ctx context.Context, cat *models.CategoryModel) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *categoryRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.CategoryModel{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.CategoryModel{}, "id = ?", id).Error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a MySQL-backed TagRepository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.TagModel, error) {
	var tags []models.TagModel
	return tags, r.db.WithContext(ctx).Order("created_at ASC").Find(&tags).Error
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []string) ([]models.TagModel, error) {
	if len(ids) == 0 {
		return []models.TagModel{}, nil
	}
	var tags []models.TagModel
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) GetBySlug(ctx context.Context, slug string) (*models.TagModel, error) {
	var tag models.TagModel
	if err := r.db.WithContext(ctx).First(&tag, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) ExistsName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TagModel{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *tagRepository) Insert(ctx context.Context, tag *models.TagModel) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.TagModel{}, "id = ?", id).Error
}
