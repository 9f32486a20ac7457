// Package category implements category listing and admin management.
package category

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/pkg/errs"
	"github.com/inkwell-cms/core/internal/pkg/response"
	"github.com/inkwell-cms/core/internal/pkg/slugify"
	"github.com/inkwell-cms/core/internal/repository"
	"golang.org/x/sync/errgroup"
)

type CreateDTO struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

type UpdateDTO struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// Response is a category with its live post count.
type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	PostCount   int64     `json:"post_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Service struct {
	categories repository.CategoryRepository
	posts      repository.PostRepository
}

func NewService(categories repository.CategoryRepository, posts repository.PostRepository) *Service {
	return &Service{categories: categories, posts: posts}
}

// List returns every category with its non-deleted post count. The
// category list and the grouped counts are fetched concurrently.
func (s *Service) List(ctx context.Context) ([]Response, error) {
	var (
		cats   []models.CategoryModel
		counts map[string]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if cats, err = s.categories.List(gctx); err != nil {
			return fmt.Errorf("category list: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if counts, err = s.posts.CountsByCategory(gctx); err != nil {
			return fmt.Errorf("post counts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Response, 0, len(cats))
	for _, c := range cats {
		out = append(out, toResponse(&c, counts[c.ID]))
	}
	return out, nil
}

// GetBySlug returns one category with its post count.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Response, error) {
	cat, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, errs.ErrNotFound
	}

	count, err := s.posts.CountByCategory(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	r := toResponse(cat, count)
	return &r, nil
}

// Create adds a category. Names are unique.
func (s *Service) Create(ctx context.Context, dto CreateDTO) (*Response, error) {
	exists, err := s.categories.ExistsName(ctx, dto.Name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.ErrConflict
	}

	cat := &models.CategoryModel{
		Name:        dto.Name,
		Slug:        slugify.Make(dto.Name),
		Description: dto.Description,
	}
	if err := s.categories.Insert(ctx, cat); err != nil {
		return nil, err
	}
	r := toResponse(cat, 0)
	return &r, nil
}

// Update patches the category with the given slug. Renaming
// regenerates the slug.
func (s *Service) Update(ctx context.Context, slug string, dto UpdateDTO) (*Response, error) {
	cat, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, errs.ErrNotFound
	}

	updates := map[string]interface{}{}
	if dto.Name != nil && *dto.Name != cat.Name {
		exists, err := s.categories.ExistsName(ctx, *dto.Name, cat.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errs.ErrConflict
		}
		cat.Name = *dto.Name
		cat.Slug = slugify.Make(*dto.Name)
		updates["name"] = cat.Name
		updates["slug"] = cat.Slug
	}
	if dto.Description != nil {
		cat.Description = *dto.Description
		updates["description"] = cat.Description
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.categories.Update(ctx, cat.ID, updates); err != nil {
			return nil, err
		}
	}

	count, err := s.posts.CountByCategory(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	r := toResponse(cat, count)
	return &r, nil
}

// Delete removes the category with the given slug. A category still
// referenced by any non-deleted post cannot be removed.
func (s *Service) Delete(ctx context.Context, slug string) error {
	cat, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if cat == nil {
		return errs.ErrNotFound
	}

	count, err := s.posts.CountByCategory(ctx, cat.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return errs.ErrConflict
	}

	return s.categories.Delete(ctx, cat.ID)
}

func toResponse(c *models.CategoryModel, count int64) Response {
	return Response{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		PostCount:   count,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/categories")

	g.GET("", h.list)
	g.GET("/:slug", h.getBySlug)

	a := g.Group("", authMW, adminMW)
	a.POST("", h.create)
	a.PUT("/:slug", h.update)
	a.DELETE("/:slug", h.delete)
}

// GET /categories
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}

// GET /categories/:slug
func (h *Handler) getBySlug(c *gin.Context) {
	item, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.NotFound(c, "category not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, item)
}

// POST /categories
func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			response.Conflict(c, "category name already exists")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, item)
}

// PUT /categories/:slug
func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), c.Param("slug"), dto)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			response.NotFound(c, "category not found")
		case errors.Is(err, errs.ErrConflict):
			response.Conflict(c, "category name already exists")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, item)
}

// DELETE /categories/:slug
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			response.NotFound(c, "category not found")
		case errors.Is(err, errs.ErrConflict):
			response.Conflict(c, "category still has posts")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Message(c, "category deleted")
}
