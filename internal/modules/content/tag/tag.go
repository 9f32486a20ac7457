// Package tag implements tag listing and management. Authors may add
// tags; only admins may remove them.
package tag

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/pkg/errs"
	"github.com/inkwell-cms/core/internal/pkg/response"
	"github.com/inkwell-cms/core/internal/pkg/slugify"
	"github.com/inkwell-cms/core/internal/repository"
)

type CreateDTO struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	tags repository.TagRepository
}

func NewService(tags repository.TagRepository) *Service {
	return &Service{tags: tags}
}

func (s *Service) List(ctx context.Context) ([]Response, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Response, 0, len(tags))
	for _, t := range tags {
		out = append(out, toResponse(&t))
	}
	return out, nil
}

// Create adds a tag. Names are unique.
func (s *Service) Create(ctx context.Context, dto CreateDTO) (*Response, error) {
	exists, err := s.tags.ExistsName(ctx, dto.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.ErrConflict
	}

	t := &models.TagModel{
		Name: dto.Name,
		Slug: slugify.Make(dto.Name),
	}
	if err := s.tags.Insert(ctx, t); err != nil {
		return nil, err
	}
	r := toResponse(t)
	return &r, nil
}

// Delete removes a tag by slug. Posts keep the dangling id; hydration drops it.
func (s *Service) Delete(ctx context.Context, slug string) error {
	t, err := s.tags.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if t == nil {
		return errs.ErrNotFound
	}
	return s.tags.Delete(ctx, t.ID)
}

func toResponse(t *models.TagModel) Response {
	return Response{ID: t.ID, Name: t.Name, Slug: t.Slug, CreatedAt: t.CreatedAt}
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, writerMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/tags")

	g.GET("", h.list)
	g.POST("", authMW, writerMW, h.create)
	g.DELETE("/:slug", authMW, adminMW, h.delete)
}

// GET /tags
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}

// POST /tags
func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			response.Conflict(c, "tag name already exists")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, item)
}

// DELETE /tags/:slug
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.NotFound(c, "tag not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "tag deleted")
}
