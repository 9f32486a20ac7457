package post

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/middleware"
	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/pkg/errs"
	"github.com/inkwell-cms/core/internal/pkg/pagination"
	"github.com/inkwell-cms/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, writerMW, optionalAuthMW gin.HandlerFunc) {
	g := rg.Group("/posts")

	g.GET("", optionalAuthMW, h.list)
	g.GET("/:slug", optionalAuthMW, h.getBySlug)

	a := g.Group("", authMW, writerMW)
	a.POST("", h.create)
	a.PUT("/:slug", h.update)
	a.DELETE("/:slug", h.delete)
}

// GET /posts
func (h *Handler) list(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	// anonymous readers only ever see published posts
	if !middleware.IsAuthenticated(c) {
		q.Status = models.StatusPublished
	}

	items, pag, err := h.svc.List(c.Request.Context(), q, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /posts/:slug
func (h *Handler) getBySlug(c *gin.Context) {
	var viewer *Actor
	if middleware.IsAuthenticated(c) {
		a := actorFromContext(c)
		viewer = &a
	}

	item, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"), viewer)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, item)
}

// POST /posts
func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, item)
}

// PUT /posts/:slug
func (h *Handler) update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), actorFromContext(c), c.Param("slug"), req)
	if err != nil {
		writeMutationError(c, err)
		return
	}
	response.OK(c, item)
}

// DELETE /posts/:slug
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), actorFromContext(c), c.Param("slug")); err != nil {
		writeMutationError(c, err)
		return
	}
	response.Message(c, "post deleted")
}

func actorFromContext(c *gin.Context) Actor {
	return Actor{
		ID:   middleware.CurrentUserID(c),
		Role: middleware.CurrentUserRole(c),
	}
}

func writeMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		response.NotFound(c, "post not found")
	case errors.Is(err, errs.ErrPermissionDenied):
		response.Forbidden(c, "not allowed to modify this post")
	default:
		response.InternalError(c, err)
	}
}
