package search

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/pkg/pagination"
	"github.com/inkwell-cms/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/posts/search")
	g.GET("", h.search)
	g.GET("/suggest", h.suggest)
}

// GET /posts/search?q=...
func (h *Handler) search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "q is required")
		return
	}

	items, pag, err := h.svc.Search(c.Request.Context(), query, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /posts/search/suggest?q=...&limit=5
func (h *Handler) suggest(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "q is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSuggestLimit)))

	items, err := h.svc.Suggest(c.Request.Context(), query, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}
