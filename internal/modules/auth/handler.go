package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/modules/user"
	"github.com/inkwell-cms/core/internal/pkg/errs"
	"github.com/inkwell-cms/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)
}

// POST /auth/register
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.svc.Register(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			response.Conflict(c, "email or username already registered")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, user.ToProfile(u))
}

// POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, u, err := h.svc.Login(c.Request.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(c, "invalid email or password")
		case errors.Is(err, ErrAccountDisabled):
			response.Forbidden(c, "account disabled")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, gin.H{
		"tokens": pair,
		"user":   user.ToProfile(u),
	})
}

// POST /auth/refresh
func (h *Handler) refresh(c *gin.Context) {
	var dto RefreshDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), dto.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefresh) {
			response.Unauthorized(c, "invalid refresh token")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, pair)
}

// POST /auth/logout
func (h *Handler) logout(c *gin.Context) {
	var dto RefreshDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.svc.Logout(c.Request.Context(), dto.RefreshToken); err != nil {
		if errors.Is(err, ErrInvalidRefresh) {
			response.Unauthorized(c, "invalid refresh token")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "logged out")
}
