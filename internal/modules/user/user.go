// Package user implements profile management.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/middleware"
	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/pkg/errs"
	"github.com/inkwell-cms/core/internal/pkg/response"
	"github.com/inkwell-cms/core/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var ErrWrongPassword = errors.New("wrong password")

type UpdateDTO struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=30,alphanum"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// Profile is the public user representation.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToProfile maps a user record to its API shape, email included. Use
// ToPublicProfile for other users' profiles.
func ToProfile(u *models.UserModel) Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// ToPublicProfile is ToProfile without the email.
func ToPublicProfile(u *models.UserModel) Profile {
	p := ToProfile(u)
	p.Email = ""
	return p
}

type Service struct {
	users repository.UserRepository
}

func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

// Me returns the authenticated user's own profile.
func (s *Service) Me(ctx context.Context, userID string) (*models.UserModel, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

// UpdateMe patches the authenticated user's profile. Usernames stay unique.
func (s *Service) UpdateMe(ctx context.Context, userID string, dto UpdateDTO) (*models.UserModel, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Username != nil && *dto.Username != u.Username {
		taken, err := s.users.ExistsUsername(ctx, *dto.Username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errs.ErrConflict
		}
		u.Username = *dto.Username
		updates["username"] = u.Username
	}
	if dto.Avatar != nil {
		u.Avatar = *dto.Avatar
		updates["avatar"] = u.Avatar
	}
	if dto.Bio != nil {
		u.Bio = *dto.Bio
		updates["bio"] = u.Bio
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.users.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, userID string, dto ChangePasswordDTO) error {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, userID, map[string]interface{}{
		"password_hash": string(hash),
		"updated_at":    time.Now(),
	})
}

// GetByID returns another user's public profile. Inactive users are
// indistinguishable from missing ones.
func (s *Service) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/users")

	g.GET("/:id", h.getByID)

	a := g.Group("", authMW)
	a.GET("/me", h.me)
	a.PUT("/me", h.updateMe)
	a.PUT("/me/password", h.changePassword)
}

// GET /users/me
func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, ToProfile(u))
}

// PUT /users/me
func (h *Handler) updateMe(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.svc.UpdateMe(c.Request.Context(), middleware.CurrentUserID(c), dto)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			response.Conflict(c, "username already taken")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, ToProfile(u))
}

// PUT /users/me/password
func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), dto); err != nil {
		if errors.Is(err, ErrWrongPassword) {
			response.BadRequest(c, "wrong password")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "password changed")
}

// GET /users/:id
func (h *Handler) getByID(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, ToPublicProfile(u))
}
