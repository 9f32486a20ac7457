package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/pkg/jwt"
	"github.com/inkwell-cms/core/internal/pkg/response"
	"github.com/inkwell-cms/core/internal/repository"
)

const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Auth enforces access-token authentication and loads the user's role.
// Refresh tokens and tokens of disabled accounts are rejected.
func Auth(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, userID, err := validateAccess(c, users)
		if err != nil {
			response.Unauthorized(c, err.Error())
			return
		}
		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyUserRole, role)
		c.Next()
	}
}

// OptionalAuth sets the user identity if a valid access token is present,
// but never blocks the request.
func OptionalAuth(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, userID, err := validateAccess(c, users); err == nil {
			c.Set(ContextKeyUserID, userID)
			c.Set(ContextKeyUserRole, role)
		}
		c.Next()
	}
}

// RequireRole allows only requests whose authenticated role is listed.
// It must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[CurrentUserRole(c)]; !ok {
			response.Forbidden(c, "insufficient role")
			return
		}
		c.Next()
	}
}

func validateAccess(c *gin.Context, users repository.UserRepository) (role, userID string, err error) {
	token := extractToken(c)
	if token == "" {
		return "", "", errors.New("token is required")
	}

	claims, err := jwt.Parse(token)
	if err != nil {
		return "", "", errors.New("invalid token")
	}
	if claims.TokenType != jwt.TypeAccess {
		return "", "", errors.New("access token required")
	}

	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return "", "", err
	}
	if user == nil || !user.IsActive {
		return "", "", errors.New("account not found or disabled")
	}
	return user.Role, user.ID, nil
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentUserRole extracts the authenticated user's role from context.
func CurrentUserRole(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserRole)
	role, _ := v.(string)
	return role
}

// IsAuthenticated reports whether the request carries a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return normalizeToken(auth)
	}
	return normalizeToken(c.Query("token"))
}

func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
