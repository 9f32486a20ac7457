package post

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/middleware"
	"github.com/inkwell-cms/core/internal/models"
	"github.com/stretchr/testify/assert"
)

// newTestRouter wires the post routes behind a stub identity middleware
// and the real role gate.
func newTestRouter(userID, role string) (*gin.Engine, *fakePostRepo) {
	gin.SetMode(gin.TestMode)
	svc, posts, _ := newTestService()

	authMW := func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyUserRole, role)
		c.Next()
	}
	writerMW := middleware.RequireRole(models.RoleAuthor, models.RoleAdmin)
	optionalAuthMW := func(c *gin.Context) { c.Next() }

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"), authMW, writerMW, optionalAuthMW)
	return r, posts
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestWriteRoutesRequireAuthorRole(t *testing.T) {
	body := `{"title":"New Post","content":"hello"}`

	t.Run("visitor cannot create", func(t *testing.T) {
		r, posts := newTestRouter("visitor-1", models.RoleVisitor)
		w := doJSON(r, http.MethodPost, "/api/posts", body)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, posts.posts)
	})

	t.Run("visitor cannot update or delete", func(t *testing.T) {
		r, posts := newTestRouter("visitor-1", models.RoleVisitor)
		p := seedPost(posts, "p1", "mine", "visitor-1", models.StatusPublished)

		w := doJSON(r, http.MethodPut, "/api/posts/"+p.Slug, `{"title":"edited"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(r, http.MethodDelete, "/api/posts/"+p.Slug, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("author can create", func(t *testing.T) {
		r, posts := newTestRouter("author-1", models.RoleAuthor)
		w := doJSON(r, http.MethodPost, "/api/posts", body)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Len(t, posts.posts, 1)
	})

	t.Run("admin can create", func(t *testing.T) {
		r, _ := newTestRouter("admin-1", models.RoleAdmin)
		w := doJSON(r, http.MethodPost, "/api/posts", body)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
