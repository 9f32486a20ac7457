package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs route template and user id", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		r := gin.New()
		r.Use(Logger(zap.New(core)))
		r.GET("/posts/:slug", func(c *gin.Context) {
			c.Set(ContextKeyUserID, "u1")
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/hello-world?token=x", nil))

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "/posts/:slug", fields["route"])
		assert.Equal(t, "/posts/hello-world?token=x", fields["path"])
		assert.Equal(t, "u1", fields["user_id"])
	})

	t.Run("anonymous request carries no user id", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		r := gin.New()
		r.Use(Logger(zap.New(core)))
		r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.NotContains(t, fields, "user_id")
	})
}
