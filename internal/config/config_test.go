package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	for _, env := range []string{"PORT", "ENV", "DSN", "REDIS_URL", "JWT_SECRET"} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "development", cfg.Env)
		assert.True(t, cfg.IsDev())
		assert.Equal(t, 100, cfg.RateLimitMax)
		assert.Equal(t, 60*time.Second, cfg.RateLimitWindow())
		assert.Equal(t, 120*time.Minute, cfg.AccessTokenTTL())
		assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL())
	})

	t.Run("yaml values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte(
			"port: 9090\nenv: production\nrate_limit_max: 10\njwt_secret: s3cret\n",
		), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Port)
		assert.False(t, cfg.IsDev())
		assert.Equal(t, 10, cfg.RateLimitMax)
		assert.Equal(t, "s3cret", cfg.JWTSecret)
	})

	t.Run("environment beats yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("port: 9090\n"), 0o644))

		t.Setenv("PORT", "7070")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Port)
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("port: [broken\n"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
