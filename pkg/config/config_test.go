package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.App.StoreDriver)
	assert.Equal(t, "memory", cfg.Live.Transport)
	assert.Equal(t, "expense_changes", cfg.Live.Channel)
	assert.Equal(t, "eeris_session", cfg.JWT.CookieName)
	assert.Equal(t, 30*time.Second, cfg.Scanner.Timeout)
	assert.Equal(t, "http", cfg.Scanner.Driver)
	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.Scanner.AnthropicModel)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LIVE_TRANSPORT", "redis")
	t.Setenv("SCANNER_URL", "http://scanner:8000/")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("SCANNER_DRIVER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ak")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.App.StoreDriver)
	assert.Equal(t, "redis", cfg.Live.Transport)
	assert.Equal(t, "http://scanner:8000", cfg.Scanner.BaseURL)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.DB.Migrate)
	assert.Equal(t, "anthropic", cfg.Scanner.Driver)
	assert.Equal(t, "ak", cfg.Scanner.AnthropicAPIKey)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("postgres transport without postgres store", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STORE_DRIVER", "memory")
		t.Setenv("LIVE_TRANSPORT", "postgres")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown scanner driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("SCANNER_DRIVER", "tesseract")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown transport", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("LIVE_TRANSPORT", "carrier-pigeon")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "eeris", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/eeris?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://other"
	assert.Equal(t, "postgres://other", c.ConnectionString())
}
