package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, DriverRedis, cfg.Sessions.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, "ko", cfg.Catalog.DefaultLanguage)
	assert.Equal(t, "kmou2025admin", cfg.Admin.Password)
	assert.Equal(t, 5, cfg.Pages.PageSize)
	assert.True(t, cfg.Pages.Matrix)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "Asia/Seoul", cfg.Location().String())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SESSION_DRIVER", "memory")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("PAGE_SIZE", "7")
	t.Setenv("MATRIX_PAGES", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PARTIAL_RETENTION", "720h")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, 7, cfg.Pages.PageSize)
	assert.False(t, cfg.Pages.Matrix)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 720*time.Hour, cfg.Cleanup.PartialRetention)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ADMIN_TOKEN_SECRET=from-file\nLOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("ADMIN_TOKEN_SECRET")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Admin.TokenSecret)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "70000"}},
		{"unknown storage", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"unknown sessions", map[string]string{"SESSION_DRIVER": "etcd"}},
		{"empty dsn", map[string]string{"DATABASE_DSN": ""}},
		{"no admin password", map[string]string{"ADMIN_PASSWORD": ""}},
		{"bad timezone", map[string]string{"STATS_TIMEZONE": "Mars/Olympus"}},
		{"zero page size", map[string]string{"PAGE_SIZE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "verbose"}.SlogLevel())
}
