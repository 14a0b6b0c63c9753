package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/posrecon/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 500, cfg.Sync.BatchSize)
	assert.Equal(t, 2*time.Minute, cfg.Sync.PassTimeout)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/posrecon?sslmode=disable", cfg.ConnectionString())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "30s")
	t.Setenv("SYNC_BATCH_SIZE", "50")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
	assert.Equal(t, 50, cfg.Sync.BatchSize)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"SYNC_BATCH_SIZE": "0",
		"LOG_LEVEL":       "verbose",
		"PORT":            "70000",
		"SYNC_INTERVAL":   "soon",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
