// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

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

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/yarnswap")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Second, cfg.StatementTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 100.0, cfg.RateLimitRPS)
	assert.Equal(t, 150, cfg.RateLimitBurst)
	assert.Empty(t, cfg.AllowedOrigins())
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "DATABASE_URL=postgres://db/yarnswap\nENVIRONMENT=production\nEXTRA_ORIGINS=https://a.example,https://b.example\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv never overrides real variables, so clear them for this test.
	for _, key := range []string{"DATABASE_URL", "ENVIRONMENT", "EXTRA_ORIGINS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://db/yarnswap", cfg.DatabaseURL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestConfig_LogLevel(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		debug       bool
		want        slog.Level
	}{
		{"default", "development", false, slog.LevelInfo},
		{"debug_in_development", "development", true, slog.LevelDebug},
		{"debug_in_staging", "staging", true, slog.LevelDebug},
		{"debug_ignored_in_production", "production", true, slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment, Debug: tt.debug}
			assert.Equal(t, tt.want, cfg.LogLevel())
		})
	}
}
