package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("TOKEN_SECRET", "token-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.AppViewURL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10000, cfg.MaxSessions)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.IsDevEnv)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("IS_DEV_ENV", "true")
	t.Setenv("APPVIEW_URL", "https://api.example.com")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TOKEN_ISSUER", "https://api.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevEnv)
	assert.Empty(t, cfg.TokenSecret)
	assert.Equal(t, "https://api.example.com", cfg.AppViewURL)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "https://api.example.com", cfg.TokenIssuer)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		env     map[string]string
		name    string
		wantErr string
	}{
		{
			name:    "missing session secret",
			env:     map[string]string{"TOKEN_SECRET": "x"},
			wantErr: "parse env:",
		},
		{
			name:    "short session secret",
			env:     map[string]string{"SESSION_SECRET": "short", "TOKEN_SECRET": "x"},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "token secret required in production",
			env:     map[string]string{"SESSION_SECRET": testSecret},
			wantErr: "TOKEN_SECRET",
		},
		{
			name:    "bad page size",
			env:     map[string]string{"SESSION_SECRET": testSecret, "TOKEN_SECRET": "x", "PAGE_SIZE": "abc"},
			wantErr: "parse env:",
		},
		{
			name:    "non-positive page size",
			env:     map[string]string{"SESSION_SECRET": testSecret, "TOKEN_SECRET": "x", "PAGE_SIZE": "0"},
			wantErr: "PAGE_SIZE",
		},
		{
			name:    "bad api url",
			env:     map[string]string{"SESSION_SECRET": testSecret, "TOKEN_SECRET": "x", "APPVIEW_URL": "localhost:3000"},
			wantErr: "APPVIEW_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), "error %q should contain %q", err, tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TWITTERCLONE_TEST_VALUE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TWITTERCLONE_TEST_VALUE") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("TWITTERCLONE_TEST_VALUE"))
}

func TestSlogLevel_Unknown(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "loud"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "warn"}.SlogLevel())
}
