package config

import (
	"testing"
	"time"

	"sheetimport/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "SHEETS_BASE_URL", "FETCH_TIMEOUT", "MAX_UPLOAD_BYTES", "SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "", cfg.Database.URL)
	assert.Equal(t, "https://docs.google.com", cfg.Sheets.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Sheets.FetchTimeout)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxUploadBytes)
	assert.Equal(t, time.Hour, cfg.Import.SessionTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Sheets.FetchTimeout)
	assert.Equal(t, int64(1024), cfg.Import.MaxUploadBytes)
	assert.Equal(t, time.Hour, cfg.Import.SessionTTL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric port", "PORT", "http"},
		{"relative sheets url", "SHEETS_BASE_URL", "docs.google.com"},
		{"negative timeout", "FETCH_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
