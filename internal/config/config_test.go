package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "IMPORT_INTERVAL", "IMPORT_RUN_ON_START", "DATABASE_URL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 10*time.Minute, cfg.ImportInterval)
	assert.True(t, cfg.ImportRunOnStart)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("IMPORT_INTERVAL", "90s")
	t.Setenv("IMPORT_RUN_ON_START", "false")
	t.Setenv("MAIL_PORT", "2525")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("IMPORT_FETCH_TIMEOUT", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 90*time.Second, cfg.ImportInterval)
	assert.False(t, cfg.ImportRunOnStart)
	assert.Equal(t, 2525, cfg.MailPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.ImportFetchTimeout)
}

func TestGoogleCredentialsJSON(t *testing.T) {
	inline := &Config{GoogleCredentials: `{"type":"service_account"}`}
	b, err := inline.GoogleCredentialsJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account"}`, string(b))

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"k":1}`), 0o600))
	b, err = (&Config{GoogleCredentials: path}).GoogleCredentialsJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"k":1}`, string(b))

	b, err = (&Config{}).GoogleCredentialsJSON()
	assert.NoError(t, err)
	assert.Nil(t, b)
}
