package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("UPLOAD_MAX_SIZE_BYTES", "1024")
	os.Setenv("MINIO_USE_SSL", "true")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("UPLOAD_MAX_SIZE_BYTES")
		os.Unsetenv("MINIO_USE_SSL")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, int64(1024), cfg.Upload.MaxSizeBytes)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "local", cfg.Upload.StorageBackend)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *AppConfig) {},
		},
		{
			name:    "missing api key fails fast",
			mutate:  func(c *AppConfig) { c.OpenAI.APIKey = "" },
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "unknown storage backend",
			mutate:  func(c *AppConfig) { c.Upload.StorageBackend = "ftp" },
			wantErr: "STORAGE_BACKEND",
		},
		{
			name:    "non-positive size ceiling",
			mutate:  func(c *AppConfig) { c.Upload.MaxSizeBytes = 0 },
			wantErr: "UPLOAD_MAX_SIZE_BYTES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &AppConfig{
				OpenAI: OpenAIConfig{APIKey: "sk-test"},
				Upload: UploadConfig{StorageBackend: "local", MaxSizeBytes: 1},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}
