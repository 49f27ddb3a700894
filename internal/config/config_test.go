package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AWS_BUCKET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-4", cfg.OpenAI.Deployment)
	assert.Equal(t, "2024-02-01", cfg.OpenAI.APIVersion)
	assert.Equal(t, 2000, cfg.OpenAI.MaxTokens)
	assert.Equal(t, 3, cfg.OpenAI.MaxRetries)
	assert.Equal(t, 10, cfg.OpenAI.MaxConcurrentRequests)
	assert.Equal(t, 50, cfg.Process.BatchSize)
	assert.Equal(t, 24*time.Hour, cfg.Interview.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.Interview.GracePeriod)
	assert.Equal(t, int64(5*1024*1024), cfg.Recording.BlockSize)
	assert.False(t, cfg.LLMConfigured())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:       "test",
			DB:        DBConfig{MaxOpenConns: 25, MaxIdleConns: 5},
			Process:   ProcessingConfig{BatchSize: 50, Workers: 2},
			OpenAI:    OpenAIConfig{MaxConcurrentRequests: 10},
			Recording: RecordingConfig{BlockSize: minS3PartSize},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad env", func(c *Config) { c.Env = "qa" }, "invalid environment"},
		{"idle above open", func(c *Config) { c.DB.MaxIdleConns = 30 }, "DB_MAX_IDLE_CONNS"},
		{"zero batch", func(c *Config) { c.Process.BatchSize = 0 }, "BATCH_SIZE"},
		{"small s3 block", func(c *Config) {
			c.Storage.Bucket = "b"
			c.Recording.BlockSize = 1024
		}, "RECORDING_BLOCK_SIZE"},
		{"small local block ok", func(c *Config) { c.Recording.BlockSize = 1024 }, ""},
		{"too many s3 parts", func(c *Config) {
			c.Storage.Bucket = "b"
			c.Recording.MaxSize = (maxS3Parts + 1) * minS3PartSize
		}, "RECORDING_MAX_SIZE"},
		{"s3 parts at limit", func(c *Config) {
			c.Storage.Bucket = "b"
			c.Recording.MaxSize = maxS3Parts * minS3PartSize
		}, ""},
		{"many local blocks ok", func(c *Config) {
			c.Recording.BlockSize = 1024
			c.Recording.MaxSize = 1 << 31
		}, ""},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "JWT_SECRET"},
		{"production needs secret", func(c *Config) { c.Env = "production" }, "required in production"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestDSNAndOrigins(t *testing.T) {
	cfg := &Config{
		DB:   DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"},
		CORS: CORSConfig{Origins: "http://a.com, http://b.com"},
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.DB.DSN())
	assert.Equal(t, "http://a.com,http://b.com", cfg.CORSOrigins())
}
