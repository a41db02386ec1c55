package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Mode: "debug"},
		Database: DatabaseConfig{Driver: "mysql"},
		JWT:      JWTConfig{Secret: "short"},
		Storage:  StorageConfig{Type: "local"},
		Quiz:     QuizConfig{MaxAttempts: 2, MinValid: 3, DefaultCount: 10, MaxCount: 25},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"postgres", func(c *Config) { c.Database.Driver = "postgres" }, ""},
		{"short secret in release", func(c *Config) { c.Server.Mode = "release" }, "JWT secret"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, "unsupported database driver"},
		{"no attempts", func(c *Config) { c.Quiz.MaxAttempts = 0 }, "max_attempts"},
		{"no min valid", func(c *Config) { c.Quiz.MinValid = 0 }, "min_valid"},
		{"default above max", func(c *Config) { c.Quiz.DefaultCount = 30 }, "default_count"},
		{"supabase without key", func(c *Config) {
			c.Storage.Type = "supabase"
			c.Supabase.URL = "https://x.supabase.co"
		}, "supabase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 30*time.Second, AIConfig{}.Timeout())
	assert.Equal(t, 5*time.Second, AIConfig{TimeoutSeconds: 5}.Timeout())
	assert.Equal(t, 1500*time.Millisecond, QuizConfig{RetryDelayMS: 1500}.RetryDelay())
	assert.Equal(t, 48*time.Hour, QuizConfig{SnapshotTTLHours: 48}.SnapshotTTL())
}

func TestLoadConfig(t *testing.T) {
	// 空值视为未设置
	for _, k := range []string{"PORT", "SERVER_MODE", "DATABASE_DRIVER", "JWT_SECRET", "STORAGE_TYPE"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	yaml := `
server:
  port: "9090"
database:
  driver: postgres
  host: db.internal
  port: 5432
jwt:
  secret: test-secret
  expire_hours: 2
storage:
  type: local
  local_path: ` + uploads + `
quiz:
  min_valid: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 4, cfg.Quiz.MinValid)
	// 未配置的项使用默认值
	assert.Equal(t, 2, cfg.Quiz.MaxAttempts)
	assert.Equal(t, 10, cfg.Quiz.DefaultCount)
	assert.Equal(t, dir, cfg.ResolvePath())
	assert.DirExists(t, uploads)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestResolvePath_Default(t *testing.T) {
	assert.Equal(t, "configs", (&Config{}).ResolvePath())
}
