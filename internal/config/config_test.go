package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "data/console.db", cfg.Store.Path)
	assert.Equal(t, uint(3), cfg.Store.RetryAttempts)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.False(t, cfg.Lark.Enabled)
	assert.Equal(t, "en", cfg.I18n.Locale)
	assert.Equal(t, "current authenticated user", cfg.Workflow.DefaultActor)
	assert.Equal(t, time.Hour, cfg.Workflow.ReminderInterval)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
store:
  driver: redis
  redis_addr: cache:6379
  redis_namespace: fleet
lark:
  enabled: true
  recipients:
    Branch Manager: ou_bm
    Budi Santoso: ou_budi
workflow:
  default_actor: console
`)
	t.Setenv("LARK_APP_ID", "cli_a1")
	t.Setenv("LARK_APP_SECRET", "secret")
	t.Setenv("CONSOLE_LOGGER_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "fleet", cfg.Store.RedisNamespace)
	assert.Equal(t, "cli_a1", cfg.Lark.AppID)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Workflow.DefaultActor)
	assert.Len(t, cfg.Lark.Recipients, 2)
	assert.Equal(t, "ou_bm", cfg.Lark.Recipients["branch manager"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Store:    StoreConfig{Driver: DriverMemory},
			Logger:   LoggerConfig{Format: "console"},
			Workflow: WorkflowConfig{DefaultActor: "someone"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, "not supported"},
		{"sqlite without path", func(c *Config) { c.Store.Driver = DriverSQLite }, "store.path"},
		{"postgres without url", func(c *Config) { c.Store.Driver = DriverPostgres }, "store.postgres_url"},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, "logger.format"},
		{"lark without app id", func(c *Config) { c.Lark.Enabled = true }, "lark.app_id"},
		{"blank actor", func(c *Config) { c.Workflow.DefaultActor = " " }, "default_actor"},
		{"negative reminder interval", func(c *Config) { c.Workflow.ReminderInterval = -time.Minute }, "reminder_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
