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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		// an explicit path that does not exist is an error, not a fallback
		t.Fatal("expected error for explicit missing file")
	}

	t.Chdir(t.TempDir())
	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, "backoffice", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 3, cfg.Database.Retry.MaxAttempts)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "sales_app", cfg.Notify.AMQP.Exchange)
	assert.True(t, cfg.Notify.SinkEnabled("log"))
	assert.False(t, cfg.Notify.SinkEnabled("redis"))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  env: production
database:
  type: postgres
  port: "5432"
auth:
  secret_key: from-file
notify:
  sinks: [log, redis]
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("BACKOFFICE_DATABASE_HOST", "db.internal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "from-file", cfg.Auth.SecretKey)
	assert.True(t, cfg.Notify.SinkEnabled("redis"))
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		App:      AppConfig{Env: "production"},
		Database: DatabaseConfig{Type: "oracle"},
		Auth:     AuthConfig{SecretKey: "x"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Database.Type = "mysql"
	assert.NoError(t, cfg.Validate())

	cfg.Auth.SecretKey = defaultSecretKey
	assert.Error(t, cfg.Validate())
}

func TestValidateNotify(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Type: "sqlite"},
			Auth:     AuthConfig{SecretKey: "x"},
			Notify: NotifyConfig{
				Sinks: []string{"log", "Outbox"},
				Relay: RelayConfig{Enabled: true, PollInterval: time.Second, BatchSize: 10, MaxRetries: 3, Sink: "redis"},
			},
		}
	}
	require.NoError(t, valid().Validate())

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown sink", func(c *Config) { c.Notify.Sinks = append(c.Notify.Sinks, "kafka") }},
		{"relay without outbox", func(c *Config) { c.Notify.Sinks = []string{"log"} }},
		{"relay into outbox", func(c *Config) { c.Notify.Relay.Sink = "outbox" }},
		{"relay into unknown sink", func(c *Config) { c.Notify.Relay.Sink = "sns" }},
		{"zero batch", func(c *Config) { c.Notify.Relay.BatchSize = 0 }},
		{"file log without path", func(c *Config) { c.Log.Output = "file" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
