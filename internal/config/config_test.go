package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/jobs.db", cfg.DB.Path)
	assert.Equal(t, "sources", cfg.Sources.Dir)
	assert.False(t, cfg.Crawler.Test)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, 12, cfg.Schedule.EveryHours)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /tmp/other.db
crawler:
  test: true
  user_agents:
    - agent-a
metrics:
  enabled: true
  addr: ":9191"
schedule:
  every_hours: 6
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.DB.Path)
	assert.True(t, cfg.Crawler.Test)
	assert.Equal(t, []string{"agent-a"}, cfg.Crawler.UserAgents)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9191", cfg.Metrics.Addr)
	assert.Equal(t, 6, cfg.Schedule.EveryHours)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JOBSCRAWLER_CRAWLER_USER_AGENTS", "agent-a,agent-b")
	t.Setenv("JOBSCRAWLER_DB_PATH", "/tmp/env.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"agent-a", "agent-b"}, cfg.Crawler.UserAgents)
	assert.Equal(t, "/tmp/env.db", cfg.DB.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db path", func(c *Config) { c.DB.Path = "" }},
		{"empty sources dir", func(c *Config) { c.Sources.Dir = "" }},
		{"zero schedule", func(c *Config) { c.Schedule.EveryHours = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
