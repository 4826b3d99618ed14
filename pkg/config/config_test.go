package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 12*time.Hour, cfg.Filter.RefreshInterval)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordgate.yaml")
	data := `
redis:
  address: redis:6379
  ttl: 48h
store:
  driver: file
  bad_words_file: /etc/wordgate/bad.txt
filter:
  refresh_interval: 6h
pipeline:
  action: tag
  outputs:
    - type: http
      url: http://moderation.local/ingest
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, 48*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "wordgate_updates", cfg.Redis.Channel, "unset keys keep defaults")
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, 6*time.Hour, cfg.Filter.RefreshInterval)
	assert.Equal(t, "tag", cfg.Pipeline.Action)
	require.Len(t, cfg.Pipeline.Outputs, 1)
	assert.Equal(t, "http", cfg.Pipeline.Outputs[0].Type)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }},
		{name: "sqlite without path", mutate: func(c *Config) { c.Store.Path = "" }},
		{name: "file without list", mutate: func(c *Config) { c.Store.Driver = "file" }},
		{name: "refresh not shorter than ttl", mutate: func(c *Config) { c.Filter.RefreshInterval = 24 * time.Hour }},
		{name: "zero refresh", mutate: func(c *Config) { c.Filter.RefreshInterval = 0 }},
		{name: "buffer not power of two", mutate: func(c *Config) { c.Pipeline.BufferSize = 1000 }},
		{name: "unknown action", mutate: func(c *Config) { c.Pipeline.Action = "mask" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
