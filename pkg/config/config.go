package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds the configuration for a wordgate instance.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Store    StoreConfig    `yaml:"store"`
	Filter   FilterConfig   `yaml:"filter"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

type ServerConfig struct {
	TCPPort int `yaml:"tcp_port"`
}

type RedisConfig struct {
	Address         string        `yaml:"address"`
	Password        string        `yaml:"password"`
	DB              int           `yaml:"db"`
	Channel         string        `yaml:"channel"` // PubSub channel that forces a refresh
	BadWordsKey     string        `yaml:"bad_words_key"`
	AllowedWordsKey string        `yaml:"allowed_words_key"`
	TTL             time.Duration `yaml:"ttl"`
}

type StoreConfig struct {
	Driver           string `yaml:"driver"` // sqlite, bolt or file
	Path             string `yaml:"path"`
	BadWordsFile     string `yaml:"bad_words_file"`
	AllowedWordsFile string `yaml:"allowed_words_file"`
}

type FilterConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type PipelineConfig struct {
	BufferSize uint64         `yaml:"buffer_size"` // power of 2
	BatchSize  int            `yaml:"batch_size"`
	TextPath   string         `yaml:"text_path"` // gjson path of the text in JSON messages
	Action     string         `yaml:"action"`    // drop or tag
	Outputs    []OutputConfig `yaml:"outputs"`
}

type OutputConfig struct {
	Type    string            `yaml:"type"` // console or http
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			TCPPort: 8081,
		},
		Redis: RedisConfig{
			Address:         "localhost:6379",
			Channel:         "wordgate_updates",
			BadWordsKey:     "bad_words",
			AllowedWordsKey: "allowed_words",
			TTL:             24 * time.Hour,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "data/words.db",
		},
		Filter: FilterConfig{
			RefreshInterval: 12 * time.Hour,
		},
		Pipeline: PipelineConfig{
			BufferSize: 65536,
			BatchSize:  100,
			TextPath:   "text",
			Action:     "drop",
			Outputs:    []OutputConfig{{Type: "console"}},
		},
	}
}

// Load reads a YAML file on top of DefaultConfig. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "bolt":
		if c.Store.Path == "" {
			return errors.Errorf("store.path is required for driver %q", c.Store.Driver)
		}
	case "file":
		if c.Store.BadWordsFile == "" {
			return errors.New("store.bad_words_file is required for driver \"file\"")
		}
	default:
		return errors.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Filter.RefreshInterval <= 0 {
		return errors.New("filter.refresh_interval must be positive")
	}
	if c.Redis.TTL <= 0 {
		return errors.New("redis.ttl must be positive")
	}
	if c.Filter.RefreshInterval >= c.Redis.TTL {
		return errors.New("filter.refresh_interval must be shorter than redis.ttl")
	}

	size := c.Pipeline.BufferSize
	if size == 0 || size&(size-1) != 0 {
		return errors.New("pipeline.buffer_size must be a power of 2")
	}
	switch c.Pipeline.Action {
	case "drop", "tag":
	default:
		return errors.Errorf("unknown pipeline action %q", c.Pipeline.Action)
	}
	return nil
}
