package sync

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the sync server configuration, loaded from YAML:
//
//	listen: :7768
//	persist: /var/lib/denicek/doc.json
//	saveIntervalSeconds: 5
type Config struct {
	Listen              string `yaml:"listen"`
	Persist             string `yaml:"persist,omitempty"`
	SaveIntervalSeconds int    `yaml:"saveIntervalSeconds,omitempty"`
}

const (
	DefaultListen       = ":7768"
	DefaultSaveInterval = 5 * time.Second
)

func DefaultConfig() *Config {
	return &Config{
		Listen:              DefaultListen,
		SaveIntervalSeconds: int(DefaultSaveInterval / time.Second),
	}
}

// LoadConfig reads a YAML config file, filling defaults for absent fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.SaveIntervalSeconds <= 0 {
		cfg.SaveIntervalSeconds = int(DefaultSaveInterval / time.Second)
	}
	return cfg, nil
}

func (c *Config) SaveInterval() time.Duration {
	return time.Duration(c.SaveIntervalSeconds) * time.Second
}
