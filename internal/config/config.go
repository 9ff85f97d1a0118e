package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage Storage `yaml:"storage" json:"storage"`
	Limits  Limits  `yaml:"limits" json:"limits"`
	Auth    Auth    `yaml:"auth" json:"auth"`
}

type Storage struct {
	// DataDir holds one file per store key.
	DataDir string `yaml:"data_dir" json:"data_dir"`
	// QuotaBytes caps the total payload size the store accepts, 0 = unlimited.
	QuotaBytes int `yaml:"quota_bytes" json:"quota_bytes"`
}

// Limits carries the board's record constraints. No domain rule justifies
// the exact values, so they are configurable rather than hardcoded.
type Limits struct {
	ActivityCap    int `yaml:"activity_cap" json:"activity_cap"`
	MaxTags        int `yaml:"max_tags" json:"max_tags"`
	MaxTagLen      int `yaml:"max_tag_len" json:"max_tag_len"`
	MinTitleLen    int `yaml:"min_title_len" json:"min_title_len"`
	MaxTitleLen    int `yaml:"max_title_len" json:"max_title_len"`
	MaxDescription int `yaml:"max_description" json:"max_description"`
}

type Auth struct {
	DemoEmail    string `yaml:"demo_email" json:"demo_email"`
	DemoPassword string `yaml:"demo_password" json:"demo_password"`
}

func Default() Config {
	return Config{
		Storage: Storage{
			DataDir:    "data",
			QuotaBytes: 5 * 1024 * 1024,
		},
		Limits: Limits{
			ActivityCap:    50,
			MaxTags:        10,
			MaxTagLen:      20,
			MinTitleLen:    2,
			MaxTitleLen:    100,
			MaxDescription: 500,
		},
		Auth: Auth{
			DemoEmail:    "intern@demo.com",
			DemoPassword: "intern123",
		},
	}
}

// Load reads a YAML config file and applies it over the defaults.
// A missing file is not an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Limits.ActivityCap <= 0 {
		return fmt.Errorf("limits.activity_cap must be positive, got %d", c.Limits.ActivityCap)
	}
	if c.Limits.MinTitleLen < 1 || c.Limits.MaxTitleLen < c.Limits.MinTitleLen {
		return fmt.Errorf("invalid title length bounds [%d, %d]", c.Limits.MinTitleLen, c.Limits.MaxTitleLen)
	}
	if c.Limits.MaxTags < 0 || c.Limits.MaxTagLen < 1 {
		return fmt.Errorf("invalid tag limits (max %d, len %d)", c.Limits.MaxTags, c.Limits.MaxTagLen)
	}
	if c.Limits.MaxDescription < 0 {
		return fmt.Errorf("limits.max_description must not be negative, got %d", c.Limits.MaxDescription)
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("storage.quota_bytes must not be negative, got %d", c.Storage.QuotaBytes)
	}
	return nil
}
