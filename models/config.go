// Package models defines the course data model, configuration and the
// output structures shared by the rendering packages.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no --config flag is given.
const DefaultConfigFile = "mooc.yaml"

// StoreConfig selects and configures the content store.
type StoreConfig struct {
	Driver    string        `yaml:"driver"` // sqlite, dir, http
	Path      string        `yaml:"path,omitempty"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	CacheSize int           `yaml:"cache_size,omitempty"`
	CacheTTL  time.Duration `yaml:"cache_ttl,omitempty"`
}

// Config is the process-wide configuration, loaded once at startup.
type Config struct {
	Store        StoreConfig     `yaml:"store"`
	Workers      int             `yaml:"workers"`
	LinkBase     string          `yaml:"link_base"`
	ImagePath    string          `yaml:"image_path"`
	MediaPath    string          `yaml:"media_path"`
	EditPath     string          `yaml:"edit_path"`
	Language     string          `yaml:"language"` // "auto" or ISO 639-1
	HeadingLevel int             `yaml:"heading_level"`
	Sections     []SectionConfig `yaml:"sections"`
}

// DefaultSections are used when the config file defines none.
func DefaultSections() []SectionConfig {
	return []SectionConfig{
		{Key: SectionLearningGoals, Title: "Lernziele", Icon: "ic_learning-goals.svg"},
		{Key: SectionVideo, Title: "Video", Icon: "ic_video.svg"},
		{Key: SectionScript, Title: "Skript", Icon: "ic_script.svg", Collapsed: true},
		{Key: SectionQuiz, Title: "Quiz", Icon: "ic_quiz.svg", Collapsed: true},
		{Key: SectionChildren, Title: "Lektionen", Icon: "ic_children.svg"},
		{Key: SectionFurtherReading, Title: "Weiterführende Literatur", Icon: "ic_further-reading.svg"},
	}
}

// DefaultConfig returns the configuration used for unset values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:    "sqlite",
			Path:      "mooc-renderer.db",
			CacheSize: 512,
			CacheTTL:  5 * time.Minute,
		},
		Workers:      4,
		LinkBase:     "/wiki",
		ImagePath:    "/extensions/MOOC/resources/images/",
		MediaPath:    "/media/",
		EditPath:     "/wiki/Special:MoocEdit",
		Language:     "auto",
		HeadingLevel: 2,
		Sections:     DefaultSections(),
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Store.Driver == "" {
		c.Store.Driver = def.Store.Driver
	}
	if c.Store.Path == "" && c.Store.Driver == "sqlite" {
		c.Store.Path = def.Store.Path
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.HeadingLevel < 1 || c.HeadingLevel > 6 {
		c.HeadingLevel = def.HeadingLevel
	}
	if c.Language == "" {
		c.Language = def.Language
	}
	if len(c.Sections) == 0 {
		c.Sections = def.Sections
	}
}

// Registry builds the immutable section registry from the config.
func (c *Config) Registry() (*SectionRegistry, error) {
	return NewSectionRegistry(c.Sections)
}
