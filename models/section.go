package models

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Section keys known to the built-in renderers.
const (
	SectionLearningGoals  = "learning-goals"
	SectionVideo          = "video"
	SectionScript         = "script"
	SectionQuiz           = "quiz"
	SectionFurtherReading = "further-reading"
	SectionChildren       = "children"
)

// SectionConfig is the display metadata for one section key.
type SectionConfig struct {
	Key       string `yaml:"key" json:"key"`
	Title     string `yaml:"title" json:"title"`
	Icon      string `yaml:"icon,omitempty" json:"icon,omitempty"`
	Collapsed bool   `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
}

// IconFile returns the configured icon or the ic_<key>.svg default.
func (c SectionConfig) IconFile() string {
	if c.Icon != "" {
		return c.Icon
	}
	return "ic_" + c.Key + ".svg"
}

// SectionRegistry maps section keys to their configuration. It is built
// once at startup and only read afterwards.
type SectionRegistry struct {
	ordered []SectionConfig
	byKey   map[string]int
}

// NewSectionRegistry validates configs and builds a registry preserving
// their order. Keys must be unique and non-empty.
func NewSectionRegistry(configs []SectionConfig) (*SectionRegistry, error) {
	reg := &SectionRegistry{
		ordered: make([]SectionConfig, 0, len(configs)),
		byKey:   make(map[string]int, len(configs)),
	}
	for _, cfg := range configs {
		cfg.Key = strings.TrimSpace(cfg.Key)
		if cfg.Key == "" {
			return nil, fmt.Errorf("section config without key (title %q)", cfg.Title)
		}
		if _, dup := reg.byKey[cfg.Key]; dup {
			return nil, fmt.Errorf("duplicate section key %q", cfg.Key)
		}
		cfg.Title = strings.TrimSpace(cfg.Title)
		if cfg.Title == "" {
			cfg.Title = cfg.Key
		}
		// headings map back to keys by title
		if other, dup := reg.MatchTitle(cfg.Title); dup {
			return nil, fmt.Errorf("section %q reuses the title %q of section %q", cfg.Key, cfg.Title, other.Key)
		}
		reg.byKey[cfg.Key] = len(reg.ordered)
		reg.ordered = append(reg.ordered, cfg)
	}
	return reg, nil
}

// Lookup returns the configuration for key.
func (r *SectionRegistry) Lookup(key string) (SectionConfig, bool) {
	idx, ok := r.byKey[key]
	if !ok {
		return SectionConfig{}, false
	}
	return r.ordered[idx], true
}

// Title returns the configured title for key, or the key itself.
func (r *SectionRegistry) Title(key string) string {
	if cfg, ok := r.Lookup(key); ok {
		return cfg.Title
	}
	return key
}

// MatchTitle finds the section whose title equals title, ignoring case and
// surrounding whitespace. The first configured match wins.
func (r *SectionRegistry) MatchTitle(title string) (SectionConfig, bool) {
	title = strings.TrimSpace(title)
	for _, cfg := range r.ordered {
		if strings.EqualFold(cfg.Title, title) {
			return cfg, true
		}
	}
	return SectionConfig{}, false
}

// All returns a copy of the configured sections in order.
func (r *SectionRegistry) All() []SectionConfig {
	out := make([]SectionConfig, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// SectionMarkup is one section payload emitted by a section renderer.
type SectionMarkup struct {
	Key    string
	Title  string
	Markup string
	// Empty marks the placeholder emitted for an unset field.
	Empty bool
}

// Block is one block of rendered output.
type Block struct {
	Heading bool
	// Depth is 0 for direct children of the document body.
	Depth int
	Node  *html.Node
}

// SectionContainer is one restructured section produced by the splitter.
type SectionContainer struct {
	// Key is empty when the heading matched no configured section.
	Key     string
	Title   string
	Config  *SectionConfig
	Header  Block
	Content []Block
	// Node is the assembled section element holding header and content.
	Node *html.Node
}

// Keyed reports whether the container matched a configured section.
func (c SectionContainer) Keyed() bool {
	return c.Key != ""
}
