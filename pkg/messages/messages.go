// Package messages provides localized interface texts.
package messages

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when a requested language has no catalog.
const DefaultLanguage = "de"

//go:embed i18n/*.yaml
var catalogFiles embed.FS

// Catalog resolves message keys to text.
type Catalog interface {
	Lookup(key string, params ...string) string
}

// Bundle holds the catalogs of all available languages.
type Bundle struct {
	catalogs map[string]*catalog
	fallback string
}

type catalog struct {
	lang     string
	messages map[string]string
	fallback *catalog
}

// LoadBundle reads the embedded catalogs.
func LoadBundle() (*Bundle, error) {
	entries, err := catalogFiles.ReadDir("i18n")
	if err != nil {
		return nil, fmt.Errorf("failed to list message catalogs: %w", err)
	}

	sources := make(map[string][]byte, len(entries))
	for _, entry := range entries {
		data, err := catalogFiles.ReadFile(path.Join("i18n", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", entry.Name(), err)
		}
		sources[strings.TrimSuffix(entry.Name(), ".yaml")] = data
	}
	return NewBundle(sources, DefaultLanguage)
}

// NewBundle parses YAML catalogs keyed by language code. Messages missing in
// one language fall back to the fallback language.
func NewBundle(sources map[string][]byte, fallback string) (*Bundle, error) {
	b := &Bundle{catalogs: make(map[string]*catalog, len(sources)), fallback: fallback}
	for lang, data := range sources {
		msgs := map[string]string{}
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("failed to parse %s catalog: %w", lang, err)
		}
		b.catalogs[lang] = &catalog{lang: lang, messages: msgs}
	}
	if _, ok := b.catalogs[fallback]; !ok {
		return nil, fmt.Errorf("fallback language %q has no catalog", fallback)
	}
	for lang, c := range b.catalogs {
		if lang != fallback {
			c.fallback = b.catalogs[fallback]
		}
	}
	return b, nil
}

// Languages returns the available language codes, sorted.
func (b *Bundle) Languages() []string {
	langs := make([]string, 0, len(b.catalogs))
	for lang := range b.catalogs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Has reports whether a catalog exists for lang.
func (b *Bundle) Has(lang string) bool {
	_, ok := b.catalogs[strings.ToLower(lang)]
	return ok
}

// Catalog returns the catalog for lang, or the fallback catalog.
func (b *Bundle) Catalog(lang string) Catalog {
	if c, ok := b.catalogs[strings.ToLower(lang)]; ok {
		return c
	}
	return b.catalogs[b.fallback]
}

// Lookup returns the message for key with $1, $2 ... replaced by params.
// Unknown keys yield the key itself.
func (c *catalog) Lookup(key string, params ...string) string {
	msg, ok := c.messages[key]
	if !ok && c.fallback != nil {
		msg, ok = c.fallback.messages[key]
	}
	if !ok {
		return key
	}
	return substitute(msg, params)
}

func substitute(msg string, params []string) string {
	// highest index first so $1 does not clobber $10
	for i := len(params); i >= 1; i-- {
		msg = strings.ReplaceAll(msg, "$"+strconv.Itoa(i), params[i-1])
	}
	return msg
}
