package common

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/gosimple/slug"
	"github.com/urfave/cli/v2"
)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// NewLogger builds the JSON stderr logger from the global --quiet and
// --verbose flags.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	switch {
	case c.Bool("quiet"):
		logLevel = slog.LevelError
	case c.Bool("verbose"):
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads the --config file and applies command line overrides.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("store") {
		cfg.Store.Driver = c.String("store")
	}
	if c.IsSet("store-path") {
		cfg.Store.Path = c.String("store-path")
	}
	if c.IsSet("base-url") {
		cfg.Store.BaseURL = c.String("base-url")
	}
	if c.IsSet("workers") && c.Int("workers") > 0 {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("language") {
		cfg.Language = c.String("language")
	}
	return cfg, nil
}

// ItemArg returns the identifier given by flag or, failing that, the first
// positional argument.
func ItemArg(c *cli.Context, flag string) (models.Identifier, error) {
	raw := c.String(flag)
	if raw == "" {
		raw = c.Args().First()
	}
	id := models.NewIdentifier(raw)
	if id == "" {
		return "", fmt.Errorf("missing item: pass --%s or an identifier argument", flag)
	}
	return id, nil
}

// OutputFileName maps an identifier to a file name below the output
// directory, e.g. "MOOC:Kurs/Woche 1" -> "mooc-kurs-woche-1.html".
func OutputFileName(id models.Identifier, ext string) string {
	name := slug.MakeLang(string(id), "de")
	if name == "" {
		name = ContentHash([]byte(id))[:12]
	}
	return name + ext
}

// UniquePaths assigns each identifier an output path in dir. Identifiers
// whose names collide get a numeric suffix in order.
func UniquePaths(dir string, ids []models.Identifier, ext string) map[models.Identifier]string {
	paths := make(map[models.Identifier]string, len(ids))
	used := make(map[string]int)
	for _, id := range ids {
		name := OutputFileName(id, ext)
		if n := used[name]; n > 0 {
			used[name] = n + 1
			name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n+1, ext)
		} else {
			used[name] = 1
		}
		paths[id] = filepath.Join(dir, name)
	}
	return paths
}

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste issues.
// Removes whitespace, trailing punctuation and markdown artifacts.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// Extract URL from markdown link format: [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	for _, char := range []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"} {
		cleaned = strings.TrimSuffix(cleaned, char)
	}
	for _, char := range []string{"(", "[", "<", "\"", "'"} {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// ValidateBaseURL sanitizes a wiki base URL and checks that it is an
// absolute http(s) URL.
func ValidateBaseURL(rawURL string) (string, error) {
	cleaned := strings.TrimSuffix(SanitizeURL(rawURL), "/")
	parsed, err := url.Parse(cleaned)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", rawURL)
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, "{}[]<>\"' ") {
		return "", fmt.Errorf("invalid base URL %q: missing or malformed host", rawURL)
	}
	return cleaned, nil
}

// WriteOutput writes data to path, or to stdout for "" and "-".
func WriteOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
