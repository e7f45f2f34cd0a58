package models

import (
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Identifier is a wiki-style page title: [Namespace:]Root[/Sub...].
// Identifiers are always kept in normalized form, see NewIdentifier.
type Identifier string

// NewIdentifier normalizes a raw title: underscores become spaces, runs of
// whitespace collapse, each segment is trimmed and the first rune of the
// title text (after the namespace) is upper-cased.
func NewIdentifier(raw string) Identifier {
	raw = strings.ReplaceAll(raw, "_", " ")
	raw = strings.Join(strings.Fields(raw), " ")

	ns, text := splitNamespace(raw)
	segments := strings.Split(text, "/")
	kept := segments[:0]
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			kept = append(kept, seg)
		}
	}
	text = upperFirst(strings.Join(kept, "/"))

	if ns == "" {
		return Identifier(text)
	}
	return Identifier(upperFirst(strings.TrimSpace(ns)) + ":" + text)
}

func splitNamespace(title string) (string, string) {
	idx := strings.Index(title, ":")
	if idx <= 0 {
		return "", title
	}
	ns := title[:idx]
	// a slash before the colon means the colon belongs to a subpage name
	if strings.Contains(ns, "/") {
		return "", title
	}
	return ns, title[idx+1:]
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// String returns the identifier as plain text.
func (id Identifier) String() string {
	return string(id)
}

// Namespace returns the namespace prefix without the colon, or "".
func (id Identifier) Namespace() string {
	ns, _ := splitNamespace(string(id))
	return ns
}

// Text returns the title without its namespace.
func (id Identifier) Text() string {
	_, text := splitNamespace(string(id))
	return text
}

// Root returns the top-level page of the identifier's subpage hierarchy.
func (id Identifier) Root() Identifier {
	ns, text := splitNamespace(string(id))
	if idx := strings.Index(text, "/"); idx >= 0 {
		text = text[:idx]
	}
	return join(ns, text)
}

// Parent returns the enclosing page, or the identifier itself for a root.
func (id Identifier) Parent() Identifier {
	ns, text := splitNamespace(string(id))
	idx := strings.LastIndex(text, "/")
	if idx < 0 {
		return id
	}
	return join(ns, text[:idx])
}

// IsRoot reports whether the identifier has no subpage segments.
func (id Identifier) IsRoot() bool {
	return !strings.Contains(id.Text(), "/")
}

// Subpage returns the last path segment of the title.
func (id Identifier) Subpage() string {
	text := id.Text()
	if idx := strings.LastIndex(text, "/"); idx >= 0 {
		return text[idx+1:]
	}
	return text
}

// Depth returns the number of subpage levels below the root.
func (id Identifier) Depth() int {
	return strings.Count(id.Text(), "/")
}

// IsDescendantOf reports whether id lives strictly below other.
func (id Identifier) IsDescendantOf(other Identifier) bool {
	return strings.HasPrefix(string(id), string(other)+"/")
}

// Child resolves a child name declared by this item.
//
// Plain names are appended as a subpage. Names starting with "./" or "../"
// are resolved relative to this identifier and a leading ":" marks an
// absolute identifier.
func (id Identifier) Child(name string) Identifier {
	name = strings.TrimSpace(name)
	switch {
	case strings.HasPrefix(name, ":"):
		return NewIdentifier(strings.TrimPrefix(name, ":"))
	case strings.HasPrefix(name, "./"), strings.HasPrefix(name, "../"), name == "..":
		ns, text := splitNamespace(string(id))
		resolved := path.Clean("/" + text + "/" + name)
		resolved = strings.TrimPrefix(resolved, "/")
		return NewIdentifier(string(join(ns, resolved)))
	}
	return NewIdentifier(string(id) + "/" + name)
}

// URL returns the display URL of the page below linkBase.
func (id Identifier) URL(linkBase string) string {
	segments := strings.Split(strings.ReplaceAll(string(id), " ", "_"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimSuffix(linkBase, "/") + "/" + strings.Join(segments, "/")
}

func join(ns, text string) Identifier {
	if ns == "" {
		return Identifier(text)
	}
	return Identifier(ns + ":" + text)
}
