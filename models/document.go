package models

// NavEntry is one entry of the navigation tree.
type NavEntry struct {
	Identifier Identifier  `json:"identifier" yaml:"identifier"`
	Name       string      `json:"name" yaml:"name"`
	URL        string      `json:"url" yaml:"url"`
	Type       ItemType    `json:"type,omitempty" yaml:"type,omitempty"`
	Current    bool        `json:"current,omitempty" yaml:"current,omitempty"`
	Children   []*NavEntry `json:"children,omitempty" yaml:"children,omitempty"`
}

// NavLink is a plain link to another item, used by the pager.
type NavLink struct {
	Identifier Identifier `json:"identifier"`
	Name       string     `json:"name"`
	URL        string     `json:"url"`
}

// SectionView is the serializable form of a section container.
type SectionView struct {
	Key         string `json:"key,omitempty"`
	Title       string `json:"title"`
	Collapsed   bool   `json:"collapsed,omitempty"`
	HeaderHTML  string `json:"header_html"`
	ContentHTML string `json:"content_html"`
}

// Document is the assembled output for one item.
type Document struct {
	Title      Identifier     `json:"title"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Navigation *NavEntry      `json:"navigation"`
	Sections   []SectionView  `json:"sections"`
	Links      []Identifier   `json:"links"`
	Previous   *NavLink       `json:"previous,omitempty"`
	Next       *NavLink       `json:"next,omitempty"`
	EditValues map[string]any `json:"edit_values,omitempty"`
	Excerpt    string         `json:"excerpt,omitempty"`
	Language   string         `json:"language,omitempty"`
	// Error is set when the item has no content region.
	Error string `json:"error,omitempty"`
	HTML  string `json:"-"`
}
