package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/dtnitsch/mooc-renderer/models"
)

// standalonePage wraps the rendered document into a complete HTML file.
func standalonePage(doc *models.Document) []byte {
	lang := doc.Language
	if lang == "" {
		lang = "de"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&sb, "<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n", html.EscapeString(lang))
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(doc.Name))
	if doc.Excerpt != "" {
		fmt.Fprintf(&sb, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(doc.Excerpt))
	}
	fmt.Fprintf(&sb, "<meta name=\"mooc-item\" content=\"%s\">\n", html.EscapeString(string(doc.Title)))
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(doc.HTML)
	sb.WriteString("\n</body>\n</html>\n")
	return []byte(sb.String())
}

// structureEntries converts a resolved course into navigation entries for
// the structure dump.
func structureEntries(node *models.StructureNode, linkBase string) *models.NavEntry {
	entry := &models.NavEntry{
		Identifier: node.Identifier(),
		Name:       node.Item.DisplayName(),
		URL:        node.Item.URL(linkBase),
		Type:       node.Item.Type,
	}
	for _, child := range node.Children {
		entry.Children = append(entry.Children, structureEntries(child, linkBase))
	}
	return entry
}
