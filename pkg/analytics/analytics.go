// Package analytics extracts keyword statistics from rendered course pages.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// MinWordLength drops very short tokens such as unit abbreviations.
const MinWordLength = 3

// stopwords lists frequent words per language that carry no topic.
var stopwords = map[string][]string{
	"de": {
		"aber", "alle", "als", "also", "am", "an", "auch", "auf", "aus", "bei", "bin", "bis", "bist",
		"da", "damit", "dann", "das", "dass", "dem", "den", "denn", "der", "des", "die", "dies", "diese",
		"dieser", "dieses", "doch", "dort", "du", "durch", "ein", "eine", "einem", "einen", "einer",
		"eines", "er", "es", "etwas", "für", "gegen", "hat", "hatte", "hier", "ich", "ihr", "ihre",
		"im", "in", "ist", "jede", "jeder", "kann", "kein", "keine", "man", "mehr", "mit", "muss",
		"nach", "nicht", "noch", "nur", "oder", "ohne", "sehr", "sein", "seine", "sich", "sie", "sind",
		"so", "über", "um", "und", "uns", "unter", "vom", "von", "vor", "war", "was", "weil", "wenn",
		"werden", "wie", "wir", "wird", "wurde", "zu", "zum", "zur", "zwischen",
	},
	"en": {
		"about", "after", "all", "also", "and", "any", "are", "because", "been", "before", "being",
		"between", "both", "but", "can", "could", "did", "does", "each", "for", "from", "had", "has",
		"have", "her", "here", "his", "how", "into", "its", "just", "more", "most", "not", "now", "off",
		"one", "only", "other", "our", "out", "over", "she", "should", "some", "such", "than", "that",
		"the", "their", "them", "then", "there", "these", "they", "this", "those", "through", "too",
		"under", "until", "very", "was", "were", "what", "when", "where", "which", "while", "who",
		"why", "will", "with", "would", "you", "your",
	},
}

// chrome lists words of the page chrome itself (section titles, buttons)
// that would otherwise dominate every page.
var chrome = []string{
	"bearbeiten", "edit", "speichern", "save", "abbrechen", "cancel", "kategorie", "category",
	"navigation", "lernziele", "skript", "quiz", "video", "lektionen", "weiterführende", "literatur",
}

// Analytics counts words, ignoring stopwords of the configured languages.
type Analytics struct {
	ignore map[string]struct{}
}

// New returns an Analytics ignoring the stopwords of languages. Without
// languages every known stopword list is used.
func New(languages ...string) *Analytics {
	if len(languages) == 0 {
		for lang := range stopwords {
			languages = append(languages, lang)
		}
	}
	a := &Analytics{ignore: make(map[string]struct{})}
	for _, lang := range languages {
		for _, w := range stopwords[strings.ToLower(lang)] {
			a.ignore[w] = struct{}{}
		}
	}
	for _, w := range chrome {
		a.ignore[w] = struct{}{}
	}
	return a
}

// IsStopword checks if a word is ignored by a.
func (a *Analytics) IsStopword(word string) bool {
	_, exists := a.ignore[strings.ToLower(word)]
	return exists
}

// WordFrequency counts the words of text. Words are lower-cased and trimmed
// of anything that is not a letter or digit.
func (a *Analytics) WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len([]rune(word)) < MinWordLength || a.IsStopword(word) {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

// TopNWords returns the n most frequent words of text, ties broken
// alphabetically.
func (a *Analytics) TopNWords(text string, n int) []string {
	frequencies := a.WordFrequency(text)
	words := make([]string, 0, len(frequencies))
	for w := range frequencies {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if frequencies[words[i]] != frequencies[words[j]] {
			return frequencies[words[i]] > frequencies[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// SectionText returns the visible text of the section region of a rendered
// page, excluding edit forms. Pages without sections yield "".
func SectionText(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}
	sections := doc.Find("#mooc-sections")
	sections.Find("form, script, div.actions").Remove()

	var parts []string
	sections.Find("div.content").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n"), nil
}
