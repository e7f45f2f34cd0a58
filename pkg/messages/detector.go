package messages

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector guesses the language of course text among a fixed set of
// languages.
type Detector struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
	fallback string
}

// NewDetector builds a Detector for the given ISO 639-1 codes. Codes lingua
// does not know are ignored. With fewer than two usable languages every
// detection returns fallback.
func NewDetector(codes []string, fallback string) *Detector {
	d := &Detector{codes: map[lingua.Language]string{}, fallback: fallback}

	var languages []lingua.Language
	for _, code := range codes {
		iso := lingua.GetIsoCode639_1FromValue(strings.ToUpper(code))
		if iso == lingua.UnknownIsoCode639_1 {
			continue
		}
		lang := lingua.GetLanguageFromIsoCode639_1(iso)
		if lang == lingua.Unknown {
			continue
		}
		d.codes[lang] = strings.ToLower(code)
		languages = append(languages, lang)
	}

	if len(languages) >= 2 {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithMinimumRelativeDistance(0.1).
			Build()
	}
	return d
}

// Detect returns the language code of text, or the fallback when the text
// is too short or ambiguous.
func (d *Detector) Detect(text string) string {
	if d.detector == nil || strings.TrimSpace(text) == "" {
		return d.fallback
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return d.fallback
	}
	if code, found := d.codes[lang]; found {
		return code
	}
	return d.fallback
}
