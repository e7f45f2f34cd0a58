// Package parser decodes stored page text into course items.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/mooc-renderer/models"
	"gopkg.in/yaml.v3"
)

// record mirrors the stored page format. Fields use loose types so shape
// errors can be reported per field instead of as a generic decode failure.
type record struct {
	Type           any `json:"type" yaml:"type"`
	Name           any `json:"name" yaml:"name"`
	Children       any `json:"children" yaml:"children"`
	LearningGoals  any `json:"learning-goals" yaml:"learning-goals"`
	Video          any `json:"video" yaml:"video"`
	Script         any `json:"script" yaml:"script"`
	Quiz           any `json:"quiz" yaml:"quiz"`
	FurtherReading any `json:"further-reading" yaml:"further-reading"`
}

type Parser struct{}

// Parse decodes raw page text into an Item titled id. JSON objects and YAML
// mappings are accepted; unknown fields are ignored.
func (p *Parser) Parse(id models.Identifier, raw string) (*models.Item, error) {
	rec, err := decode(raw)
	if err != nil {
		return nil, &models.MalformedContentError{Identifier: id, Reason: "not a structured record", Err: err}
	}

	item := &models.Item{Title: id}
	fail := func(field string, err error) (*models.Item, error) {
		return nil, &models.MalformedContentError{Identifier: id, Reason: fmt.Sprintf("field %q", field), Err: err}
	}

	typ, err := optionalString(rec.Type)
	if err != nil {
		return fail("type", err)
	}
	item.Type = models.ItemType(strings.ToLower(strings.TrimSpace(typ)))

	if item.Name, err = optionalString(rec.Name); err != nil {
		return fail("name", err)
	}

	if item.Children, err = stringList(rec.Children); err != nil {
		return fail("children", err)
	}
	for i, child := range item.Children {
		if strings.TrimSpace(child) == "" {
			return fail("children", fmt.Errorf("entry %d is empty", i))
		}
	}

	if item.LearningGoals, err = stringList(rec.LearningGoals); err != nil {
		return fail("learning-goals", err)
	}
	if item.FurtherReading, err = stringList(rec.FurtherReading); err != nil {
		return fail("further-reading", err)
	}
	if item.Video, err = optionalString(rec.Video); err != nil {
		return fail("video", err)
	}

	script, err := optionalString(rec.Script)
	if err != nil {
		return fail("script", err)
	}
	if script != "" {
		item.ScriptRef = resolveRef(id, script)
	}
	quiz, err := optionalString(rec.Quiz)
	if err != nil {
		return fail("quiz", err)
	}
	if quiz != "" {
		item.QuizRef = resolveRef(id, quiz)
	}

	return item, nil
}

func decode(raw string) (*record, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty page")
	}

	var rec record
	if strings.HasPrefix(trimmed, "{") {
		dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
		dec.UseNumber()
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid JSON: trailing data after the record")
		}
		return &rec, nil
	}

	dec := yaml.NewDecoder(strings.NewReader(trimmed))
	var node yaml.Node
	if err := dec.Decode(&node); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML: more than one document")
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level is not an object")
	}
	if err := node.Decode(&rec); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return &rec, nil
}

// resolveRef resolves a script or quiz reference like a child name: plain
// names are subpages of the item, a leading ":" marks an absolute title.
func resolveRef(id models.Identifier, ref string) models.Identifier {
	return id.Child(ref)
}

func optionalString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(val), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	out := make([]string, 0, len(list))
	for i, entry := range list {
		s, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected string, got %T", i, entry)
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, nil
}
