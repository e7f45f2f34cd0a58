package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPageNotFound is returned by content stores for identifiers without a
// stored page.
var ErrPageNotFound = errors.New("page not found")

// NotFoundError reports a referenced identifier without stored content.
type NotFoundError struct {
	Identifier Identifier
	// Parent is the item that referenced the missing page, if any.
	Parent Identifier
}

func (e *NotFoundError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("not found: %q (referenced by %q)", e.Identifier, e.Parent)
	}
	return fmt.Sprintf("not found: %q", e.Identifier)
}

func (e *NotFoundError) Unwrap() error {
	return ErrPageNotFound
}

// CycleError reports a child reference that resolves to one of its
// ancestors.
type CycleError struct {
	Identifier Identifier
	Path       []Identifier
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Path)+1)
	for _, id := range e.Path {
		parts = append(parts, string(id))
	}
	parts = append(parts, string(e.Identifier))
	return fmt.Sprintf("cycle: %q is its own ancestor (%s)", e.Identifier, strings.Join(parts, " -> "))
}

// MalformedContentError reports page text that does not decode into an item.
type MalformedContentError struct {
	Identifier Identifier
	Reason     string
	Err        error
}

func (e *MalformedContentError) Error() string {
	msg := fmt.Sprintf("malformed content in %q: %s", e.Identifier, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedContentError) Unwrap() error {
	return e.Err
}

// UnknownItemTypeError reports an item without a registered section
// renderer.
type UnknownItemTypeError struct {
	Identifier Identifier
	Type       ItemType
}

func (e *UnknownItemTypeError) Error() string {
	if e.Type == ItemTypeNone {
		return fmt.Sprintf("unknown item type: %q has no type", e.Identifier)
	}
	return fmt.Sprintf("unknown item type: %q has type %q", e.Identifier, e.Type)
}

// ErrorKind returns a short machine-readable kind for err, used in logs and
// manifests.
func ErrorKind(err error) string {
	var (
		notFound  *NotFoundError
		cycle     *CycleError
		malformed *MalformedContentError
		unknown   *UnknownItemTypeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cycle):
		return "cycle"
	case errors.As(err, &malformed):
		return "malformed_content"
	case errors.As(err, &unknown):
		return "unknown_item_type"
	case errors.As(err, &notFound), errors.Is(err, ErrPageNotFound):
		return "not_found"
	}
	return "render_error"
}
