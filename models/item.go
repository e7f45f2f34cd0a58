package models

import "strings"

// ItemType discriminates which section renderer applies to an item.
type ItemType string

const (
	ItemTypeNone   ItemType = ""
	ItemTypeUnit   ItemType = "unit"
	ItemTypeLesson ItemType = "lesson"
)

// Item is one node of course content as stored on its page.
type Item struct {
	Title Identifier `json:"title" yaml:"title"`
	// Name overrides the display name derived from the title.
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Type     ItemType `json:"type,omitempty" yaml:"type,omitempty"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`

	LearningGoals  []string   `json:"learning-goals,omitempty" yaml:"learning-goals,omitempty"`
	Video          string     `json:"video,omitempty" yaml:"video,omitempty"`
	ScriptRef      Identifier `json:"script,omitempty" yaml:"script,omitempty"`
	QuizRef        Identifier `json:"quiz,omitempty" yaml:"quiz,omitempty"`
	FurtherReading []string   `json:"further-reading,omitempty" yaml:"further-reading,omitempty"`
}

// DisplayName returns the explicit name or, when unset, the last segment of
// the title.
func (it *Item) DisplayName() string {
	if name := strings.TrimSpace(it.Name); name != "" {
		return name
	}
	return it.Title.Subpage()
}

// URL returns the display URL for the item's page.
func (it *Item) URL(linkBase string) string {
	if it.Title == "" {
		return ""
	}
	return it.Title.URL(linkBase)
}

// HasChildren reports whether the item declares any children.
func (it *Item) HasChildren() bool {
	return len(it.Children) > 0
}

// ChildIdentifiers resolves the declared child names in declared order.
func (it *Item) ChildIdentifiers() []Identifier {
	ids := make([]Identifier, len(it.Children))
	for i, name := range it.Children {
		ids[i] = it.Title.Child(name)
	}
	return ids
}

// Script returns the page transcluded as the item's script.
func (it *Item) Script() Identifier {
	if it.ScriptRef != "" {
		return it.ScriptRef
	}
	return it.Title.Child("script")
}

// Quiz returns the page transcluded as the item's quiz.
func (it *Item) Quiz() Identifier {
	if it.QuizRef != "" {
		return it.QuizRef
	}
	return it.Title.Child("quiz")
}

// EditValues returns the raw section values mirrored into the client edit
// forms.
func (it *Item) EditValues() map[string]any {
	values := map[string]any{
		"learning-goals":  nonNil(it.LearningGoals),
		"further-reading": nonNil(it.FurtherReading),
	}
	if it.Video != "" {
		values["video"] = it.Video
	}
	return values
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// StructureNode pairs an item with its resolved children. Nodes are built
// by a single resolution pass and are not modified afterwards.
type StructureNode struct {
	Item     *Item
	Children []*StructureNode
}

// Identifier returns the title of the wrapped item.
func (n *StructureNode) Identifier() Identifier {
	return n.Item.Title
}

// Walk visits the tree depth-first in declared order. Returning false from
// fn stops descending into that node's children.
func (n *StructureNode) Walk(fn func(node *StructureNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *StructureNode) walk(fn func(*StructureNode, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Find returns the first node with the given identifier in pre-order.
func (n *StructureNode) Find(id Identifier) *StructureNode {
	var found *StructureNode
	n.Walk(func(node *StructureNode, _ int) bool {
		if found != nil {
			return false
		}
		if node.Identifier() == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Flatten returns all nodes in pre-order.
func (n *StructureNode) Flatten() []*StructureNode {
	var nodes []*StructureNode
	n.Walk(func(node *StructureNode, _ int) bool {
		nodes = append(nodes, node)
		return true
	})
	return nodes
}

// Count returns the number of nodes in the tree.
func (n *StructureNode) Count() int {
	return len(n.Flatten())
}

// Neighbours returns the nodes before and after id in pre-order, either of
// which may be nil.
func (n *StructureNode) Neighbours(id Identifier) (prev, next *StructureNode) {
	nodes := n.Flatten()
	for i, node := range nodes {
		if node.Identifier() != id {
			continue
		}
		if i > 0 {
			prev = nodes[i-1]
		}
		if i+1 < len(nodes) {
			next = nodes[i+1]
		}
		return prev, next
	}
	return nil, nil
}
