package rcpkg

import (
	"errors"
	"fmt"
	"strings"

	"canticle/internal/store"
)

// ContainerType classifies a resource container.
type ContainerType string

const (
	// TypeBook is a single-book container with a chapter/verse tree.
	TypeBook ContainerType = "book"
	// TypeBundle is a multi-project container (e.g. a whole Bible).
	TypeBundle ContainerType = "bundle"
	// TypeHelp carries helper resources (notes, questions) that anchor onto
	// an existing book.
	TypeHelp ContainerType = "help"
)

// Language identifies the container language.
type Language struct {
	Slug      string
	Name      string
	Direction string
}

// Metadata carries the container's Dublin Core fields.
type Metadata struct {
	ConformsTo  string
	Creator     string
	Description string
	Format      string
	Identifier  string
	Issued      string
	Modified    string
	Publisher   string
	Subject     string
	Type        string
	Title       string
	Version     string
}

// Relation names another container this one annotates or accompanies,
// declared as "languageSlug/identifier" in the source manifest.
type Relation struct {
	Language   string
	Identifier string
}

// ParseRelation splits a declared relation string.
func ParseRelation(raw string) (Relation, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Relation{}, fmt.Errorf("malformed relation %q: want languageSlug/identifier", raw)
	}
	return Relation{Language: parts[0], Identifier: parts[1]}, nil
}

// ParseRelations parses every declared relation, rejecting the whole set on
// the first malformed entry.
func ParseRelations(raw []string) ([]Relation, error) {
	out := make([]Relation, 0, len(raw))
	for _, entry := range raw {
		rel, err := ParseRelation(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// CollectionSpec describes a collection node of a parsed container tree.
type CollectionSpec struct {
	Slug  string
	Title string
	Label string
	Sort  int64
}

// ContentSpec describes a content leaf of a parsed container tree.
type ContentSpec struct {
	Sort   int64
	Start  int64
	Label  string
	Text   string
	Format string
	Type   store.ContentType
}

// Node is one node of a parsed container tree: either a collection node with
// children or a content leaf, never both.
type Node struct {
	Collection *CollectionSpec
	Content    *ContentSpec
	Children   []*Node
}

// NewCollectionNode builds a collection node.
func NewCollectionNode(spec CollectionSpec, children ...*Node) *Node {
	return &Node{Collection: &spec, Children: children}
}

// NewContentNode builds a content leaf.
func NewContentNode(spec ContentSpec) *Node {
	return &Node{Content: &spec}
}

// Package is one parsed resource container ready for import.
type Package struct {
	Path      string
	Type      ContainerType
	Language  Language
	Metadata  Metadata
	Relations []Relation
	Root      *Node
}

// Validate checks structural requirements before the importer touches the
// store.
func (p *Package) Validate() error {
	if p.Metadata.Identifier == "" {
		return errors.New("package identifier must be set")
	}
	if p.Language.Slug == "" {
		return errors.New("package language slug must be set")
	}
	switch p.Type {
	case TypeBook, TypeBundle, TypeHelp:
	default:
		return fmt.Errorf("unknown container type %q", p.Type)
	}
	if p.Root == nil {
		return errors.New("package tree must be set")
	}
	return validateNode(p.Root)
}

func validateNode(n *Node) error {
	if n.Collection != nil && n.Content != nil {
		return errors.New("tree node cannot be both collection and content")
	}
	if n.Collection == nil && n.Content == nil {
		return errors.New("tree node must be a collection or a content leaf")
	}
	if n.Content != nil && len(n.Children) > 0 {
		return errors.New("content leaf cannot have children")
	}
	for _, child := range n.Children {
		if err := validateNode(child); err != nil {
			return err
		}
	}
	return nil
}
