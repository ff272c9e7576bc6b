package model

import (
	"slices"
	"strings"
)

// NodeKind classifies how a node holds content and is addressed.
type NodeKind uint8

const (
	// KindContainer nodes hold addressable child content.
	KindContainer NodeKind = iota
	// KindText nodes hold literal text.
	KindText
	// KindLeaf nodes hold nothing and occupy one position.
	KindLeaf
	// KindAtom nodes hold content that cannot be addressed or cut into.
	KindAtom
)

func (k NodeKind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindText:
		return "text"
	case KindLeaf:
		return "leaf"
	case KindAtom:
		return "atom"
	}
	return "unknown"
}

// NodeSpec describes a node type.
type NodeSpec struct {
	Name string

	// Content is the content expression, e.g. "paragraph+" or "inline*".
	// Empty means the node is a leaf.
	Content string

	// Marks lists the mark names or groups allowed inside this node. "_"
	// allows all marks and "" allows none. Nil allows all marks when the
	// node has inline content and none otherwise.
	Marks *string

	// Group is a space-separated list of groups the node belongs to.
	Group string

	Inline bool

	// Atom makes a node with content behave as a single unit: positions
	// inside it cannot be resolved and ranges cannot cut into it.
	Atom bool

	Attrs map[string]AttributeSpec
}

// NodeType is a kind of node defined by a Schema.
type NodeType struct {
	name          string
	schema        *Schema
	spec          NodeSpec
	kind          NodeKind
	groups        []string
	block         bool
	attrs         map[string]AttributeSpec
	defaultAttrs  Attrs
	contentMatch  *ContentMatch
	inlineContent bool
	markSet       []*MarkType // nil allows all marks
}

// Name returns the type's name.
func (t *NodeType) Name() string { return t.name }

// Schema returns the schema the type belongs to.
func (t *NodeType) Schema() *Schema { return t.schema }

// Spec returns the spec the type was built from.
func (t *NodeType) Spec() NodeSpec { return t.spec }

// Kind returns the type's node kind.
func (t *NodeType) Kind() NodeKind { return t.kind }

// Groups returns the groups the type belongs to.
func (t *NodeType) Groups() []string { return slices.Clone(t.groups) }

// ContentMatch returns the start state of the type's content expression.
func (t *NodeType) ContentMatch() *ContentMatch { return t.contentMatch }

// IsText reports whether this is the text type.
func (t *NodeType) IsText() bool { return t.kind == KindText }

// IsLeaf reports whether nodes of this type have no child content.
func (t *NodeType) IsLeaf() bool { return t.kind == KindLeaf || t.kind == KindText }

// IsAtom reports whether nodes of this type are treated as a single unit.
func (t *NodeType) IsAtom() bool { return t.kind == KindLeaf || t.kind == KindAtom }

// IsBlock reports whether this is a block type.
func (t *NodeType) IsBlock() bool { return t.block }

// IsInline reports whether this is an inline type.
func (t *NodeType) IsInline() bool { return !t.block }

// IsTextblock reports whether this is a block type with inline content.
func (t *NodeType) IsTextblock() bool { return t.block && t.inlineContent }

// InlineContent reports whether the type expects inline content.
func (t *NodeType) InlineContent() bool { return t.inlineContent }

// HasRequiredAttrs reports whether any attribute lacks a default.
func (t *NodeType) HasRequiredAttrs() bool {
	for _, a := range t.attrs {
		if !a.HasDefault {
			return true
		}
	}
	return false
}

// CompatibleContent reports whether the two types can share content.
func (t *NodeType) CompatibleContent(other *NodeType) bool {
	return t == other || t.contentMatch.Compatible(other.contentMatch)
}

// AllowsMarkType reports whether marks of type mt may appear in this node.
func (t *NodeType) AllowsMarkType(mt *MarkType) bool {
	return t.markSet == nil || slices.Contains(t.markSet, mt)
}

// AllowsMarks reports whether all the given marks may appear in this node.
func (t *NodeType) AllowsMarks(marks []Mark) bool {
	if t.markSet == nil {
		return true
	}
	for _, m := range marks {
		if !t.AllowsMarkType(m.typ) {
			return false
		}
	}
	return true
}

// ValidContent reports whether content satisfies the type's content rules.
func (t *NodeType) ValidContent(content Fragment) bool {
	return t.checkContent(content) == nil
}

// CheckContent returns a ContentMatchError if content is not valid for the
// type.
func (t *NodeType) CheckContent(content Fragment) error {
	return t.checkContent(content)
}

func (t *NodeType) checkContent(content Fragment) error {
	if t.kind == KindText {
		return nil
	}
	if t.kind == KindLeaf && content.Size() > 0 {
		return &ContentMatchError{Type: t.name, Msg: "leaf node cannot have content"}
	}
	result := t.contentMatch.MatchFragment(content, 0, content.ChildCount())
	if result == nil {
		return &ContentMatchError{Type: t.name, Msg: "unexpected child in " + content.String()}
	}
	if !result.validEnd {
		return &ContentMatchError{Type: t.name, Msg: "incomplete content " + content.String()}
	}
	for _, child := range content.content {
		if !t.AllowsMarks(child.marks) {
			return &ContentMatchError{Type: t.name, Msg: "marks " + markNames(child.marks) + " not allowed"}
		}
	}
	return nil
}

// Create builds a node of this type after validating attributes, content
// and marks.
func (t *NodeType) Create(attrs Attrs, content Fragment, marks []Mark) (*Node, error) {
	if t.kind == KindText {
		return nil, &SchemaValidationError{Msg: "text nodes are created with Schema.Text"}
	}
	computed, err := t.computeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	if err := t.checkContent(content); err != nil {
		return nil, err
	}
	return newNode(t, computed, content, MarkSetFrom(marks)), nil
}

func (t *NodeType) computeAttrs(attrs Attrs) (Attrs, error) {
	if len(attrs) == 0 && t.defaultAttrs != nil {
		return t.defaultAttrs, nil
	}
	return computeAttrs("node "+t.name, t.attrs, attrs)
}

func markNames(marks []Mark) string {
	names := make([]string, len(marks))
	for i, m := range marks {
		names[i] = m.typ.name
	}
	return "[" + strings.Join(names, ", ") + "]"
}
