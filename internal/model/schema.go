package model

import (
	"cmp"
	"strings"
)

// SchemaSpec describes the node and mark types of a Schema. Order matters:
// it decides precedence in groups and mark rank.
type SchemaSpec struct {
	Nodes []NodeSpec
	Marks []MarkSpec

	// TopNode names the type of document roots. Defaults to "doc".
	TopNode string
}

// Schema is a compiled set of node and mark types. It is immutable once
// built and may be shared freely.
type Schema struct {
	spec      SchemaSpec
	nodes     map[string]*NodeType
	nodeOrder []*NodeType
	marks     map[string]*MarkType
	markOrder []*MarkType
	topNode   *NodeType
	text      *NodeType
}

// NewSchema compiles spec into a Schema.
func NewSchema(spec SchemaSpec) (*Schema, error) {
	s := &Schema{
		spec:  spec,
		nodes: make(map[string]*NodeType, len(spec.Nodes)),
		marks: make(map[string]*MarkType, len(spec.Marks)),
	}

	for _, ns := range spec.Nodes {
		if ns.Name == "" {
			return nil, &SchemaValidationError{Msg: "node type without a name"}
		}
		if _, dup := s.nodes[ns.Name]; dup {
			return nil, &SchemaValidationError{Msg: "duplicate node type " + ns.Name}
		}
		t := &NodeType{
			name:   ns.Name,
			schema: s,
			spec:   ns,
			groups: strings.Fields(ns.Group),
			block:  !ns.Inline && ns.Name != "text",
			attrs:  ns.Attrs,
		}
		t.defaultAttrs = defaultAttrs(ns.Attrs)
		s.nodes[ns.Name] = t
		s.nodeOrder = append(s.nodeOrder, t)
	}

	topName := cmp.Or(spec.TopNode, "doc")
	s.topNode = s.nodes[topName]
	if s.topNode == nil {
		return nil, &SchemaValidationError{Msg: "schema is missing its top node type " + topName}
	}
	s.text = s.nodes["text"]
	if s.text == nil {
		return nil, &SchemaValidationError{Msg: "every schema needs a 'text' type"}
	}
	if len(s.text.attrs) > 0 {
		return nil, &SchemaValidationError{Msg: "the text node type should not have attributes"}
	}
	s.text.kind = KindText
	s.text.contentMatch = emptyMatch

	for i, ms := range spec.Marks {
		if ms.Name == "" {
			return nil, &SchemaValidationError{Msg: "mark type without a name"}
		}
		if _, dup := s.marks[ms.Name]; dup {
			return nil, &SchemaValidationError{Msg: "duplicate mark type " + ms.Name}
		}
		mt := &MarkType{name: ms.Name, rank: i, schema: s, spec: ms, attrs: ms.Attrs}
		if defaults := defaultAttrs(ms.Attrs); defaults != nil {
			mt.instance = &Mark{typ: mt, attrs: defaults}
		}
		s.marks[ms.Name] = mt
		s.markOrder = append(s.markOrder, mt)
	}

	matchCache := make(map[string]*ContentMatch)
	for _, t := range s.nodeOrder {
		if t == s.text {
			continue
		}
		expr := t.spec.Content
		match, ok := matchCache[expr]
		if !ok {
			var err error
			match, err = parseContentMatch(expr, s.nodes, s.nodeOrder)
			if err != nil {
				return nil, &SchemaValidationError{Path: "nodes." + t.name, Msg: "invalid content expression", Err: err}
			}
			matchCache[expr] = match
		}
		t.contentMatch = match
		t.inlineContent = match.InlineContent()

		switch {
		case match == emptyMatch:
			t.kind = KindLeaf
		case t.spec.Atom:
			t.kind = KindAtom
		default:
			t.kind = KindContainer
		}

		switch {
		case t.spec.Marks != nil && *t.spec.Marks == "_":
			t.markSet = nil
		case t.spec.Marks != nil && *t.spec.Marks != "":
			set, err := gatherMarks(s, *t.spec.Marks)
			if err != nil {
				return nil, &SchemaValidationError{Path: "nodes." + t.name, Msg: "invalid marks", Err: err}
			}
			t.markSet = set
		case t.spec.Marks != nil || !t.inlineContent:
			t.markSet = []*MarkType{}
		default:
			t.markSet = nil
		}
	}

	for _, mt := range s.markOrder {
		switch {
		case mt.spec.Excludes == nil:
			mt.excluded = []*MarkType{mt}
		case *mt.spec.Excludes == "":
			mt.excluded = nil
		default:
			set, err := gatherMarks(s, *mt.spec.Excludes)
			if err != nil {
				return nil, &SchemaValidationError{Path: "marks." + mt.name, Msg: "invalid excludes", Err: err}
			}
			mt.excluded = set
		}
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error. It is meant for
// schemas defined in code.
func MustSchema(spec SchemaSpec) *Schema {
	s, err := NewSchema(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Spec returns the spec the schema was built from.
func (s *Schema) Spec() SchemaSpec { return s.spec }

// TopNodeType returns the type of document roots.
func (s *Schema) TopNodeType() *NodeType { return s.topNode }

// NodeType returns the node type with the given name, or nil.
func (s *Schema) NodeType(name string) *NodeType { return s.nodes[name] }

// MarkType returns the mark type with the given name, or nil.
func (s *Schema) MarkType(name string) *MarkType { return s.marks[name] }

// NodeTypes returns the node types in spec order.
func (s *Schema) NodeTypes() []*NodeType {
	return append([]*NodeType(nil), s.nodeOrder...)
}

// MarkTypes returns the mark types in rank order.
func (s *Schema) MarkTypes() []*MarkType {
	return append([]*MarkType(nil), s.markOrder...)
}

// Node creates a node of the named type.
func (s *Schema) Node(name string, attrs Attrs, content Fragment, marks ...Mark) (*Node, error) {
	t := s.nodes[name]
	if t == nil {
		return nil, &SchemaValidationError{Msg: "unknown node type " + name}
	}
	return t.Create(attrs, content, marks)
}

// Text creates a text node. Empty text is not allowed.
func (s *Schema) Text(text string, marks ...Mark) (*Node, error) {
	if text == "" {
		return nil, &SchemaValidationError{Msg: "empty text nodes are not allowed"}
	}
	return newTextNode(s.text, text, MarkSetFrom(marks)), nil
}

// Mark creates a mark of the named type.
func (s *Schema) Mark(name string, attrs Attrs) (Mark, error) {
	t := s.marks[name]
	if t == nil {
		return Mark{}, &SchemaValidationError{Msg: "unknown mark type " + name}
	}
	return t.Create(attrs)
}
