package model

import (
	"slices"
	"strconv"
)

// Node is an immutable element of a document tree. Nodes are created through
// NodeType.Create, Schema.Node, Schema.Text or NodeFromJSON and are never
// modified afterwards.
type Node struct {
	typ      *NodeType
	attrs    Attrs
	marks    []Mark
	content  Fragment
	text     string
	nodeSize int
}

func newNode(t *NodeType, attrs Attrs, content Fragment, marks []Mark) *Node {
	n := &Node{typ: t, attrs: attrs, marks: marks, content: content}
	switch t.kind {
	case KindLeaf:
		n.nodeSize = 1
	default:
		n.nodeSize = 2 + content.size
	}
	return n
}

func newTextNode(t *NodeType, text string, marks []Mark) *Node {
	return &Node{typ: t, marks: marks, text: text, nodeSize: utf16Len(text)}
}

// Type returns the node's type.
func (n *Node) Type() *NodeType { return n.typ }

// Kind returns the node's kind.
func (n *Node) Kind() NodeKind { return n.typ.kind }

// Attrs returns the node's attributes. The map must not be modified.
func (n *Node) Attrs() Attrs { return n.attrs }

// Attr returns a single attribute value.
func (n *Node) Attr(name string) any { return n.attrs[name] }

// Marks returns a copy of the node's marks.
func (n *Node) Marks() []Mark { return slices.Clone(n.marks) }

// Text returns the text of a text node.
func (n *Node) Text() string { return n.text }

// Content returns the node's children.
func (n *Node) Content() Fragment { return n.content }

// NodeSize returns the number of positions the node occupies.
func (n *Node) NodeSize() int { return n.nodeSize }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.content.content) }

// Child returns the child at index. It panics if index is out of range.
func (n *Node) Child(index int) *Node { return n.content.Child(index) }

// MaybeChild returns the child at index, or nil.
func (n *Node) MaybeChild(index int) *Node { return n.content.MaybeChild(index) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.content.FirstChild() }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.content.LastChild() }

func (n *Node) IsText() bool      { return n.typ.IsText() }
func (n *Node) IsLeaf() bool      { return n.typ.IsLeaf() }
func (n *Node) IsAtom() bool      { return n.typ.IsAtom() }
func (n *Node) IsBlock() bool     { return n.typ.IsBlock() }
func (n *Node) IsInline() bool    { return n.typ.IsInline() }
func (n *Node) IsTextblock() bool { return n.typ.IsTextblock() }

// Eq reports whether two nodes are structurally equal.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if other == nil || !n.SameMarkup(other) {
		return false
	}
	if n.IsText() {
		return n.text == other.text
	}
	return n.content.Eq(other.content)
}

// SameMarkup reports whether two nodes have the same type, attributes and
// marks.
func (n *Node) SameMarkup(other *Node) bool {
	return n.HasMarkup(other.typ, other.attrs, other.marks)
}

// HasMarkup reports whether the node has the given type, attributes and
// marks. Nil attrs stand for the type's defaults.
func (n *Node) HasMarkup(t *NodeType, attrs Attrs, marks []Mark) bool {
	if attrs == nil {
		attrs = t.defaultAttrs
	}
	return n.typ == t && attrsEqual(n.attrs, attrs) && SameMarkSet(n.marks, marks)
}

// Copy returns a node with the same markup and the given content.
func (n *Node) Copy(content Fragment) *Node {
	if content.size == n.content.size && slices.Equal(content.content, n.content.content) {
		return n
	}
	return newNode(n.typ, n.attrs, content, n.marks)
}

// WithMarks returns a node with the same content and the given marks.
func (n *Node) WithMarks(marks []Mark) *Node {
	if SameMarkSet(n.marks, marks) {
		return n
	}
	if n.IsText() {
		return newTextNode(n.typ, n.text, marks)
	}
	return newNode(n.typ, n.attrs, n.content, marks)
}

func (n *Node) withText(text string) *Node {
	if text == n.text {
		return n
	}
	return newTextNode(n.typ, text, n.marks)
}

// cut assumes valid bounds. For text nodes they are UTF-16 offsets into the
// text, otherwise offsets into the content.
func (n *Node) cut(from, to int) *Node {
	if n.IsText() {
		if from == 0 && to == n.nodeSize {
			return n
		}
		return n.withText(sliceUTF16(n.text, from, to))
	}
	if from == 0 && to == n.content.size {
		return n
	}
	return n.Copy(n.content.cut(from, to))
}

// Cut returns the node with its content limited to [from, to].
func (n *Node) Cut(from, to int) (*Node, error) {
	if n.IsText() {
		if from < 0 || to < from || to > n.nodeSize {
			return nil, &RangeError{Pos: to, Size: n.nodeSize, Msg: "invalid text cut"}
		}
		if from == to {
			return nil, &RangeError{Pos: from, Size: n.nodeSize, Msg: "cut would leave an empty text node"}
		}
		for _, pos := range []int{from, to} {
			if splitsPair(n.text, pos) {
				return nil, &RangeError{Pos: pos, Size: n.nodeSize, Msg: "position splits a surrogate pair"}
			}
		}
		return n.cut(from, to), nil
	}
	content, err := n.content.Cut(from, to)
	if err != nil {
		return nil, err
	}
	return n.Copy(content), nil
}

// TextContent returns the concatenated text of the node.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.text
	}
	return n.content.TextBetween(0, n.content.size, "", "")
}

// TextBetween returns the text between from and to.
func (n *Node) TextBetween(from, to int, blockSeparator, leafText string) string {
	if n.IsText() {
		return sliceUTF16(n.text, from, to)
	}
	return n.content.TextBetween(from, to, blockSeparator, leafText)
}

// NodesBetween calls fn for every descendant overlapping [from, to),
// relative to the node's content. startPos is added to reported positions.
func (n *Node) NodesBetween(from, to int, fn func(node *Node, pos int, parent *Node, index int) bool, startPos int) {
	n.content.NodesBetween(from, to, fn, startPos, n)
}

// Descendants calls fn for every descendant. It does not descend into a node
// when fn returns false.
func (n *Node) Descendants(fn func(node *Node, pos int, parent *Node, index int) bool) {
	n.NodesBetween(0, n.content.size, fn, 0)
}

// NodeAt returns the node starting directly after pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	for node := n; ; {
		if pos < 0 || pos > node.content.size {
			return nil
		}
		index, offset := node.content.findIndex(pos)
		node = node.MaybeChild(index)
		if node == nil {
			return nil
		}
		if offset == pos || node.IsText() {
			return node
		}
		if node.Kind() == KindAtom {
			return nil
		}
		pos -= offset + 1
	}
}

// ContentMatchAt returns the content match state after the child at index,
// or nil if the content up to that child is invalid.
func (n *Node) ContentMatchAt(index int) *ContentMatch {
	return n.typ.contentMatch.MatchFragment(n.content, 0, index)
}

// CanReplace reports whether replacing the children in [from, to) with the
// children of replacement in [start, end) leaves the node's content valid.
func (n *Node) CanReplace(from, to int, replacement Fragment, start, end int) bool {
	match := n.ContentMatchAt(from)
	if match == nil {
		return false
	}
	one := match.MatchFragment(replacement, start, end)
	if one == nil {
		return false
	}
	two := one.MatchFragment(n.content, to, n.ChildCount())
	if two == nil || !two.validEnd {
		return false
	}
	for i := start; i < end; i++ {
		if !n.typ.AllowsMarks(replacement.Child(i).marks) {
			return false
		}
	}
	return true
}

// Check validates the node and all its descendants against the schema.
func (n *Node) Check() error {
	if err := n.typ.checkContent(n.content); err != nil {
		return err
	}
	if n.IsText() && n.text == "" {
		return &ContentMatchError{Type: n.typ.name, Msg: "empty text node"}
	}
	var set []Mark
	for _, m := range n.marks {
		set = m.AddToSet(set)
	}
	if !SameMarkSet(set, n.marks) {
		return &ContentMatchError{Type: n.typ.name, Msg: "invalid collection of marks " + markNames(n.marks)}
	}
	for _, child := range n.content.content {
		if err := child.Check(); err != nil {
			return err
		}
	}
	return nil
}

// close returns a copy of n with content, failing if the content is invalid.
func (n *Node) close(content Fragment) (*Node, error) {
	if err := n.typ.checkContent(content); err != nil {
		return nil, &ReplaceError{Msg: "invalid content for node " + n.typ.name, Err: err}
	}
	return n.Copy(content), nil
}

func (n *Node) String() string {
	var s string
	if n.IsText() {
		s = strconv.Quote(n.text)
	} else {
		s = n.typ.name
		if n.content.size > 0 {
			s += "(" + n.content.toStringInner() + ")"
		}
	}
	for i := len(n.marks) - 1; i >= 0; i-- {
		s = n.marks[i].typ.name + "(" + s + ")"
	}
	return s
}
