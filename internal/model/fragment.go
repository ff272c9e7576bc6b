package model

import (
	"slices"
	"strings"
)

// Fragment is an immutable ordered sequence of sibling nodes with a cached
// total size. The zero Fragment is empty.
type Fragment struct {
	content []*Node
	size    int
}

// NewFragment builds a fragment from nodes. Adjacent text nodes with the
// same marks are joined.
func NewFragment(nodes ...*Node) Fragment {
	if len(nodes) == 0 {
		return Fragment{}
	}
	var joined []*Node
	for _, n := range nodes {
		joined = addNode(joined, n)
	}
	return fragmentOf(joined)
}

// fragmentOf wraps content that is already normalized.
func fragmentOf(content []*Node) Fragment {
	size := 0
	for _, n := range content {
		size += n.nodeSize
	}
	return Fragment{content: content, size: size}
}

// Size returns the total size of the fragment's children.
func (f Fragment) Size() int { return f.size }

// ChildCount returns the number of children.
func (f Fragment) ChildCount() int { return len(f.content) }

// Child returns the child at index. It panics if index is out of range.
func (f Fragment) Child(index int) *Node { return f.content[index] }

// MaybeChild returns the child at index, or nil.
func (f Fragment) MaybeChild(index int) *Node {
	if index < 0 || index >= len(f.content) {
		return nil
	}
	return f.content[index]
}

// FirstChild returns the first child, or nil.
func (f Fragment) FirstChild() *Node { return f.MaybeChild(0) }

// LastChild returns the last child, or nil.
func (f Fragment) LastChild() *Node { return f.MaybeChild(len(f.content) - 1) }

// Nodes returns a copy of the children.
func (f Fragment) Nodes() []*Node { return slices.Clone(f.content) }

// ForEach calls fn for each child with its offset and index.
func (f Fragment) ForEach(fn func(child *Node, offset, index int)) {
	pos := 0
	for i, c := range f.content {
		fn(c, pos, i)
		pos += c.nodeSize
	}
}

// Eq reports whether two fragments hold equal nodes.
func (f Fragment) Eq(other Fragment) bool {
	return f.size == other.size && slices.EqualFunc(f.content, other.content, (*Node).Eq)
}

// Append concatenates two fragments, joining touching text nodes with the
// same marks.
func (f Fragment) Append(other Fragment) Fragment {
	if other.size == 0 {
		return f
	}
	if f.size == 0 {
		return other
	}
	last, first := f.content[len(f.content)-1], other.content[0]
	content := slices.Clone(f.content)
	i := 0
	if last.IsText() && last.SameMarkup(first) {
		content[len(content)-1] = last.withText(last.text + first.text)
		i = 1
	}
	content = append(content, other.content[i:]...)
	return fragmentOf(content)
}

// AddToStart returns the fragment with node prepended.
func (f Fragment) AddToStart(node *Node) Fragment {
	return fragmentOf(slices.Concat([]*Node{node}, f.content))
}

// AddToEnd returns the fragment with node appended.
func (f Fragment) AddToEnd(node *Node) Fragment {
	return fragmentOf(slices.Concat(f.content, []*Node{node}))
}

// ReplaceChild returns the fragment with the child at index replaced.
func (f Fragment) ReplaceChild(index int, node *Node) Fragment {
	cur := f.content[index]
	if cur == node {
		return f
	}
	content := slices.Clone(f.content)
	content[index] = node
	return Fragment{content: content, size: f.size + node.nodeSize - cur.nodeSize}
}

// Cut returns the part of the fragment between from and to. It fails with a
// RangeError when the bounds are invalid or split a surrogate pair, and with
// a ReplaceError when a bound falls inside an atomic node.
func (f Fragment) Cut(from, to int) (Fragment, error) {
	if from < 0 || from > f.size {
		return Fragment{}, &RangeError{Pos: from, Size: f.size}
	}
	if to < from || to > f.size {
		return Fragment{}, &RangeError{Pos: to, Size: f.size, Msg: "cut end before start or past fragment end"}
	}
	if err := f.checkCut(from); err != nil {
		return Fragment{}, err
	}
	if err := f.checkCut(to); err != nil {
		return Fragment{}, err
	}
	return f.cut(from, to), nil
}

// checkCut fails if pos falls strictly inside an atomic node or between the
// halves of a surrogate pair.
func (f Fragment) checkCut(pos int) error {
	start := 0
	for _, child := range f.content {
		end := start + child.nodeSize
		if pos > start && pos < end {
			switch child.Kind() {
			case KindAtom:
				return newReplaceError("cannot cut through atomic node %s", child.typ.name)
			case KindContainer:
				return child.content.checkCut(pos - start - 1)
			case KindText:
				if splitsPair(child.text, pos-start) {
					return &RangeError{Pos: pos, Size: f.size, Msg: "position splits a surrogate pair"}
				}
			}
			return nil
		}
		if end >= pos {
			return nil
		}
		start = end
	}
	return nil
}

// cut assumes valid bounds.
func (f Fragment) cut(from, to int) Fragment {
	if from == 0 && to == f.size {
		return f
	}
	var result []*Node
	size := 0
	if to > from {
		pos := 0
		for i := 0; pos < to; i++ {
			child := f.content[i]
			end := pos + child.nodeSize
			if end > from {
				if pos < from || end > to {
					if child.IsText() {
						child = child.cut(max(0, from-pos), min(child.nodeSize, to-pos))
					} else {
						child = child.cut(max(0, from-pos-1), min(child.content.size, to-pos-1))
					}
				}
				result = append(result, child)
				size += child.nodeSize
			}
			pos = end
		}
	}
	return Fragment{content: result, size: size}
}

// cutFrom returns the fragment from pos to the end.
func (f Fragment) cutFrom(from int) Fragment {
	return f.cut(from, f.size)
}

// findIndex returns the index of the child containing pos and that child's
// offset. At a boundary between children it returns the child after it.
// pos must be within [0, size].
func (f Fragment) findIndex(pos int) (index, offset int) {
	if pos == 0 {
		return 0, 0
	}
	if pos == f.size {
		return len(f.content), pos
	}
	cur := 0
	for i, child := range f.content {
		end := cur + child.nodeSize
		if end >= pos {
			if end == pos {
				return i + 1, end
			}
			return i, cur
		}
		cur = end
	}
	return len(f.content), f.size
}

// FindIndex returns the index and offset of the child at pos.
func (f Fragment) FindIndex(pos int) (index, offset int, err error) {
	if pos < 0 || pos > f.size {
		return 0, 0, &RangeError{Pos: pos, Size: f.size}
	}
	index, offset = f.findIndex(pos)
	return index, offset, nil
}

// NodesBetween calls fn for every node overlapping [from, to), descending
// into a node's children unless fn returns false. nodeStart is the absolute
// position of the fragment's start and parent its owner.
func (f Fragment) NodesBetween(from, to int, fn func(node *Node, pos int, parent *Node, index int) bool, nodeStart int, parent *Node) {
	pos := 0
	for i := 0; pos < to && i < len(f.content); i++ {
		child := f.content[i]
		end := pos + child.nodeSize
		if end > from && fn(child, nodeStart+pos, parent, i) && child.content.size > 0 {
			start := pos + 1
			child.NodesBetween(max(0, from-start), min(child.content.size, to-start), fn, nodeStart+start)
		}
		pos = end
	}
}

// Descendants calls fn for every node in the fragment, recursively.
func (f Fragment) Descendants(fn func(node *Node, pos int, parent *Node, index int) bool) {
	f.NodesBetween(0, f.size, fn, 0, nil)
}

// TextBetween returns the text between from and to. blockSeparator is
// inserted between block nodes and leafText stands in for inline leaves.
func (f Fragment) TextBetween(from, to int, blockSeparator, leafText string) string {
	var b strings.Builder
	first := true
	f.NodesBetween(from, to, func(node *Node, pos int, _ *Node, _ int) bool {
		nodeText := ""
		switch {
		case node.IsText():
			nodeText = sliceUTF16(node.text, max(from, pos)-pos, to-pos)
		case node.IsLeaf():
			nodeText = leafText
		}
		if blockSeparator != "" && node.IsBlock() && (node.IsLeaf() && nodeText != "" || node.IsTextblock()) {
			if first {
				first = false
			} else {
				b.WriteString(blockSeparator)
			}
		}
		b.WriteString(nodeText)
		return true
	}, 0, nil)
	return b.String()
}

func (f Fragment) String() string {
	return "<" + f.toStringInner() + ">"
}

func (f Fragment) toStringInner() string {
	parts := make([]string, len(f.content))
	for i, n := range f.content {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

// addNode appends child to content, joining it onto a preceding text node
// with the same marks.
func addNode(content []*Node, child *Node) []*Node {
	last := len(content) - 1
	if last >= 0 && child.IsText() && child.SameMarkup(content[last]) {
		content[last] = child.withText(content[last].text + child.text)
		return content
	}
	return append(content, child)
}
