package model

import (
	"strconv"
	"strings"
)

// ResolvedPos describes a position in a document: the ancestors enclosing
// it, the index of the child it sits at in each of them, and its offset
// within its parent. It is computed by Node.Resolve and never modified.
type ResolvedPos struct {
	pos          int
	path         []pathEntry
	depth        int
	parentOffset int
}

// pathEntry records an ancestor, the index of the child the position falls
// in, and the absolute position at which that child starts.
type pathEntry struct {
	node   *Node
	index  int
	offset int
}

// Resolve resolves pos into a ResolvedPos. It fails with a RangeError when
// pos lies outside [0, content size]. Resolution does not descend into text
// or atomic nodes: a position inside one resolves to its parent, with the
// offset into the node recorded in ParentOffset.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > n.content.size {
		return nil, &RangeError{Pos: pos, Size: n.content.size}
	}
	var path []pathEntry
	start, parentOffset := 0, pos
	for node := n; ; {
		index, offset := node.content.findIndex(parentOffset)
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		node = node.Child(index)
		switch node.Kind() {
		case KindText, KindAtom:
		default:
			parentOffset = rem - 1
			start += offset + 1
			continue
		}
		break
	}
	return &ResolvedPos{pos: pos, path: path, depth: len(path) - 1, parentOffset: parentOffset}, nil
}

// Pos returns the resolved position.
func (r *ResolvedPos) Pos() int { return r.pos }

// Depth returns the number of ancestors above the position's parent.
func (r *ResolvedPos) Depth() int { return r.depth }

// ParentOffset returns the offset of the position within its parent.
func (r *ResolvedPos) ParentOffset() int { return r.parentOffset }

// Doc returns the root node the position was resolved in.
func (r *ResolvedPos) Doc() *Node { return r.path[0].node }

// Parent returns the innermost node enclosing the position.
func (r *ResolvedPos) Parent() *Node { return r.path[r.depth].node }

// Node returns the ancestor at depth d.
func (r *ResolvedPos) Node(d int) *Node { return r.path[d].node }

// Index returns the child index in the ancestor at depth d.
func (r *ResolvedPos) Index(d int) int { return r.path[d].index }

// IndexAfter returns the index pointing after the position in the ancestor
// at depth d.
func (r *ResolvedPos) IndexAfter(d int) int {
	if d == r.depth && r.innerOffset() == 0 {
		return r.path[d].index
	}
	return r.path[d].index + 1
}

// Start returns the position at the start of the ancestor at depth d.
func (r *ResolvedPos) Start(d int) int {
	if d == 0 {
		return 0
	}
	return r.path[d-1].offset + 1
}

// End returns the position at the end of the ancestor at depth d.
func (r *ResolvedPos) End(d int) int {
	return r.Start(d) + r.path[d].node.content.size
}

// Before returns the position before the ancestor at depth d.
func (r *ResolvedPos) Before(d int) (int, error) {
	if d == 0 {
		return 0, &RangeError{Pos: r.pos, Msg: "there is no position before the top-level node"}
	}
	if d == r.depth+1 {
		return r.pos, nil
	}
	return r.path[d-1].offset, nil
}

// After returns the position after the ancestor at depth d.
func (r *ResolvedPos) After(d int) (int, error) {
	if d == 0 {
		return 0, &RangeError{Pos: r.pos, Msg: "there is no position after the top-level node"}
	}
	if d == r.depth+1 {
		return r.pos, nil
	}
	return r.path[d-1].offset + r.path[d].node.nodeSize, nil
}

// TextOffset returns the offset of the position into the text node it
// points into, or 0 when it sits between nodes.
func (r *ResolvedPos) TextOffset() int {
	if child := r.inside(); child != nil && child.IsText() {
		return r.innerOffset()
	}
	return 0
}

// InsideAtom reports whether the position lies strictly inside an atomic
// node.
func (r *ResolvedPos) InsideAtom() bool {
	child := r.inside()
	return child != nil && child.Kind() == KindAtom
}

// innerOffset is the offset of the position into the child at its index.
func (r *ResolvedPos) innerOffset() int {
	return r.pos - r.path[r.depth].offset
}

// inside returns the text or atomic child the position lies strictly
// inside, or nil.
func (r *ResolvedPos) inside() *Node {
	if r.innerOffset() == 0 {
		return nil
	}
	return r.Parent().MaybeChild(r.Index(r.depth))
}

// checkCut fails when the position cannot bound a cut: strictly inside an
// atomic node, or between the halves of a surrogate pair.
func (r *ResolvedPos) checkCut() error {
	child := r.inside()
	if child == nil {
		return nil
	}
	switch child.Kind() {
	case KindAtom:
		return newReplaceError("cannot cut through atomic node %s", child.typ.name)
	case KindText:
		if splitsPair(child.text, r.innerOffset()) {
			return &RangeError{Pos: r.pos, Size: r.Doc().content.size, Msg: "position splits a surrogate pair"}
		}
	}
	return nil
}

// NodeAfter returns the node directly after the position, or nil. A text
// node the position points into is cut at the position.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.depth)
	if index == parent.ChildCount() {
		return nil
	}
	child := parent.Child(index)
	if off := r.TextOffset(); off > 0 {
		return child.cut(off, child.nodeSize)
	}
	return child
}

// NodeBefore returns the node directly before the position, or nil. A text
// node the position points into is cut at the position.
func (r *ResolvedPos) NodeBefore() *Node {
	index := r.Index(r.depth)
	if off := r.TextOffset(); off > 0 {
		return r.Parent().Child(index).cut(0, off)
	}
	if index == 0 {
		return nil
	}
	return r.Parent().Child(index - 1)
}

// PosAtIndex returns the position at the given child index in the ancestor
// at depth d.
func (r *ResolvedPos) PosAtIndex(index, d int) int {
	node := r.path[d].node
	pos := r.Start(d)
	for i := 0; i < index; i++ {
		pos += node.Child(i).nodeSize
	}
	return pos
}

// SharedDepth returns the depth of the deepest ancestor that also contains
// pos.
func (r *ResolvedPos) SharedDepth(pos int) int {
	for d := r.depth; d > 0; d-- {
		if r.Start(d) <= pos && r.End(d) >= pos {
			return d
		}
	}
	return 0
}

// SameParent reports whether both positions share a parent node.
func (r *ResolvedPos) SameParent(other *ResolvedPos) bool {
	return r.pos-r.parentOffset == other.pos-other.parentOffset
}

// Min returns the smaller of the two positions.
func (r *ResolvedPos) Min(other *ResolvedPos) *ResolvedPos {
	if other.pos < r.pos {
		return other
	}
	return r
}

// Max returns the greater of the two positions.
func (r *ResolvedPos) Max(other *ResolvedPos) *ResolvedPos {
	if other.pos > r.pos {
		return other
	}
	return r
}

func (r *ResolvedPos) String() string {
	var b strings.Builder
	for d := 1; d <= r.depth; d++ {
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(r.Node(d).typ.name)
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(r.Index(d - 1)))
	}
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(r.parentOffset))
	return b.String()
}
