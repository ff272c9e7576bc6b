package model

import "fmt"

// Slice is a piece of a document: a fragment plus the number of ancestor
// levels left open on each side. An open level is a cut path rather than a
// complete node. The zero Slice is empty.
type Slice struct {
	content   Fragment
	openStart int
	openEnd   int
}

// EmptySlice is the identity for replace.
var EmptySlice = Slice{}

// NewSlice builds a slice. The open depths must not exceed the depth of
// containers along the corresponding edge of content.
func NewSlice(content Fragment, openStart, openEnd int) (Slice, error) {
	if openStart < 0 || openStart > openDepth(content, true) {
		return Slice{}, &RangeError{Pos: openStart, Size: openDepth(content, true), Msg: "invalid open start"}
	}
	if openEnd < 0 || openEnd > openDepth(content, false) {
		return Slice{}, &RangeError{Pos: openEnd, Size: openDepth(content, false), Msg: "invalid open end"}
	}
	return Slice{content: content, openStart: openStart, openEnd: openEnd}, nil
}

// openDepth counts the containers along the start or end edge of content.
func openDepth(content Fragment, start bool) int {
	depth := 0
	for {
		var edge *Node
		if start {
			edge = content.FirstChild()
		} else {
			edge = content.LastChild()
		}
		if edge == nil || edge.Kind() != KindContainer {
			return depth
		}
		depth++
		content = edge.content
	}
}

// Content returns the slice's fragment.
func (s Slice) Content() Fragment { return s.content }

// OpenStart returns the open depth at the start.
func (s Slice) OpenStart() int { return s.openStart }

// OpenEnd returns the open depth at the end.
func (s Slice) OpenEnd() int { return s.openEnd }

// Size returns the number of positions the slice adds when inserted.
func (s Slice) Size() int {
	return s.content.size - s.openStart - s.openEnd
}

// Eq reports whether two slices are equal.
func (s Slice) Eq(other Slice) bool {
	return s.content.Eq(other.content) && s.openStart == other.openStart && s.openEnd == other.openEnd
}

// InsertAt returns the slice with fragment inserted at pos, an offset
// relative to the slice's own positions. It reports false when the
// fragment does not fit there.
func (s Slice) InsertAt(pos int, fragment Fragment) (Slice, bool) {
	if pos < 0 || pos > s.Size() {
		return Slice{}, false
	}
	content, ok := insertInto(s.content, pos+s.openStart, fragment, nil)
	if !ok {
		return Slice{}, false
	}
	return Slice{content: content, openStart: s.openStart, openEnd: s.openEnd}, true
}

func insertInto(content Fragment, dist int, insert Fragment, parent *Node) (Fragment, bool) {
	index, offset := content.findIndex(dist)
	child := content.MaybeChild(index)
	if offset == dist || child.IsText() {
		if parent != nil && !parent.CanReplace(index, index, insert, 0, insert.ChildCount()) {
			return Fragment{}, false
		}
		return content.cut(0, dist).Append(insert).Append(content.cutFrom(dist)), true
	}
	if child.Kind() != KindContainer {
		return Fragment{}, false
	}
	inner, ok := insertInto(child.content, dist-offset-1, insert, child)
	if !ok {
		return Fragment{}, false
	}
	return content.ReplaceChild(index, child.Copy(inner)), true
}

// RemoveBetween returns the slice with the flat range [from, to] removed,
// both relative to the slice's own positions.
func (s Slice) RemoveBetween(from, to int) (Slice, error) {
	if from < 0 || to < from || to > s.Size() {
		return Slice{}, &RangeError{Pos: to, Size: s.Size(), Msg: "invalid range to remove"}
	}
	content, err := removeRange(s.content, from+s.openStart, to+s.openStart)
	if err != nil {
		return Slice{}, err
	}
	return Slice{content: content, openStart: s.openStart, openEnd: s.openEnd}, nil
}

func removeRange(content Fragment, from, to int) (Fragment, error) {
	index, offset := content.findIndex(from)
	child := content.MaybeChild(index)
	indexTo, offsetTo := content.findIndex(to)
	if offset == from || child.IsText() {
		if offsetTo != to && !content.Child(indexTo).IsText() {
			return Fragment{}, &RangeError{Pos: to, Msg: "removing non-flat range"}
		}
		return content.cut(0, from).Append(content.cutFrom(to)), nil
	}
	if index != indexTo {
		return Fragment{}, &RangeError{Pos: from, Msg: "removing non-flat range"}
	}
	inner, err := removeRange(child.content, from-offset-1, to-offset-1)
	if err != nil {
		return Fragment{}, err
	}
	return content.ReplaceChild(index, child.Copy(inner)), nil
}

func (s Slice) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.content, s.openStart, s.openEnd)
}

// Slice returns the part of the node's content between from and to. The
// slice is rooted at the deepest ancestor shared by both positions.
func (n *Node) Slice(from, to int) (Slice, error) {
	return n.slice(from, to, false)
}

// SliceWithParents is like Slice but always roots the slice at n, leaving
// every ancestor of the range open.
func (n *Node) SliceWithParents(from, to int) (Slice, error) {
	return n.slice(from, to, true)
}

func (n *Node) slice(from, to int, includeParents bool) (Slice, error) {
	if from > to {
		return Slice{}, &RangeError{Pos: from, Size: n.content.size, Msg: fmt.Sprintf("slice start after end %d", to)}
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return Slice{}, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return Slice{}, err
	}
	if from == to {
		return EmptySlice, nil
	}
	if err := rFrom.checkCut(); err != nil {
		return Slice{}, err
	}
	if err := rTo.checkCut(); err != nil {
		return Slice{}, err
	}
	depth := 0
	if !includeParents {
		depth = rFrom.SharedDepth(to)
	}
	start := rFrom.Start(depth)
	content := rFrom.Node(depth).content.cut(rFrom.pos-start, rTo.pos-start)
	return Slice{content: content, openStart: rFrom.depth - depth, openEnd: rTo.depth - depth}, nil
}
