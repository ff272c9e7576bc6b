package model

// ReplaceAround replaces [from, to] with slice while keeping the content of
// [gapFrom, gapTo] intact. The gap is moved into the slice at insert, an
// offset relative to the slice's own positions, and the result is spliced
// in with Replace. With structure set, the ranges [from, gapFrom] and
// [gapTo, to] may only cross node boundaries, never content.
func (n *Node) ReplaceAround(from, to, gapFrom, gapTo, insert int, slice Slice, structure bool) (*Node, error) {
	if from > gapFrom || gapFrom > gapTo || gapTo > to {
		return nil, &ReplaceError{Msg: "invalid gap", Err: &RangeError{Pos: gapFrom, Size: n.content.size, Msg: "gap must lie within the replaced range"}}
	}
	if from < 0 || to > n.content.size {
		return nil, &ReplaceError{Msg: "invalid range", Err: &RangeError{Pos: to, Size: n.content.size}}
	}
	if insert < 0 || insert > slice.Size() {
		return nil, &ReplaceError{Msg: "invalid insert offset", Err: &RangeError{Pos: insert, Size: slice.Size()}}
	}
	if structure {
		before, err := n.ContentBetween(from, gapFrom)
		if err != nil {
			return nil, &ReplaceError{Msg: "invalid gap", Err: err}
		}
		after, err := n.ContentBetween(gapTo, to)
		if err != nil {
			return nil, &ReplaceError{Msg: "invalid gap", Err: err}
		}
		if before || after {
			return nil, newReplaceError("gap crosses node boundary")
		}
	}
	gap, err := n.Slice(gapFrom, gapTo)
	if err != nil {
		return nil, &ReplaceError{Msg: "invalid gap", Err: err}
	}
	if gap.openStart != 0 || gap.openEnd != 0 {
		return nil, newReplaceError("gap is not a flat range")
	}
	inserted, ok := slice.InsertAt(insert, gap.content)
	if !ok {
		return nil, newReplaceError("gap content does not fit at insert offset %d", insert)
	}
	return n.Replace(from, to, inserted)
}

// ContentBetween reports whether [from, to] covers anything other than
// node boundaries: text, leaf nodes, or more closing and opening tokens than
// the nodes there have.
func (n *Node) ContentBetween(from, to int) (bool, error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return false, err
	}
	dist := to - from
	depth := rFrom.depth
	for dist > 0 && depth > 0 && rFrom.IndexAfter(depth) == rFrom.Node(depth).ChildCount() {
		depth--
		dist--
	}
	if dist > 0 {
		next := rFrom.Node(depth).MaybeChild(rFrom.IndexAfter(depth))
		for dist > 0 {
			if next == nil || next.IsLeaf() {
				return true, nil
			}
			next = next.FirstChild()
			dist--
		}
	}
	return false, nil
}
