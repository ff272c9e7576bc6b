package model

// Replace returns a copy of the document with [from, to] replaced by slice.
// The slice's open sides are joined into the nodes at from and to, so they
// must fit there: the depth at which content is placed is from's depth
// minus slice.OpenStart, and must equal to's depth minus slice.OpenEnd.
// Every rebuilt node is validated against its content expression.
func (n *Node) Replace(from, to int, slice Slice) (*Node, error) {
	if from > to {
		return nil, &ReplaceError{Msg: "invalid range", Err: &RangeError{Pos: from, Size: n.content.size, Msg: "replace start after end"}}
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, &ReplaceError{Msg: "invalid start position", Err: err}
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, &ReplaceError{Msg: "invalid end position", Err: err}
	}
	if err := rFrom.checkCut(); err != nil {
		return nil, err
	}
	if err := rTo.checkCut(); err != nil {
		return nil, err
	}
	return replace(rFrom, rTo, slice)
}

func replace(from, to *ResolvedPos, slice Slice) (*Node, error) {
	if slice.openStart > from.depth {
		return nil, newReplaceError("inserted content deeper than insertion position")
	}
	if from.depth-slice.openStart != to.depth-slice.openEnd {
		return nil, newReplaceError("inconsistent open depths")
	}
	return replaceOuter(from, to, slice, 0)
}

func replaceOuter(from, to *ResolvedPos, slice Slice, depth int) (*Node, error) {
	index := from.Index(depth)
	node := from.Node(depth)
	switch {
	case index == to.Index(depth) && depth < from.depth-slice.openStart:
		inner, err := replaceOuter(from, to, slice, depth+1)
		if err != nil {
			return nil, err
		}
		return node.Copy(node.content.ReplaceChild(index, inner)), nil

	case slice.content.size == 0:
		content, err := replaceTwoWay(from, to, depth)
		if err != nil {
			return nil, err
		}
		return node.close(content)

	case slice.openStart == 0 && slice.openEnd == 0 && from.depth == depth && to.depth == depth:
		parent := from.Parent()
		content := parent.content
		return parent.close(content.cut(0, from.parentOffset).Append(slice.content).Append(content.cutFrom(to.parentOffset)))
	}

	start, end, err := prepareSliceForReplace(slice, from)
	if err != nil {
		return nil, err
	}
	content, err := replaceThreeWay(from, start, end, to, depth)
	if err != nil {
		return nil, err
	}
	return node.close(content)
}

func checkJoin(main, sub *Node) error {
	if !sub.typ.CompatibleContent(main.typ) {
		return newReplaceError("cannot join %s onto %s", sub.typ.name, main.typ.name)
	}
	return nil
}

func joinable(before, after *ResolvedPos, depth int) (*Node, error) {
	node := before.Node(depth)
	if err := checkJoin(node, after.Node(depth)); err != nil {
		return nil, err
	}
	return node, nil
}

// addRange appends the children of the node at depth between start and end
// to content. Either bound may be nil, meaning the start or end of the node.
func addRange(start, end *ResolvedPos, depth int, content []*Node) []*Node {
	bound := end
	if bound == nil {
		bound = start
	}
	node := bound.Node(depth)
	startIndex, endIndex := 0, node.ChildCount()
	if end != nil {
		endIndex = end.Index(depth)
	}
	if start != nil {
		startIndex = start.Index(depth)
		if start.depth > depth {
			startIndex++
		} else if start.TextOffset() > 0 {
			content = addNode(content, start.NodeAfter())
			startIndex++
		}
	}
	for i := startIndex; i < endIndex; i++ {
		content = addNode(content, node.Child(i))
	}
	if end != nil && end.depth == depth && end.TextOffset() > 0 {
		content = addNode(content, end.NodeBefore())
	}
	return content
}

func replaceThreeWay(from, start, end, to *ResolvedPos, depth int) (Fragment, error) {
	var openStart, openEnd *Node
	var err error
	if from.depth > depth {
		if openStart, err = joinable(from, start, depth+1); err != nil {
			return Fragment{}, err
		}
	}
	if to.depth > depth {
		if openEnd, err = joinable(end, to, depth+1); err != nil {
			return Fragment{}, err
		}
	}

	content := addRange(nil, from, depth, nil)
	if openStart != nil && openEnd != nil && start.Index(depth) == end.Index(depth) {
		if err := checkJoin(openStart, openEnd); err != nil {
			return Fragment{}, err
		}
		inner, err := replaceThreeWay(from, start, end, to, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		closed, err := openStart.close(inner)
		if err != nil {
			return Fragment{}, err
		}
		content = addNode(content, closed)
	} else {
		if openStart != nil {
			inner, err := replaceTwoWay(from, start, depth+1)
			if err != nil {
				return Fragment{}, err
			}
			closed, err := openStart.close(inner)
			if err != nil {
				return Fragment{}, err
			}
			content = addNode(content, closed)
		}
		content = addRange(start, end, depth, content)
		if openEnd != nil {
			inner, err := replaceTwoWay(end, to, depth+1)
			if err != nil {
				return Fragment{}, err
			}
			closed, err := openEnd.close(inner)
			if err != nil {
				return Fragment{}, err
			}
			content = addNode(content, closed)
		}
	}
	content = addRange(to, nil, depth, content)
	return fragmentOf(content), nil
}

func replaceTwoWay(from, to *ResolvedPos, depth int) (Fragment, error) {
	content := addRange(nil, from, depth, nil)
	if from.depth > depth {
		node, err := joinable(from, to, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		inner, err := replaceTwoWay(from, to, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		closed, err := node.close(inner)
		if err != nil {
			return Fragment{}, err
		}
		content = addNode(content, closed)
	}
	content = addRange(to, nil, depth, content)
	return fragmentOf(content), nil
}

// prepareSliceForReplace wraps the slice's content in copies of the
// ancestors of along so it can be resolved at the same depths, and returns
// the positions of the slice's start and end inside that wrapper.
func prepareSliceForReplace(slice Slice, along *ResolvedPos) (*ResolvedPos, *ResolvedPos, error) {
	extra := along.depth - slice.openStart
	node := along.Node(extra).Copy(slice.content)
	for i := extra - 1; i >= 0; i-- {
		node = along.Node(i).Copy(NewFragment(node))
	}
	start, err := node.Resolve(slice.openStart + extra)
	if err != nil {
		return nil, nil, &ReplaceError{Msg: "invalid slice start", Err: err}
	}
	end, err := node.Resolve(node.content.size - slice.openEnd - extra)
	if err != nil {
		return nil, nil, &ReplaceError{Msg: "invalid slice end", Err: err}
	}
	return start, end, nil
}
