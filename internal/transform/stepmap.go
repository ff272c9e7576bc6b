package transform

// Deletion flags carried by a MapResult.
const (
	delBefore = 1 << iota
	delAfter
	delAcross
	delSide
)

// MapResult describes where a position ends up after a step and whether
// content around it was deleted.
type MapResult struct {
	// Pos is the mapped position.
	Pos int

	delInfo int
}

// Deleted reports whether the content on the side the position was
// associated with was deleted.
func (r MapResult) Deleted() bool { return r.delInfo&delSide > 0 }

// DeletedBefore reports whether the token before the position was deleted.
func (r MapResult) DeletedBefore() bool { return r.delInfo&(delBefore|delAcross) > 0 }

// DeletedAfter reports whether the token after the position was deleted.
func (r MapResult) DeletedAfter() bool { return r.delInfo&(delAfter|delAcross) > 0 }

// DeletedAcross reports whether a range around the position was deleted.
func (r MapResult) DeletedAcross() bool { return r.delInfo&delAcross > 0 }

// StepMap maps positions through a step. It is a list of replaced ranges,
// each given as a start position, its old size and its new size.
type StepMap struct {
	ranges   []int
	inverted bool
}

// EmptyStepMap maps every position to itself.
var EmptyStepMap = StepMap{}

// NewStepMap builds a map from (start, oldSize, newSize) triples, ordered by
// start.
func NewStepMap(ranges ...int) StepMap {
	if len(ranges) == 0 {
		return EmptyStepMap
	}
	return StepMap{ranges: ranges}
}

// OffsetStepMap returns a map that shifts every position by n.
func OffsetStepMap(n int) StepMap {
	switch {
	case n == 0:
		return EmptyStepMap
	case n < 0:
		return NewStepMap(0, -n, 0)
	default:
		return NewStepMap(0, 0, n)
	}
}

// Map maps pos. With assoc < 0 a position at the edge of an insertion stays
// before it, otherwise it moves after it.
func (m StepMap) Map(pos, assoc int) int {
	return m.mapPos(pos, assoc).Pos
}

// MapResult maps pos and reports what was deleted around it.
func (m StepMap) MapResult(pos, assoc int) MapResult {
	return m.mapPos(pos, assoc)
}

func (m StepMap) indexes() (oldIndex, newIndex int) {
	if m.inverted {
		return 2, 1
	}
	return 1, 2
}

func (m StepMap) mapPos(pos, assoc int) MapResult {
	diff := 0
	oldIndex, newIndex := m.indexes()
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		if m.inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			side := assoc
			if oldSize > 0 {
				switch pos {
				case start:
					side = -1
				case end:
					side = 1
				}
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}

			var del int
			switch pos {
			case start:
				del = delAfter
			case end:
				del = delBefore
			default:
				del = delAcross
			}
			if (assoc < 0 && pos != start) || (assoc >= 0 && pos != end) {
				del |= delSide
			}
			return MapResult{Pos: result, delInfo: del}
		}
		diff += newSize - oldSize
	}
	return MapResult{Pos: pos + diff}
}

// ForEach calls fn with the old and new bounds of every replaced range.
func (m StepMap) ForEach(fn func(oldStart, oldEnd, newStart, newEnd int)) {
	oldIndex, newIndex := m.indexes()
	diff := 0
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		oldStart, newStart := start, start
		if m.inverted {
			oldStart -= diff
		} else {
			newStart += diff
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		fn(oldStart, oldStart+oldSize, newStart, newStart+newSize)
		diff += newSize - oldSize
	}
}

// Invert returns a map that maps positions in the new document back to the
// old one.
func (m StepMap) Invert() StepMap {
	return StepMap{ranges: m.ranges, inverted: !m.inverted}
}
