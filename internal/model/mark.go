package model

import (
	"slices"
	"strings"
)

// MarkSpec describes a mark type.
type MarkSpec struct {
	Name  string
	Attrs map[string]AttributeSpec

	// Excludes lists the marks (names or groups) that may not coexist with
	// this one. Nil excludes only marks of the same type, "" excludes
	// nothing and "_" excludes all marks.
	Excludes *string

	// Group is a space-separated list of groups this mark belongs to.
	Group string
}

// MarkType is a kind of inline annotation defined by a Schema.
type MarkType struct {
	name     string
	rank     int
	schema   *Schema
	spec     MarkSpec
	attrs    map[string]AttributeSpec
	excluded []*MarkType
	instance *Mark
}

// Name returns the mark type's name.
func (t *MarkType) Name() string { return t.name }

// Schema returns the schema the type belongs to.
func (t *MarkType) Schema() *Schema { return t.schema }

// Spec returns the spec the type was built from.
func (t *MarkType) Spec() MarkSpec { return t.spec }

// Create returns a mark of this type with the given attributes.
func (t *MarkType) Create(attrs Attrs) (Mark, error) {
	if len(attrs) == 0 && t.instance != nil {
		return *t.instance, nil
	}
	computed, err := computeAttrs("mark "+t.name, t.attrs, attrs)
	if err != nil {
		return Mark{}, err
	}
	return Mark{typ: t, attrs: computed}, nil
}

// Excludes reports whether this type excludes other.
func (t *MarkType) Excludes(other *MarkType) bool {
	return slices.Contains(t.excluded, other)
}

// IsInSet returns the mark of this type in set, if any.
func (t *MarkType) IsInSet(set []Mark) (Mark, bool) {
	for _, m := range set {
		if m.typ == t {
			return m, true
		}
	}
	return Mark{}, false
}

// Mark is an annotation attached to a node, such as emphasis or a link.
type Mark struct {
	typ   *MarkType
	attrs Attrs
}

// Type returns the mark's type.
func (m Mark) Type() *MarkType { return m.typ }

// Attrs returns the mark's attributes.
func (m Mark) Attrs() Attrs { return m.attrs }

// Eq reports whether two marks have the same type and attributes.
func (m Mark) Eq(other Mark) bool {
	return m.typ == other.typ && attrsEqual(m.attrs, other.attrs)
}

// IsInSet reports whether the mark occurs in set.
func (m Mark) IsInSet(set []Mark) bool {
	return slices.ContainsFunc(set, m.Eq)
}

// AddToSet returns a copy of set with this mark added in rank order.
// Marks excluded by this mark are dropped; if a mark in the set excludes
// this one, the set is returned unchanged.
func (m Mark) AddToSet(set []Mark) []Mark {
	var out []Mark
	copied, placed := false, false
	for i, other := range set {
		if m.Eq(other) {
			return set
		}
		switch {
		case m.typ.Excludes(other.typ):
			if !copied {
				out = slices.Clone(set[:i])
				copied = true
			}
		case other.typ.Excludes(m.typ):
			return set
		default:
			if !placed && other.typ.rank > m.typ.rank {
				if !copied {
					out = slices.Clone(set[:i])
					copied = true
				}
				out = append(out, m)
				placed = true
			}
			if copied {
				out = append(out, other)
			}
		}
	}
	if !copied {
		out = slices.Clone(set)
	}
	if !placed {
		out = append(out, m)
	}
	return out
}

// RemoveFromSet returns set without this mark.
func (m Mark) RemoveFromSet(set []Mark) []Mark {
	for i, other := range set {
		if m.Eq(other) {
			return slices.Concat(set[:i], set[i+1:])
		}
	}
	return set
}

func (m Mark) String() string {
	return m.typ.name
}

// SameMarkSet reports whether two mark sets are equal.
func SameMarkSet(a, b []Mark) bool {
	return slices.EqualFunc(a, b, Mark.Eq)
}

// MarkSetFrom returns marks sorted by rank.
func MarkSetFrom(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	out := slices.Clone(marks)
	slices.SortStableFunc(out, func(a, b Mark) int { return a.typ.rank - b.typ.rank })
	return out
}

// gatherMarks resolves a space-separated list of mark names and groups.
func gatherMarks(s *Schema, names string) ([]*MarkType, error) {
	var found []*MarkType
	for _, name := range strings.Fields(names) {
		if mt, ok := s.marks[name]; ok {
			found = append(found, mt)
			continue
		}
		ok := false
		for _, mt := range s.markOrder {
			if name == "_" || slices.Contains(strings.Fields(mt.spec.Group), name) {
				found = append(found, mt)
				ok = true
			}
		}
		if !ok {
			return nil, &SchemaValidationError{Msg: "unknown mark type: " + name}
		}
	}
	return found, nil
}
