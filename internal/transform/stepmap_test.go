package transform

import "testing"

type mapCase struct {
	pos, assoc int
	want       int
	deleted    bool
}

func checkMap(t *testing.T, m StepMap, cases []mapCase) {
	t.Helper()
	for _, c := range cases {
		r := m.MapResult(c.pos, c.assoc)
		if r.Pos != c.want {
			t.Errorf("map(%d, %d) = %d, want %d", c.pos, c.assoc, r.Pos, c.want)
		}
		if r.Deleted() != c.deleted {
			t.Errorf("map(%d, %d) deleted = %v, want %v", c.pos, c.assoc, r.Deleted(), c.deleted)
		}
		if m.Map(c.pos, c.assoc) != r.Pos {
			t.Errorf("Map and MapResult disagree at %d", c.pos)
		}
	}
}

func TestStepMapInsertion(t *testing.T) {
	m := NewStepMap(2, 0, 4)
	checkMap(t, m, []mapCase{
		{0, 1, 0, false},
		{2, 1, 6, false},
		{2, -1, 2, false},
		{3, 1, 7, false},
	})
	checkMap(t, m.Invert(), []mapCase{
		{0, 1, 0, false},
		{6, 1, 2, false},
		{7, 1, 3, false},
		{4, 1, 2, true},
	})
}

func TestStepMapDeletion(t *testing.T) {
	m := NewStepMap(2, 4, 0)
	checkMap(t, m, []mapCase{
		{0, 1, 0, false},
		{2, -1, 2, false},
		{3, 1, 2, true},
		{6, 1, 2, false},
		{6, -1, 2, true},
		{7, 1, 3, false},
	})

	r := m.MapResult(3, 1)
	if !r.DeletedAcross() || !r.DeletedBefore() || !r.DeletedAfter() {
		t.Errorf("position inside deletion should report deletion on both sides: %+v", r)
	}
	r = m.MapResult(2, 1)
	if !r.DeletedAfter() || r.DeletedBefore() {
		t.Errorf("position at deletion start: %+v", r)
	}
	r = m.MapResult(6, 1)
	if !r.DeletedBefore() || r.DeletedAfter() {
		t.Errorf("position at deletion end: %+v", r)
	}
}

func TestStepMapReplace(t *testing.T) {
	checkMap(t, NewStepMap(2, 4, 4), []mapCase{
		{0, 1, 0, false},
		{2, 1, 2, true},
		{4, 1, 6, true},
		{4, -1, 2, true},
		{6, -1, 6, true},
		{8, 1, 8, false},
	})
}

func TestStepMapMultipleRanges(t *testing.T) {
	m := NewStepMap(2, 4, 0, 10, 0, 3)
	checkMap(t, m, []mapCase{
		{1, 1, 1, false},
		{8, 1, 4, false},
		{10, 1, 9, false},
		{10, -1, 6, false},
		{12, 1, 11, false},
	})
	inv := m.Invert()
	for _, pos := range []int{0, 1, 8, 12} {
		if got := inv.Map(m.Map(pos, 1), 1); got != pos {
			t.Errorf("inverse map of %d = %d", pos, got)
		}
	}

	var got [][4]int
	m.ForEach(func(oldStart, oldEnd, newStart, newEnd int) {
		got = append(got, [4]int{oldStart, oldEnd, newStart, newEnd})
	})
	want := [][4]int{{2, 6, 2, 2}, {10, 10, 6, 9}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ForEach = %v, want %v", got, want)
	}
}

func TestOffsetStepMap(t *testing.T) {
	if OffsetStepMap(0).Map(5, 1) != 5 {
		t.Error("zero offset should not move positions")
	}
	if got := OffsetStepMap(3).Map(5, 1); got != 8 {
		t.Errorf("OffsetStepMap(3).Map(5) = %d, want 8", got)
	}
	if got := OffsetStepMap(-3).Map(5, 1); got != 2 {
		t.Errorf("OffsetStepMap(-3).Map(5) = %d, want 2", got)
	}
	if EmptyStepMap.Map(42, -1) != 42 {
		t.Error("empty map should be the identity")
	}
}
