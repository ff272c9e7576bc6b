package model

import (
	"errors"
	"testing"
)

func contentSchema(doc string) (*Schema, error) {
	return NewSchema(SchemaSpec{
		Nodes: []NodeSpec{
			{Name: "doc", Content: doc},
			{Name: "para", Content: "text*", Group: "block"},
			{Name: "heading", Content: "text*", Group: "block"},
			{Name: "rule", Group: "block"},
			{Name: "text", Group: "inline"},
			{
				Name:   "img",
				Inline: true,
				Group:  "inline",
				Attrs:  map[string]AttributeSpec{"src": RequiredAttr()},
			},
			{
				Name:  "figure",
				Group: "block",
				Attrs: map[string]AttributeSpec{"src": RequiredAttr()},
			},
		},
	})
}

func matchNames(s *Schema, m *ContentMatch, names ...string) *ContentMatch {
	for _, name := range names {
		if m == nil {
			return nil
		}
		m = m.MatchType(s.NodeType(name))
	}
	return m
}

func TestContentExpressions(t *testing.T) {
	tests := []struct {
		expr  string
		types []string
		valid bool
	}{
		{"para", []string{"para"}, true},
		{"para", nil, false},
		{"para", []string{"para", "para"}, false},
		{"para*", nil, true},
		{"para*", []string{"para", "para", "para"}, true},
		{"para+", nil, false},
		{"para+", []string{"para", "para"}, true},
		{"heading? para", []string{"para"}, true},
		{"heading? para", []string{"heading", "para"}, true},
		{"heading? para", []string{"heading", "heading", "para"}, false},
		{"heading para*", []string{"heading", "para", "para"}, true},
		{"(heading | para)+", []string{"para", "heading", "para"}, true},
		{"(heading | rule)+", []string{"para"}, false},
		{"block+", []string{"rule", "para", "heading"}, true},
		{"para{2}", []string{"para"}, false},
		{"para{2}", []string{"para", "para"}, true},
		{"para{2}", []string{"para", "para", "para"}, false},
		{"para{1,}", []string{"para", "para", "para", "para"}, true},
		{"para{1,}", nil, false},
		{"para{1,3}", []string{"para", "para", "para"}, true},
		{"para{1,3}", []string{"para", "para", "para", "para"}, false},
		{"para{0,2} heading", []string{"heading"}, true},
		{"para{0,2} heading", []string{"para", "para", "heading"}, true},
		{"heading (para | rule)* heading?", []string{"heading", "rule", "para", "heading"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			s, err := contentSchema(tt.expr)
			if err != nil {
				t.Fatalf("NewSchema: %v", err)
			}
			m := matchNames(s, s.TopNodeType().ContentMatch(), tt.types...)
			got := m != nil && m.ValidEnd()
			if got != tt.valid {
				t.Errorf("%v valid = %v, want %v\n%s", tt.types, got, tt.valid, s.TopNodeType().ContentMatch())
			}
		})
	}
}

func TestContentExpressionErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"unknown name", "nope+"},
		{"mixed inline and block", "para text"},
		{"unclosed paren", "(para | heading"},
		{"unclosed range", "para{2"},
		{"inverted range", "para{3,1}"},
		{"trailing token", "para )"},
		{"dangling operator", "+"},
		{"required non-generatable", "figure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := contentSchema(tt.expr)
			if err == nil {
				t.Fatalf("expected error for %q", tt.expr)
			}
			if !errors.Is(err, ErrSchemaValidation) {
				t.Errorf("error %v is not ErrSchemaValidation", err)
			}
		})
	}
}

func TestContentMatchHelpers(t *testing.T) {
	s, err := contentSchema("figure* para")
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	start := s.TopNodeType().ContentMatch()
	if got := start.DefaultType(); got != s.NodeType("para") {
		t.Errorf("DefaultType() = %v, want para", got)
	}
	if start.InlineContent() {
		t.Error("block content reported as inline")
	}
	if !s.NodeType("para").ContentMatch().InlineContent() {
		t.Error("para content should be inline")
	}
	if start.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", start.EdgeCount())
	}
	if !start.Compatible(start) {
		t.Error("a state should be compatible with itself")
	}
	if start.Compatible(s.NodeType("heading").ContentMatch()) {
		t.Error("block and inline states should not be compatible")
	}
}

func TestNodeKinds(t *testing.T) {
	s, err := NewSchema(SchemaSpec{
		Nodes: []NodeSpec{
			{Name: "doc", Content: "block+"},
			{Name: "para", Content: "text*", Group: "block"},
			{Name: "embed", Content: "para", Group: "block", Atom: true},
			{Name: "rule", Group: "block"},
			{Name: "text"},
		},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	want := map[string]NodeKind{
		"doc":   KindContainer,
		"para":  KindContainer,
		"embed": KindAtom,
		"rule":  KindLeaf,
		"text":  KindText,
	}
	for name, kind := range want {
		if got := s.NodeType(name).Kind(); got != kind {
			t.Errorf("%s kind = %v, want %v", name, got, kind)
		}
	}
	if !s.NodeType("embed").IsAtom() || s.NodeType("embed").IsLeaf() {
		t.Error("embed should be atomic but not a leaf")
	}
	if !s.NodeType("para").IsTextblock() {
		t.Error("para should be a textblock")
	}
}

func TestSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		spec SchemaSpec
	}{
		{"no top node", SchemaSpec{Nodes: []NodeSpec{{Name: "text"}}}},
		{"no text", SchemaSpec{Nodes: []NodeSpec{{Name: "doc"}}}},
		{"duplicate", SchemaSpec{Nodes: []NodeSpec{{Name: "doc"}, {Name: "doc"}, {Name: "text"}}}},
		{"text attrs", SchemaSpec{Nodes: []NodeSpec{
			{Name: "doc"},
			{Name: "text", Attrs: map[string]AttributeSpec{"x": DefaultAttr(1)}},
		}}},
		{"unknown mark", SchemaSpec{Nodes: []NodeSpec{
			{Name: "doc", Content: "text*", Marks: strPtr("bold")},
			{Name: "text"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSchema(tt.spec); !errors.Is(err, ErrSchemaValidation) {
				t.Errorf("NewSchema() error = %v, want ErrSchemaValidation", err)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{float64(3), 3},
		{float64(2.5), 2.5},
		{int64(7), 7},
		{uint8(1), 1},
		{"x", "x"},
		{nil, nil},
		{true, true},
	}
	for _, tt := range tests {
		if got := normalizeValue(tt.in); got != tt.want {
			t.Errorf("normalizeValue(%v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}

	nested := normalizeValue(map[string]any{"n": float64(1), "l": []any{float64(2)}}).(map[string]any)
	if nested["n"] != 1 || nested["l"].([]any)[0] != 2 {
		t.Errorf("nested values not normalized: %#v", nested)
	}
}
