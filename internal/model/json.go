package model

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/tidwall/gjson"
)

// nodeJSON is the wire form of a node. Field order is the output order.
type nodeJSON struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

type markJSON struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

type sliceJSON struct {
	Content   []*Node `json:"content,omitempty"`
	OpenStart *int    `json:"openStart,omitempty"`
	OpenEnd   *int    `json:"openEnd,omitempty"`
}

// MarshalJSON encodes the node as {type, attrs?, content?, marks?, text?}.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{
		Type:    n.typ.name,
		Attrs:   n.attrs,
		Content: n.content.content,
		Marks:   n.marks,
		Text:    n.text,
	})
}

// MarshalJSON encodes the fragment as an array of nodes.
func (f Fragment) MarshalJSON() ([]byte, error) {
	if f.content == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f.content)
}

// MarshalJSON encodes the mark as {type, attrs?}.
func (m Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(markJSON{Type: m.typ.name, Attrs: m.attrs})
}

// MarshalJSON encodes the slice as {content?, openStart?, openEnd?}. The
// empty slice encodes as null.
func (s Slice) MarshalJSON() ([]byte, error) {
	if s.content.size == 0 {
		return []byte("null"), nil
	}
	out := sliceJSON{Content: s.content.content}
	if s.openStart > 0 {
		out.OpenStart = &s.openStart
	}
	if s.openEnd > 0 {
		out.OpenEnd = &s.openEnd
	}
	return json.Marshal(out)
}

func invalidJSON(path string) error {
	return &SchemaValidationError{Path: path, Msg: "invalid JSON"}
}

// NodeFromJSON decodes a node against schema. Unknown types, text nodes
// with content, and content that violates the schema are rejected.
func NodeFromJSON(s *Schema, data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, invalidJSON("$")
	}
	return s.nodeFromResult(gjson.ParseBytes(data), "$")
}

// FragmentFromJSON decodes an array of nodes against schema.
func FragmentFromJSON(s *Schema, data []byte) (Fragment, error) {
	if !gjson.ValidBytes(data) {
		return Fragment{}, invalidJSON("$")
	}
	return s.fragmentFromResult(gjson.ParseBytes(data), "$")
}

// SliceFromJSON decodes a slice against schema. Null or empty input yields
// the empty slice.
func SliceFromJSON(s *Schema, data []byte) (Slice, error) {
	if len(data) == 0 {
		return EmptySlice, nil
	}
	if !gjson.ValidBytes(data) {
		return Slice{}, invalidJSON("$")
	}
	r := gjson.ParseBytes(data)
	if r.Type == gjson.Null {
		return EmptySlice, nil
	}
	if !r.IsObject() {
		return Slice{}, &SchemaValidationError{Path: "$", Msg: "slice must be an object"}
	}
	content, err := s.fragmentFromResult(r.Get("content"), "$.content")
	if err != nil {
		return Slice{}, err
	}
	openStart, err := intField(r, "openStart", "$")
	if err != nil {
		return Slice{}, err
	}
	openEnd, err := intField(r, "openEnd", "$")
	if err != nil {
		return Slice{}, err
	}
	slice, err := NewSlice(content, openStart, openEnd)
	if err != nil {
		return Slice{}, &SchemaValidationError{Path: "$", Msg: "invalid slice", Err: err}
	}
	return slice, nil
}

// MarkFromJSON decodes a mark against schema.
func MarkFromJSON(s *Schema, data []byte) (Mark, error) {
	if !gjson.ValidBytes(data) {
		return Mark{}, invalidJSON("$")
	}
	return s.markFromResult(gjson.ParseBytes(data), "$")
}

func intField(r gjson.Result, name, path string) (int, error) {
	v := r.Get(name)
	if !v.Exists() || v.Type == gjson.Null {
		return 0, nil
	}
	if v.Type != gjson.Number || v.Float() != float64(v.Int()) {
		return 0, &SchemaValidationError{Path: path + "." + name, Msg: "expected an integer"}
	}
	return int(v.Int()), nil
}

func attrsFromResult(r gjson.Result, path string) (Attrs, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}
	if !r.IsObject() {
		return nil, &SchemaValidationError{Path: path, Msg: "attrs must be an object"}
	}
	raw, _ := r.Value().(map[string]any)
	attrs := make(Attrs, len(raw))
	for k, v := range raw {
		attrs[k] = normalizeValue(v)
	}
	return attrs, nil
}

func (s *Schema) markFromResult(r gjson.Result, path string) (Mark, error) {
	if !r.IsObject() {
		return Mark{}, &SchemaValidationError{Path: path, Msg: "mark must be an object"}
	}
	name := r.Get("type")
	if name.Type != gjson.String {
		return Mark{}, &SchemaValidationError{Path: path + ".type", Msg: "missing mark type"}
	}
	t := s.marks[name.String()]
	if t == nil {
		return Mark{}, &SchemaValidationError{Path: path + ".type", Msg: "unknown mark type " + name.String()}
	}
	attrs, err := attrsFromResult(r.Get("attrs"), path+".attrs")
	if err != nil {
		return Mark{}, err
	}
	m, err := t.Create(attrs)
	if err != nil {
		return Mark{}, &SchemaValidationError{Path: path, Msg: "invalid mark", Err: err}
	}
	return m, nil
}

func (s *Schema) marksFromResult(r gjson.Result, path string) ([]Mark, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}
	if !r.IsArray() {
		return nil, &SchemaValidationError{Path: path, Msg: "marks must be an array"}
	}
	var marks []Mark
	for i, item := range r.Array() {
		m, err := s.markFromResult(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, nil
}

func (s *Schema) fragmentFromResult(r gjson.Result, path string) (Fragment, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return Fragment{}, nil
	}
	if !r.IsArray() {
		return Fragment{}, &SchemaValidationError{Path: path, Msg: "content must be an array"}
	}
	items := r.Array()
	nodes := make([]*Node, 0, len(items))
	for i, item := range items {
		n, err := s.nodeFromResult(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return Fragment{}, err
		}
		nodes = append(nodes, n)
	}
	return NewFragment(nodes...), nil
}

func (s *Schema) nodeFromResult(r gjson.Result, path string) (*Node, error) {
	if !r.IsObject() {
		return nil, &SchemaValidationError{Path: path, Msg: "node must be an object"}
	}
	name := r.Get("type")
	if name.Type != gjson.String {
		return nil, &SchemaValidationError{Path: path + ".type", Msg: "missing node type"}
	}
	t := s.nodes[name.String()]
	if t == nil {
		return nil, &SchemaValidationError{Path: path + ".type", Msg: "unknown node type " + name.String()}
	}
	marks, err := s.marksFromResult(r.Get("marks"), path+".marks")
	if err != nil {
		return nil, err
	}

	text, content := r.Get("text"), r.Get("content")
	if text.Exists() && content.Exists() {
		return nil, &SchemaValidationError{Path: path, Msg: "node has both text and content"}
	}

	if t.IsText() {
		if text.Type != gjson.String {
			return nil, &SchemaValidationError{Path: path + ".text", Msg: "text node without text"}
		}
		n, err := s.Text(text.String(), marks...)
		if err != nil {
			return nil, &SchemaValidationError{Path: path + ".text", Msg: "invalid text node", Err: err}
		}
		return n, nil
	}
	if text.Exists() {
		return nil, &SchemaValidationError{Path: path + ".text", Msg: "text on non-text node " + t.name}
	}

	attrs, err := attrsFromResult(r.Get("attrs"), path+".attrs")
	if err != nil {
		return nil, err
	}
	children, err := s.fragmentFromResult(content, path+".content")
	if err != nil {
		return nil, err
	}
	n, err := t.Create(attrs, children, marks)
	if err != nil {
		return nil, &SchemaValidationError{Path: path, Msg: "invalid " + t.name + " node", Err: err}
	}
	return n, nil
}
