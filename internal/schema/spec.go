package schema

import (
	"fmt"

	"github.com/dshills/treedoc/internal/config/loader"
	"github.com/dshills/treedoc/internal/model"
)

// Load reads a schema definition file and compiles it.
func Load(fsys loader.FileSystem, path string) (*model.Schema, error) {
	m, err := loader.LoadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	spec, err := SpecFromMap(m)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	s, err := model.NewSchema(spec)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// SpecFromMap converts a loaded schema definition into a SchemaSpec.
func SpecFromMap(m map[string]any) (model.SchemaSpec, error) {
	var spec model.SchemaSpec
	r := reader{}

	spec.TopNode = r.str(m, "topNode", "")

	for i, item := range r.list(m, "nodes") {
		path := fmt.Sprintf("nodes[%d]", i)
		n, ok := item.(map[string]any)
		if !ok {
			return spec, invalid(path, "node must be a table")
		}
		ns := model.NodeSpec{
			Name:    r.str(n, "name", path),
			Content: r.str(n, "content", path),
			Group:   r.str(n, "group", path),
			Inline:  r.boolean(n, "inline", path),
			Atom:    r.boolean(n, "atom", path),
			Attrs:   r.attrs(n, path),
		}
		if _, ok := n["marks"]; ok {
			marks := r.str(n, "marks", path)
			ns.Marks = &marks
		}
		if ns.Name == "" && r.err == nil {
			return spec, invalid(path, "node without a name")
		}
		spec.Nodes = append(spec.Nodes, ns)
	}

	for i, item := range r.list(m, "marks") {
		path := fmt.Sprintf("marks[%d]", i)
		mm, ok := item.(map[string]any)
		if !ok {
			return spec, invalid(path, "mark must be a table")
		}
		ms := model.MarkSpec{
			Name:  r.str(mm, "name", path),
			Group: r.str(mm, "group", path),
			Attrs: r.attrs(mm, path),
		}
		if _, ok := mm["excludes"]; ok {
			excludes := r.str(mm, "excludes", path)
			ms.Excludes = &excludes
		}
		if ms.Name == "" && r.err == nil {
			return spec, invalid(path, "mark without a name")
		}
		spec.Marks = append(spec.Marks, ms)
	}

	return spec, r.err
}

func invalid(path, msg string) error {
	return &model.SchemaValidationError{Path: path, Msg: msg}
}

// reader pulls typed values out of a definition map, keeping the first error.
type reader struct {
	err error
}

func (r *reader) fail(path, key, want string, v any) {
	if r.err == nil {
		r.err = invalid(join(path, key), fmt.Sprintf("expected %s, got %T", want, v))
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func (r *reader) str(m map[string]any, key, path string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(path, key, "string", v)
	}
	return s
}

func (r *reader) boolean(m map[string]any, key, path string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(path, key, "bool", v)
	}
	return b
}

func (r *reader) list(m map[string]any, key string) []any {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch l := v.(type) {
	case []any:
		return l
	case []map[string]any:
		out := make([]any, len(l))
		for i, e := range l {
			out[i] = e
		}
		return out
	}
	r.fail("", key, "array", v)
	return nil
}

func (r *reader) attrs(m map[string]any, path string) map[string]model.AttributeSpec {
	v, ok := m["attrs"]
	if !ok {
		return nil
	}
	table, ok := v.(map[string]any)
	if !ok {
		r.fail(path, "attrs", "table", v)
		return nil
	}
	out := make(map[string]model.AttributeSpec, len(table))
	for name, raw := range table {
		def, ok := raw.(map[string]any)
		if !ok {
			r.fail(join(path, "attrs"), name, "table", raw)
			continue
		}
		if d, has := def["default"]; has {
			out[name] = model.DefaultAttr(d)
		} else {
			out[name] = model.RequiredAttr()
		}
	}
	return out
}
