// Package builder provides terse constructors for documents, mostly for
// tests. Builders panic on invalid input.
//
//	doc := builder.Doc(
//	    builder.P("Hello ", builder.Em("world")),
//	    builder.UL(builder.LI(builder.P("item"))),
//	)
package builder

import (
	"fmt"

	"github.com/dshills/treedoc/internal/model"
	"github.com/dshills/treedoc/internal/schema"
)

// Builder constructs nodes of a schema.
type Builder struct {
	schema *model.Schema
}

// New returns a builder for s.
func New(s *model.Schema) *Builder {
	return &Builder{schema: s}
}

// Schema returns the builder's schema.
func (b *Builder) Schema() *model.Schema { return b.schema }

// Node builds a node of the named type. Children may be *model.Node,
// []*model.Node, or strings, which become text nodes.
func (b *Builder) Node(name string, attrs model.Attrs, children ...any) *model.Node {
	n, err := b.schema.Node(name, attrs, b.Fragment(children...))
	if err != nil {
		panic(fmt.Sprintf("builder: %s: %v", name, err))
	}
	return n
}

// Fragment builds a fragment from children as accepted by Node.
func (b *Builder) Fragment(children ...any) model.Fragment {
	var nodes []*model.Node
	for _, c := range children {
		switch v := c.(type) {
		case *model.Node:
			nodes = append(nodes, v)
		case []*model.Node:
			nodes = append(nodes, v...)
		case string:
			nodes = append(nodes, b.Text(v))
		default:
			panic(fmt.Sprintf("builder: unsupported child %T", c))
		}
	}
	return model.NewFragment(nodes...)
}

// Text builds a text node with the named marks.
func (b *Builder) Text(text string, marks ...string) *model.Node {
	set := make([]model.Mark, 0, len(marks))
	for _, name := range marks {
		m, err := b.schema.Mark(name, nil)
		if err != nil {
			panic(fmt.Sprintf("builder: %v", err))
		}
		set = m.AddToSet(set)
	}
	n, err := b.schema.Text(text, set...)
	if err != nil {
		panic(fmt.Sprintf("builder: %v", err))
	}
	return n
}

// Mark wraps the inline children in the given mark.
func (b *Builder) Mark(m model.Mark, children ...any) []*model.Node {
	f := b.Fragment(children...)
	out := make([]*model.Node, 0, f.ChildCount())
	f.ForEach(func(child *model.Node, _, _ int) {
		out = append(out, child.WithMarks(m.AddToSet(child.Marks())))
	})
	return out
}

// Slice builds a slice from nodes, panicking on invalid open depths.
func (b *Builder) Slice(openStart, openEnd int, children ...any) model.Slice {
	s, err := model.NewSlice(b.Fragment(children...), openStart, openEnd)
	if err != nil {
		panic(fmt.Sprintf("builder: %v", err))
	}
	return s
}

func (b *Builder) mark(name string, attrs model.Attrs, children []any) []*model.Node {
	m, err := b.schema.Mark(name, attrs)
	if err != nil {
		panic(fmt.Sprintf("builder: %v", err))
	}
	return b.Mark(m, children...)
}

var std = New(schema.Default())

// Default returns the builder for the built-in schema.
func Default() *Builder { return std }

// Doc builds a doc node.
func Doc(children ...any) *model.Node { return std.Node("doc", nil, children...) }

// P builds a paragraph.
func P(children ...any) *model.Node { return std.Node("paragraph", nil, children...) }

// Blockquote builds a block quote.
func Blockquote(children ...any) *model.Node { return std.Node("blockquote", nil, children...) }

// H builds a heading of the given level.
func H(level int, children ...any) *model.Node {
	return std.Node("heading", model.Attrs{"level": level}, children...)
}

// CodeBlock builds a code block holding text.
func CodeBlock(text string) *model.Node {
	if text == "" {
		return std.Node("code_block", nil)
	}
	return std.Node("code_block", nil, text)
}

// HR builds a horizontal rule.
func HR() *model.Node { return std.Node("horizontal_rule", nil) }

// Img builds an image.
func Img(src string) *model.Node { return std.Node("image", model.Attrs{"src": src}) }

// BR builds a hard break.
func BR() *model.Node { return std.Node("hard_break", nil) }

// UL builds a bullet list.
func UL(items ...any) *model.Node { return std.Node("bullet_list", nil, items...) }

// OL builds an ordered list.
func OL(items ...any) *model.Node { return std.Node("ordered_list", nil, items...) }

// LI builds a list item.
func LI(children ...any) *model.Node { return std.Node("list_item", nil, children...) }

// Em wraps children in emphasis.
func Em(children ...any) []*model.Node { return std.mark("em", nil, children) }

// Strong wraps children in strong emphasis.
func Strong(children ...any) []*model.Node { return std.mark("strong", nil, children) }

// Code wraps children in inline code.
func Code(children ...any) []*model.Node { return std.mark("code", nil, children) }

// Link wraps children in a link.
func Link(href string, children ...any) []*model.Node {
	return std.mark("link", model.Attrs{"href": href}, children)
}

// Slice builds a slice of nodes from the built-in schema.
func Slice(openStart, openEnd int, children ...any) model.Slice {
	return std.Slice(openStart, openEnd, children...)
}
